// Package validate checks a resolved run for authoring mistakes. Fatal
// findings are collected across the whole input before the run aborts, so
// one invocation reports every problem.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rangekit/checkgen/internal/assign"
	"github.com/rangekit/checkgen/internal/checks"
	"github.com/rangekit/checkgen/internal/resolve"
	"github.com/rangekit/checkgen/internal/topology"
)

// UnknownOverrideHostError reports an override entry keyed by a host
// absent from the registry.
type UnknownOverrideHostError struct {
	Host string
}

func (e *UnknownOverrideHostError) Error() string {
	return fmt.Sprintf("override entry for unknown host %q", e.Host)
}

// DuplicateCheckError reports two checks in one box sharing the
// (type, display) identity key.
type DuplicateCheckError struct {
	Host    string
	Type    string
	Display string
}

func (e *DuplicateCheckError) Error() string {
	if e.Display == "" {
		return fmt.Sprintf("host %q: duplicate check identity (type %q)", e.Host, e.Type)
	}
	return fmt.Sprintf("host %q: duplicate check identity (type %q, display %q)", e.Host, e.Type, e.Display)
}

// OrphanedOverrideWarning reports a service override for a service no
// host is assigned — almost certainly an authoring mistake, but not one
// worth blocking output over.
type OrphanedOverrideWarning struct {
	Host    string
	Service string
}

func (w *OrphanedOverrideWarning) Error() string {
	return fmt.Sprintf("host %q overrides service %q, which no host is assigned", w.Host, w.Service)
}

// ReservedServiceWarning reports a service whose name collides with one
// of the fixed structural groups of the inventory listing. Its group
// block would shadow the structural one, so the collision is surfaced
// before rendering.
type ReservedServiceWarning struct {
	Service string
}

func (w *ReservedServiceWarning) Error() string {
	return fmt.Sprintf("service %q collides with a reserved inventory group name", w.Service)
}

// Result accumulates findings for one run. Any error makes the run fatal
// (no artifacts are written); warnings never block output.
type Result struct {
	Errors   []error
	Warnings []error
}

// OK reports whether the run may produce artifacts.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// AddErrors appends fatal findings.
func (r *Result) AddErrors(errs ...error) {
	r.Errors = append(r.Errors, errs...)
}

// Summary renders all fatal findings as one message.
func (r *Result) Summary() string {
	msgs := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Group names the inventory renderer emits unconditionally.
var reservedGroups = map[string]bool{
	"hosts":   true,
	"linux":   true,
	"windows": true,
	"lab":     true,
}

// Services warns about service names that would collide with the fixed
// inventory groups, appending findings to res.
func Services(exp assign.Expanded, res *Result) {
	names := make([]string, 0, len(exp))
	for s := range exp {
		names = append(names, s)
	}
	sort.Strings(names)
	for _, s := range names {
		if reservedGroups[s] {
			res.Warnings = append(res.Warnings, &ReservedServiceWarning{Service: s})
		}
	}
}

// Overrides validates the override table against the registry and the
// expanded assignment, appending findings to res.
func Overrides(reg *topology.Registry, exp assign.Expanded, overrides checks.Overrides, res *Result) {
	hosts := make([]string, 0, len(overrides))
	for h := range overrides {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)

	for _, host := range hosts {
		if _, ok := reg.Lookup(host); !ok {
			res.Errors = append(res.Errors, &UnknownOverrideHostError{Host: host})
		}
		services := make([]string, 0, len(overrides[host].Services))
		for s := range overrides[host].Services {
			services = append(services, s)
		}
		sort.Strings(services)
		for _, service := range services {
			if len(exp[service]) == 0 {
				res.Warnings = append(res.Warnings, &OrphanedOverrideWarning{Host: host, Service: service})
			}
		}
	}
}

// Boxes checks every resolved box for duplicate check identities,
// appending findings to res.
func Boxes(boxes []resolve.Box, res *Result) {
	for _, box := range boxes {
		seen := make(map[checks.Identity]bool, len(box.Checks))
		for _, c := range box.Checks {
			id := c.Identity()
			if seen[id] {
				res.Errors = append(res.Errors, &DuplicateCheckError{Host: box.Name, Type: id.Type, Display: id.Display})
				continue
			}
			seen[id] = true
		}
	}
}
