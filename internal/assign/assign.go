// Package assign expands the authored service→host mapping into a fully
// materialized one and inverts it into per-host service lists.
package assign

import (
	"fmt"
	"sort"

	"github.com/rangekit/checkgen/internal/topology"
)

// Assignment is the authored mapping: service name → explicit host names.
// An empty list means "apply the built-in rule", not "all hosts"; services
// without a built-in rule resolve to no hosts.
type Assignment map[string][]string

// Expanded is the materialized mapping. No entry means "all" anymore.
type Expanded map[string][]string

// HostServices maps each registry host to its assigned services, sorted
// lexicographically. That sort is the determinism guarantee every later
// stage relies on.
type HostServices map[string][]string

// Rule selects the hosts a built-in service expands to when its authored
// host list is empty.
type Rule func(reg *topology.Registry) []string

// Builtins is the closed rule table for default-expansion. Only these
// four service names expand; anything else must be assigned explicitly.
var Builtins = map[string]Rule{
	"ping":  func(r *topology.Registry) []string { return r.Names() },
	"ssh":   func(r *topology.Registry) []string { return r.OfClass(topology.Linux) },
	"winrm": func(r *topology.Registry) []string { return r.OfClass(topology.Windows) },
	"rdp":   func(r *topology.Registry) []string { return r.OfClass(topology.Windows) },
}

// UnknownHostError reports an explicit assignment naming a host absent
// from the registry. CaseHint carries a registry host that matches under
// case folding, when one exists; matching stays case-sensitive.
type UnknownHostError struct {
	Service  string
	Host     string
	CaseHint string
}

func (e *UnknownHostError) Error() string {
	return fmt.Sprintf("service %q assigned to unknown host %q", e.Service, e.Host)
}

// Expand materializes the assignment against the registry. Unknown host
// references are collected, not short-circuited, so one run reports every
// authoring mistake; offending hosts are dropped from the expansion.
func Expand(a Assignment, reg *topology.Registry) (Expanded, []error) {
	expanded := make(Expanded, len(a))
	var errs []error

	services := make([]string, 0, len(a))
	for s := range a {
		services = append(services, s)
	}
	sort.Strings(services)

	for _, service := range services {
		explicit := a[service]
		if len(explicit) == 0 {
			if rule, ok := Builtins[service]; ok {
				expanded[service] = rule(reg)
			} else {
				expanded[service] = nil
			}
			continue
		}
		hosts := make([]string, 0, len(explicit))
		for _, host := range explicit {
			if _, ok := reg.Lookup(host); !ok {
				e := &UnknownHostError{Service: service, Host: host}
				if h, ok := reg.LookupFold(host); ok {
					e.CaseHint = h.Name
				}
				errs = append(errs, e)
				continue
			}
			hosts = append(hosts, host)
		}
		sort.Strings(hosts)
		expanded[service] = hosts
	}
	return expanded, errs
}

// Invert builds the per-host service lists from an expanded assignment.
// Every registry host gets an entry, service-less hosts included.
func Invert(e Expanded, reg *topology.Registry) HostServices {
	hs := make(HostServices, reg.Len())
	for _, name := range reg.Names() {
		hs[name] = nil
	}
	for service, hosts := range e {
		for _, host := range hosts {
			hs[host] = append(hs[host], service)
		}
	}
	for host := range hs {
		sort.Strings(hs[host])
	}
	return hs
}
