package topology

import (
	"fmt"
	"sort"
	"strings"
)

// Class is the OS class a host is provisioned with, derived from its role
// tag. Downstream default-expansion rules key off this.
type Class string

const (
	Linux   Class = "linux"
	Windows Class = "windows"
)

// Host is one provisioned machine as reported by the provisioning layer.
// Addr is the lab-internal address; FloatingAddr is the externally
// reachable one, when the provider allocates it.
type Host struct {
	Name         string `json:"name" yaml:"name"`
	Addr         string `json:"addr" yaml:"addr"`
	FloatingAddr string `json:"floating_addr,omitempty" yaml:"floating_addr,omitempty"`
	Role         string `json:"role" yaml:"role"`
	Class        Class  `json:"-" yaml:"-"`
}

// UnknownRoleTagError reports a role tag the classifier has no rule for.
// It aborts the whole run: a partially classified topology is useless to
// every later stage.
type UnknownRoleTagError struct {
	Host string
	Role string
}

func (e *UnknownRoleTagError) Error() string {
	return fmt.Sprintf("host %q: unknown role tag %q", e.Host, e.Role)
}

// Classify maps a role tag to an OS class using a closed rule table.
// Prefix rules cover the provider's structured tags, the exact tags cover
// the lab's special-purpose images.
func Classify(role string) (Class, bool) {
	switch {
	case strings.HasPrefix(role, "windows-"):
		return Windows, true
	case strings.HasPrefix(role, "linux-"):
		return Linux, true
	case role == "scoring", role == "kali":
		return Linux, true
	}
	return "", false
}

// Registry is the classified host set of one lab, keyed by name.
// It is immutable after Build.
type Registry struct {
	hosts map[string]Host
}

// Build classifies the provisioning feed into a Registry. Unknown role
// tags and duplicate host names are fatal.
func Build(feed []Host) (*Registry, error) {
	hosts := make(map[string]Host, len(feed))
	for _, h := range feed {
		if h.Name == "" {
			return nil, fmt.Errorf("topology feed entry with empty host name (addr %q)", h.Addr)
		}
		if _, dup := hosts[h.Name]; dup {
			return nil, fmt.Errorf("duplicate host %q in topology feed", h.Name)
		}
		class, ok := Classify(h.Role)
		if !ok {
			return nil, &UnknownRoleTagError{Host: h.Name, Role: h.Role}
		}
		h.Class = class
		hosts[h.Name] = h
	}
	return &Registry{hosts: hosts}, nil
}

// Lookup returns the host with the given name.
func (r *Registry) Lookup(name string) (Host, bool) {
	h, ok := r.hosts[name]
	return h, ok
}

// LookupFold returns a registry host whose name matches under case
// folding. Used only for diagnostics; matching itself is case-sensitive.
func (r *Registry) LookupFold(name string) (Host, bool) {
	for n, h := range r.hosts {
		if strings.EqualFold(n, name) {
			return h, true
		}
	}
	return Host{}, false
}

// Names returns all host names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.hosts))
	for n := range r.hosts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// OfClass returns the names of all hosts of the given class, sorted.
func (r *Registry) OfClass(c Class) []string {
	var names []string
	for n, h := range r.hosts {
		if h.Class == c {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered hosts.
func (r *Registry) Len() int { return len(r.hosts) }
