// Package resolve merges default check tables with per-host overrides
// into final per-host check lists.
package resolve

import (
	"github.com/rangekit/checkgen/internal/assign"
	"github.com/rangekit/checkgen/internal/checks"
	"github.com/rangekit/checkgen/internal/topology"
)

// Box is the resolved bundle for one host: identity plus the ordered
// check list handed to the scoring engine.
type Box struct {
	Name   string
	Addr   string
	Checks []checks.Definition
}

// Hosts resolves every registry host into a Box, in sorted host order.
//
// Per service, in the sorted order of HostServices: an override list
// replaces the default list wholesale; with neither, the service
// contributes nothing (an intentionally default-less service, left to the
// override table). Extra checks are appended after all service-derived
// checks, even for hosts with no assigned services. Definitions are
// deep-copied so the authored tables stay immutable.
func Hosts(reg *topology.Registry, hs assign.HostServices, defaults checks.Defaults, overrides checks.Overrides) []Box {
	boxes := make([]Box, 0, reg.Len())
	for _, name := range reg.Names() {
		host, _ := reg.Lookup(name)
		box := Box{Name: name, Addr: host.Addr}
		ov, hasOverride := overrides[name]

		for _, service := range hs[name] {
			var defs []checks.Definition
			if hasOverride {
				if replacement, ok := ov.Services[service]; ok {
					defs = replacement
				} else {
					defs = defaults[service]
				}
			} else {
				defs = defaults[service]
			}
			for _, d := range defs {
				box.Checks = append(box.Checks, d.Clone())
			}
		}
		if hasOverride {
			for _, d := range ov.Extra {
				box.Checks = append(box.Checks, d.Clone())
			}
		}
		boxes = append(boxes, box)
	}
	return boxes
}
