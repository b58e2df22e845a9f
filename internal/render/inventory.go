// Package render serializes a resolved run into its output artifacts:
// the grouped inventory listing, the scoring-engine check configuration,
// and per-host RDP files. Every renderer is a pure function of the
// resolved state and emits byte-identical output for identical input.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rangekit/checkgen/internal/assign"
	"github.com/rangekit/checkgen/internal/topology"
)

// GroupVars carries the connection settings written into the inventory's
// :vars blocks. Empty user disables the block for that OS class.
type GroupVars struct {
	LinuxUser     string
	LinuxPassword string

	WindowsUser     string
	WindowsPassword string
	WinRMProxy      string
}

const inventoryBanner = `# Auto-generated inventory. Do not edit manually; rerun checkgen to refresh.
`

// Inventory renders the grouped host listing consumed by the
// configuration-management runner. Hosts and groups are emitted in sorted
// order; service lists arrive pre-sorted from the reverse mapping.
func Inventory(reg *topology.Registry, exp assign.Expanded, hs assign.HostServices, vars GroupVars) []byte {
	var b strings.Builder
	b.WriteString(inventoryBanner)
	b.WriteString("\n[hosts]\n")
	for _, name := range reg.Names() {
		host, _ := reg.Lookup(name)
		fmt.Fprintf(&b, "%s address=%s services=[%s]\n", name, host.Addr, strings.Join(hs[name], ","))
	}
	b.WriteString("\n")

	writeGroup(&b, "linux", reg.OfClass(topology.Linux))
	writeGroup(&b, "windows", reg.OfClass(topology.Windows))

	services := make([]string, 0, len(exp))
	for s := range exp {
		services = append(services, s)
	}
	sort.Strings(services)
	for _, service := range services {
		// Only services somebody is assigned get a group block.
		writeGroup(&b, service, exp[service])
	}

	b.WriteString("[lab:children]\n")
	if len(reg.OfClass(topology.Linux)) > 0 {
		b.WriteString("linux\n")
	}
	if len(reg.OfClass(topology.Windows)) > 0 {
		b.WriteString("windows\n")
	}
	b.WriteString("\n")

	if vars.LinuxUser != "" && len(reg.OfClass(topology.Linux)) > 0 {
		b.WriteString("[linux:vars]\n")
		fmt.Fprintf(&b, "ansible_user=%s\n", vars.LinuxUser)
		if vars.LinuxPassword != "" {
			fmt.Fprintf(&b, "ansible_password=%s\n", vars.LinuxPassword)
		}
		b.WriteString("ansible_python_interpreter=/usr/bin/python3\n\n")
	}
	if vars.WindowsUser != "" && len(reg.OfClass(topology.Windows)) > 0 {
		b.WriteString("[windows:vars]\n")
		fmt.Fprintf(&b, "ansible_user=%s\n", vars.WindowsUser)
		if vars.WindowsPassword != "" {
			fmt.Fprintf(&b, "ansible_password=%s\n", vars.WindowsPassword)
		}
		b.WriteString("ansible_connection=winrm\n")
		b.WriteString("ansible_winrm_transport=ntlm\n")
		b.WriteString("ansible_winrm_server_cert_validation=ignore\n")
		if vars.WinRMProxy != "" {
			fmt.Fprintf(&b, "ansible_winrm_proxy=%s\n", vars.WinRMProxy)
		}
		b.WriteString("\n")
	}

	return []byte(b.String())
}

func writeGroup(b *strings.Builder, name string, hosts []string) {
	if len(hosts) == 0 {
		return
	}
	fmt.Fprintf(b, "[%s]\n", name)
	for _, h := range hosts {
		b.WriteString(h)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
