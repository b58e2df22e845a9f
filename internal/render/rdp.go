package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rangekit/checkgen/internal/topology"
)

// RDPOptions configures the generated connection files. Gateway empty
// means direct connections without an RD Gateway.
type RDPOptions struct {
	Gateway  string
	Username string
}

// RDPFile renders one .rdp connection file for a Windows host. RDP
// clients require CRLF line endings.
func RDPFile(host topology.Host, opts RDPOptions) []byte {
	addr := host.FloatingAddr
	if addr == "" {
		addr = host.Addr
	}
	var b strings.Builder
	fmt.Fprintf(&b, "full address:s:%s\n", addr)
	b.WriteString("screen mode id:i:2\n")
	b.WriteString("desktopwidth:i:1920\n")
	b.WriteString("desktopheight:i:1080\n")
	b.WriteString("session bpp:i:32\n")
	b.WriteString("compression:i:1\n")
	b.WriteString("audiomode:i:0\n")
	b.WriteString("redirectclipboard:i:1\n")
	b.WriteString("autoreconnection enabled:i:1\n")
	b.WriteString("authentication level:i:2\n")
	b.WriteString("prompt for credentials:i:0\n")
	b.WriteString("negotiate security layer:i:1\n")
	if opts.Gateway != "" {
		fmt.Fprintf(&b, "gatewayhostname:s:%s\n", opts.Gateway)
		b.WriteString("gatewayusagemethod:i:1\n")
		b.WriteString("gatewayprofileusagemethod:i:1\n")
		b.WriteString("gatewaycredentialssource:i:0\n")
	}
	if opts.Username != "" {
		fmt.Fprintf(&b, "username:s:%s\n", opts.Username)
	}
	return []byte(strings.ReplaceAll(b.String(), "\n", "\r\n"))
}

// WriteRDPFiles writes one .rdp file per Windows host into dir, removing
// stale .rdp files from previous runs first.
func WriteRDPFiles(dir string, reg *topology.Registry, opts RDPOptions) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create RDP dir: %w", err)
	}
	stale, err := filepath.Glob(filepath.Join(dir, "*.rdp"))
	if err != nil {
		return err
	}
	for _, p := range stale {
		if err := os.Remove(p); err != nil {
			return fmt.Errorf("failed to remove stale RDP file: %w", err)
		}
	}
	for _, name := range reg.OfClass(topology.Windows) {
		host, _ := reg.Lookup(name)
		path := filepath.Join(dir, name+".rdp")
		if err := WriteFile(path, RDPFile(host, opts)); err != nil {
			return err
		}
	}
	return nil
}
