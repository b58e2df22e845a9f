package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rangekit/checkgen/internal/topology"
)

func TestRDPFile(t *testing.T) {
	host := topology.Host{Name: "dc", Addr: "10.0.0.1", FloatingAddr: "100.65.4.21", Role: "windows-dc"}
	got := string(RDPFile(host, RDPOptions{Gateway: "rdp.lab.example", Username: `LAB\ranger`}))

	if !strings.Contains(got, "full address:s:100.65.4.21\r\n") {
		t.Errorf("missing or LF-terminated full address line:\n%q", got)
	}
	if !strings.Contains(got, "gatewayhostname:s:rdp.lab.example\r\n") {
		t.Error("missing gateway line")
	}
	if !strings.Contains(got, `username:s:LAB\ranger`+"\r\n") {
		t.Error("missing username line")
	}
	if strings.Contains(strings.ReplaceAll(got, "\r\n", ""), "\n") {
		t.Error("RDP file must use CRLF throughout")
	}
}

func TestRDPFileFallsBackToInternalAddr(t *testing.T) {
	host := topology.Host{Name: "dc", Addr: "10.0.0.1", Role: "windows-dc"}
	got := string(RDPFile(host, RDPOptions{}))
	if !strings.Contains(got, "full address:s:10.0.0.1\r\n") {
		t.Error("expected internal address fallback")
	}
	if strings.Contains(got, "gatewayhostname") {
		t.Error("gateway lines must be omitted without a gateway")
	}
}

func TestWriteRDPFiles(t *testing.T) {
	reg, err := topology.Build([]topology.Host{
		{Name: "dc", Addr: "10.0.0.1", FloatingAddr: "100.65.4.21", Role: "windows-dc"},
		{Name: "web1", Addr: "10.0.0.2", Role: "linux-web"},
	})
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	stale := filepath.Join(dir, "gone.rdp")
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := WriteRDPFiles(dir, reg, RDPOptions{}); err != nil {
		t.Fatalf("WriteRDPFiles failed: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale RDP file not removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "dc.rdp")); err != nil {
		t.Errorf("dc.rdp not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "web1.rdp")); !os.IsNotExist(err) {
		t.Error("RDP file written for a Linux host")
	}
}
