package topology

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFeed_JSON(t *testing.T) {
	content := `[
		{"name": "dc", "addr": "10.0.0.1", "floating_addr": "100.65.0.1", "role": "windows-dc"},
		{"name": "web1", "addr": "10.0.0.2", "role": "linux-web"}
	]`
	path := filepath.Join(t.TempDir(), "topology.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	feed, err := LoadFeed(path)
	if err != nil {
		t.Fatalf("failed to load feed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(feed))
	}
	if feed[0].Name != "dc" || feed[0].FloatingAddr != "100.65.0.1" {
		t.Errorf("unexpected first host: %+v", feed[0])
	}
}

func TestLoadFeed_YAML(t *testing.T) {
	content := `
- name: web1
  addr: 10.0.0.2
  role: linux-web
`
	path := filepath.Join(t.TempDir(), "topology.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	feed, err := LoadFeed(path)
	if err != nil {
		t.Fatalf("failed to load feed: %v", err)
	}
	if len(feed) != 1 || feed[0].Role != "linux-web" {
		t.Errorf("unexpected feed: %+v", feed)
	}
}

func TestLoadFeed_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.ini")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFeed(path); err == nil {
		t.Error("expected error for unsupported format")
	}
}
