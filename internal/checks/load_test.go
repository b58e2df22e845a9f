package checks

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults_YAML(t *testing.T) {
	content := `
ssh:
  - type: ssh
    port: 22
    credlists: [admins]
web:
  - type: web
    display: storefront
    urls:
      - path: /
        status: 200
`
	defaults, err := LoadDefaults(writeTemp(t, "defaults.yaml", content))
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if len(defaults) != 2 {
		t.Fatalf("expected 2 services, got %d", len(defaults))
	}
	ssh := defaults["ssh"]
	if len(ssh) != 1 || ssh[0].Port != 22 || ssh[0].Credlists[0] != "admins" {
		t.Errorf("unexpected ssh defaults: %+v", ssh)
	}
	web := defaults["web"][0]
	if web.Display != "storefront" || len(web.URLs) != 1 {
		t.Errorf("unexpected web defaults: %+v", web)
	}
	if web.URLs[0]["path"] != "/" || web.URLs[0]["status"] != 200 {
		t.Errorf("nested url not preserved: %v", web.URLs[0])
	}
}

func TestLoadDefaults_MissingType(t *testing.T) {
	_, err := LoadDefaults(writeTemp(t, "defaults.yaml", "web:\n  - display: oops\n"))
	if err == nil {
		t.Error("expected error for check with no type")
	}
}

func TestLoadOverrides_JSON(t *testing.T) {
	content := `{
		"web1": {
			"services": {"web": [{"type": "web", "display": "replacement"}]},
			"extra": [{"type": "flag", "display": "acceptance"}]
		}
	}`
	overrides, err := LoadOverrides(writeTemp(t, "overrides.json", content))
	if err != nil {
		t.Fatalf("failed to load overrides: %v", err)
	}
	ov, ok := overrides["web1"]
	if !ok {
		t.Fatal("missing web1 override")
	}
	if len(ov.Services["web"]) != 1 || ov.Services["web"][0].Display != "replacement" {
		t.Errorf("unexpected service override: %+v", ov.Services)
	}
	if len(ov.Extra) != 1 || ov.Extra[0].Type != "flag" {
		t.Errorf("unexpected extra checks: %+v", ov.Extra)
	}
}

func TestLoadOverrides_MissingType(t *testing.T) {
	_, err := LoadOverrides(writeTemp(t, "overrides.yaml", "web1:\n  extra:\n    - display: oops\n"))
	if err == nil {
		t.Error("expected error for extra check with no type")
	}
}
