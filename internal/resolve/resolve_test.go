package resolve

import (
	"reflect"
	"testing"

	"github.com/rangekit/checkgen/internal/assign"
	"github.com/rangekit/checkgen/internal/checks"
	"github.com/rangekit/checkgen/internal/topology"
)

func testRegistry(t *testing.T) *topology.Registry {
	t.Helper()
	reg, err := topology.Build([]topology.Host{
		{Name: "dc", Addr: "10.0.0.1", Role: "windows-dc"},
		{Name: "web1", Addr: "10.0.0.2", Role: "linux-web"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func boxByName(t *testing.T, boxes []Box, name string) Box {
	t.Helper()
	for _, b := range boxes {
		if b.Name == name {
			return b
		}
	}
	t.Fatalf("no box named %q", name)
	return Box{}
}

// The worked scenario: two hosts, ssh/winrm expanded by builtin rule, web
// assigned explicitly, no overrides.
func TestHostsDefaultsOnly(t *testing.T) {
	reg := testRegistry(t)
	hs := assign.HostServices{
		"dc":   {"winrm"},
		"web1": {"ssh", "web"},
	}
	defaults := checks.Defaults{
		"ssh":   {{Type: "ssh"}},
		"winrm": {{Type: "winrm"}},
		"web":   {{Type: "web", URLs: []map[string]any{{"path": "/", "status": 200}}}},
	}

	boxes := Hosts(reg, hs, defaults, nil)
	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d", len(boxes))
	}
	if boxes[0].Name != "dc" || boxes[1].Name != "web1" {
		t.Errorf("boxes not in sorted host order: %s, %s", boxes[0].Name, boxes[1].Name)
	}

	dc := boxByName(t, boxes, "dc")
	if dc.Addr != "10.0.0.1" || len(dc.Checks) != 1 || dc.Checks[0].Type != "winrm" {
		t.Errorf("unexpected dc box: %+v", dc)
	}

	web1 := boxByName(t, boxes, "web1")
	if len(web1.Checks) != 2 {
		t.Fatalf("expected 2 checks for web1, got %d", len(web1.Checks))
	}
	if web1.Checks[0].Type != "ssh" || web1.Checks[1].Type != "web" {
		t.Errorf("checks not in service order: %v, %v", web1.Checks[0].Type, web1.Checks[1].Type)
	}
	if web1.Checks[1].URLs[0]["path"] != "/" {
		t.Errorf("nested url lost in resolution: %v", web1.Checks[1].URLs)
	}
}

func TestOverrideReplacesNotMerges(t *testing.T) {
	reg := testRegistry(t)
	hs := assign.HostServices{"dc": nil, "web1": {"web"}}
	defaults := checks.Defaults{"web": {{Type: "web", Display: "default-a"}, {Type: "web", Display: "default-b"}}}
	overrides := checks.Overrides{
		"web1": {Services: map[string][]checks.Definition{
			"web": {{Type: "web", Display: "custom"}},
		}},
	}

	web1 := boxByName(t, Hosts(reg, hs, defaults, overrides), "web1")
	if len(web1.Checks) != 1 {
		t.Fatalf("override must fully replace the default list, got %d checks", len(web1.Checks))
	}
	if web1.Checks[0].Display != "custom" {
		t.Errorf("expected the override record, got %+v", web1.Checks[0])
	}
}

func TestExtrasAppendAfterServiceChecks(t *testing.T) {
	reg := testRegistry(t)
	hs := assign.HostServices{"dc": nil, "web1": {"ssh", "web"}}
	defaults := checks.Defaults{"ssh": {{Type: "ssh"}}, "web": {{Type: "web"}}}
	overrides := checks.Overrides{
		"web1": {Extra: []checks.Definition{{Type: "flag", Display: "acceptance"}}},
	}

	web1 := boxByName(t, Hosts(reg, hs, defaults, overrides), "web1")
	types := make([]string, len(web1.Checks))
	for i, c := range web1.Checks {
		types[i] = c.Type
	}
	if !reflect.DeepEqual(types, []string{"ssh", "web", "flag"}) {
		t.Errorf("extras must come last, got %v", types)
	}
}

func TestExtrasOnServicelessHost(t *testing.T) {
	reg := testRegistry(t)
	hs := assign.HostServices{"dc": nil, "web1": nil}
	overrides := checks.Overrides{
		"dc": {Extra: []checks.Definition{{Type: "flag"}}},
	}

	dc := boxByName(t, Hosts(reg, hs, nil, overrides), "dc")
	if len(dc.Checks) != 1 || dc.Checks[0].Type != "flag" {
		t.Errorf("extras must apply even with zero assigned services: %+v", dc.Checks)
	}
}

func TestDefaultlessServiceContributesNothing(t *testing.T) {
	reg := testRegistry(t)
	hs := assign.HostServices{"dc": nil, "web1": {"customsvc"}}

	web1 := boxByName(t, Hosts(reg, hs, checks.Defaults{}, nil), "web1")
	if len(web1.Checks) != 0 {
		t.Errorf("service with neither default nor override must add nothing, got %+v", web1.Checks)
	}
}

func TestResolutionDoesNotAliasTables(t *testing.T) {
	reg := testRegistry(t)
	hs := assign.HostServices{"dc": nil, "web1": {"web"}}
	defaults := checks.Defaults{"web": {{Type: "web", URLs: []map[string]any{{"path": "/"}}}}}

	boxes := Hosts(reg, hs, defaults, nil)
	boxByName(t, boxes, "web1").Checks[0].URLs[0]["path"] = "/mutated"
	if defaults["web"][0].URLs[0]["path"] != "/" {
		t.Error("resolved output aliases the default table")
	}
}
