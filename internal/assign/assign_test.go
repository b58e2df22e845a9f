package assign

import (
	"reflect"
	"testing"

	"github.com/rangekit/checkgen/internal/topology"
)

func testRegistry(t *testing.T) *topology.Registry {
	t.Helper()
	reg, err := topology.Build([]topology.Host{
		{Name: "dc", Addr: "10.0.0.1", Role: "windows-dc"},
		{Name: "web1", Addr: "10.0.0.2", Role: "linux-web"},
		{Name: "score", Addr: "10.0.0.3", Role: "scoring"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestExpandBuiltins(t *testing.T) {
	reg := testRegistry(t)
	tests := []struct {
		service string
		want    []string
	}{
		{"ping", []string{"dc", "score", "web1"}},
		{"ssh", []string{"score", "web1"}},
		{"winrm", []string{"dc"}},
		{"rdp", []string{"dc"}},
	}
	for _, tt := range tests {
		expanded, errs := Expand(Assignment{tt.service: nil}, reg)
		if len(errs) != 0 {
			t.Fatalf("%s: unexpected errors %v", tt.service, errs)
		}
		if !reflect.DeepEqual(expanded[tt.service], tt.want) {
			t.Errorf("%s expanded to %v, want %v", tt.service, expanded[tt.service], tt.want)
		}
	}
}

func TestExpandExplicitWinsOverBuiltin(t *testing.T) {
	reg := testRegistry(t)
	expanded, errs := Expand(Assignment{"ssh": {"dc"}}, reg)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !reflect.DeepEqual(expanded["ssh"], []string{"dc"}) {
		t.Errorf("explicit assignment not copied verbatim: %v", expanded["ssh"])
	}
}

func TestExpandUnknownServiceEmptyList(t *testing.T) {
	reg := testRegistry(t)
	expanded, errs := Expand(Assignment{"ftp": {}}, reg)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(expanded["ftp"]) != 0 {
		t.Errorf("service without builtin rule should expand to no hosts, got %v", expanded["ftp"])
	}
	if _, present := expanded["ftp"]; !present {
		t.Error("service should still be present in the expanded mapping")
	}
}

func TestExpandUnknownHostCollected(t *testing.T) {
	reg := testRegistry(t)
	expanded, errs := Expand(Assignment{
		"web": {"ghost-host", "web1"},
		"dns": {"phantom"},
	}, reg)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	// Resolution continues past failures so one run reports everything.
	if !reflect.DeepEqual(expanded["web"], []string{"web1"}) {
		t.Errorf("known host dropped alongside unknown one: %v", expanded["web"])
	}
	e, ok := errs[0].(*UnknownHostError)
	if !ok {
		t.Fatalf("expected UnknownHostError, got %T", errs[0])
	}
	if e.Service != "dns" || e.Host != "phantom" {
		t.Errorf("errors not in deterministic service order: %+v", e)
	}
}

func TestExpandCaseHint(t *testing.T) {
	reg := testRegistry(t)
	_, errs := Expand(Assignment{"web": {"WEB1"}}, reg)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	e := errs[0].(*UnknownHostError)
	if e.CaseHint != "web1" {
		t.Errorf("expected case hint web1, got %q", e.CaseHint)
	}
}

func TestInvert(t *testing.T) {
	reg := testRegistry(t)
	expanded := Expanded{
		"web":  {"web1"},
		"ssh":  {"score", "web1"},
		"ping": {"dc", "score", "web1"},
	}
	hs := Invert(expanded, reg)
	if len(hs) != 3 {
		t.Fatalf("every registry host should have an entry, got %d", len(hs))
	}
	if !reflect.DeepEqual(hs["web1"], []string{"ping", "ssh", "web"}) {
		t.Errorf("web1 services = %v, want sorted [ping ssh web]", hs["web1"])
	}
	if !reflect.DeepEqual(hs["dc"], []string{"ping"}) {
		t.Errorf("dc services = %v", hs["dc"])
	}
}

func TestInvertServicelessHost(t *testing.T) {
	reg := testRegistry(t)
	hs := Invert(Expanded{}, reg)
	if got, present := hs["dc"]; !present || len(got) != 0 {
		t.Errorf("service-less host should have an empty entry, got %v (present=%v)", got, present)
	}
}
