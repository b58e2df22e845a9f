// Package tofu adapts OpenTofu state into the pipeline's topology feed.
// The provisioning project exposes per-team name/address lists plus the
// authored service_hosts map as outputs; this package flattens them into
// (name, addr, role) entries and the raw service assignment.
package tofu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rangekit/checkgen/internal/topology"
)

// State is the subset of the provisioning outputs the pipeline consumes.
type State struct {
	Hosts        []topology.Host
	ServiceHosts map[string][]string
}

// output mirrors the shape of one `tofu output -json` entry.
type output struct {
	Value json.RawMessage `json:"value"`
}

// group ties one provider output triple to the role tags its hosts get.
// The first host of a DC-capable group is the domain controller.
type group struct {
	prefix    string
	firstRole string
	role      string
}

// Groups are ordered as the provisioning project declares them, so the
// flattened feed is stable across runs.
var groups = []group{
	{prefix: "scoring", firstRole: "scoring", role: "scoring"},
	{prefix: "blue_windows", firstRole: "windows-dc", role: "windows-member"},
	{prefix: "blue_linux", firstRole: "linux-member", role: "linux-member"},
	{prefix: "red_kali", firstRole: "kali", role: "kali"},
}

// Parse decodes `tofu output -json` bytes into a State. Missing outputs
// are treated as empty lists; mismatched name/address list lengths are an
// error rather than a silent truncation.
func Parse(data []byte) (*State, error) {
	var outputs map[string]output
	if err := json.Unmarshal(data, &outputs); err != nil {
		return nil, fmt.Errorf("failed to parse tofu output: %w", err)
	}

	st := &State{ServiceHosts: map[string][]string{}}
	for _, g := range groups {
		names, err := stringList(outputs, g.prefix+"_names")
		if err != nil {
			return nil, err
		}
		addrs, err := stringList(outputs, g.prefix+"_ips")
		if err != nil {
			return nil, err
		}
		floating, err := stringList(outputs, g.prefix+"_floating_ips")
		if err != nil {
			return nil, err
		}
		if len(addrs) != len(names) || (len(floating) != 0 && len(floating) != len(names)) {
			return nil, fmt.Errorf("tofu output %s: %d names but %d addrs and %d floating addrs",
				g.prefix, len(names), len(addrs), len(floating))
		}
		for i, name := range names {
			role := g.role
			if i == 0 {
				role = g.firstRole
			}
			h := topology.Host{Name: name, Addr: addrs[i], Role: role}
			if len(floating) > 0 {
				h.FloatingAddr = floating[i]
			}
			st.Hosts = append(st.Hosts, h)
		}
	}

	if raw, ok := outputs["service_hosts"]; ok && len(raw.Value) > 0 {
		if err := json.Unmarshal(raw.Value, &st.ServiceHosts); err != nil {
			return nil, fmt.Errorf("failed to parse service_hosts output: %w", err)
		}
	}
	return st, nil
}

func stringList(outputs map[string]output, key string) ([]string, error) {
	raw, ok := outputs[key]
	if !ok || len(raw.Value) == 0 {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw.Value, &list); err != nil {
		return nil, fmt.Errorf("tofu output %s: %w", key, err)
	}
	return list, nil
}

// Fetch runs `tofu output -json` in dir and parses the result. The
// invocation is retried with exponential backoff: right after an apply
// the state backend can briefly refuse reads.
func Fetch(ctx context.Context, dir string) (*State, error) {
	var out []byte
	op := func() error {
		cmd := exec.CommandContext(ctx, "tofu", "output", "-json")
		cmd.Dir = dir
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("tofu output: %w (%s)", err, bytes.TrimSpace(stderr.Bytes()))
		}
		out = stdout.Bytes()
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return Parse(out)
}
