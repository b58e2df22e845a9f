// Package pipeline wires the resolution stages together: classify →
// expand → invert → resolve → validate → render. Each stage consumes the
// previous stage's output as an immutable value; a run either produces
// all artifacts or none.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/rangekit/checkgen/internal/assign"
	"github.com/rangekit/checkgen/internal/checks"
	"github.com/rangekit/checkgen/internal/config"
	"github.com/rangekit/checkgen/internal/logging"
	"github.com/rangekit/checkgen/internal/metrics"
	"github.com/rangekit/checkgen/internal/render"
	"github.com/rangekit/checkgen/internal/resolve"
	"github.com/rangekit/checkgen/internal/telemetry"
	"github.com/rangekit/checkgen/internal/tofu"
	"github.com/rangekit/checkgen/internal/topology"
	"github.com/rangekit/checkgen/internal/validate"
)

// Inputs is one immutable snapshot of everything a run consumes.
type Inputs struct {
	Feed       []topology.Host
	Assignment assign.Assignment
	Defaults   checks.Defaults
	Overrides  checks.Overrides
}

// Run is the fully resolved state of one pipeline invocation.
type Run struct {
	Registry *topology.Registry
	Expanded assign.Expanded
	Services assign.HostServices
	Boxes    []resolve.Box
	Result   *validate.Result
}

// CheckCount returns the total number of resolved checks across boxes.
func (r *Run) CheckCount() int {
	n := 0
	for _, b := range r.Boxes {
		n += len(b.Checks)
	}
	return n
}

// LoadInputs reads the topology feed and the authored tables named by the
// configuration. With TofuDir set, the feed and the assignment come from
// the provisioning state; an assignment file still wins when given.
func LoadInputs(ctx context.Context, cfg *config.Config) (Inputs, error) {
	var in Inputs

	if cfg.TofuDir != "" {
		st, err := tofu.Fetch(ctx, cfg.TofuDir)
		if err != nil {
			return in, err
		}
		in.Feed = st.Hosts
		in.Assignment = st.ServiceHosts
	} else {
		feed, err := topology.LoadFeed(cfg.Topology)
		if err != nil {
			return in, err
		}
		in.Feed = feed
	}

	if cfg.Assignment != "" {
		a, err := assign.Load(cfg.Assignment)
		if err != nil {
			return in, err
		}
		in.Assignment = a
	}
	if in.Assignment == nil {
		in.Assignment = assign.Assignment{}
	}

	if cfg.Defaults != "" {
		d, err := checks.LoadDefaults(cfg.Defaults)
		if err != nil {
			return in, err
		}
		in.Defaults = d
	}
	if cfg.Overrides != "" {
		o, err := checks.LoadOverrides(cfg.Overrides)
		if err != nil {
			return in, err
		}
		in.Overrides = o
	}
	return in, nil
}

// Resolve runs stages 1-5 over one input snapshot. A topology
// classification failure is fatal and returns an error; every other
// finding lands in Run.Result so a single invocation reports the complete
// list of authoring mistakes.
func Resolve(ctx context.Context, in Inputs, log *logging.Logger) (*Run, error) {
	tracer := telemetry.Tracer()

	_, span := tracer.Start(ctx, "topology.classify")
	reg, err := topology.Build(in.Feed)
	span.End()
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("topology classification failed: %w", err)
	}

	run := &Run{Registry: reg, Result: &validate.Result{}}

	_, span = tracer.Start(ctx, "assign.expand")
	expanded, expandErrs := assign.Expand(in.Assignment, reg)
	span.End()
	run.Expanded = expanded
	run.Result.AddErrors(expandErrs...)
	for _, err := range expandErrs {
		if e, ok := err.(*assign.UnknownHostError); ok && e.CaseHint != "" {
			log.Warn("host reference differs from topology only by case",
				"service", e.Service, "assigned", e.Host, "topology", e.CaseHint)
		}
	}

	_, span = tracer.Start(ctx, "assign.invert")
	run.Services = assign.Invert(expanded, reg)
	span.End()

	_, span = tracer.Start(ctx, "resolve.hosts")
	run.Boxes = resolve.Hosts(reg, run.Services, in.Defaults, in.Overrides)
	span.End()

	_, span = tracer.Start(ctx, "validate")
	validate.Services(expanded, run.Result)
	validate.Overrides(reg, expanded, in.Overrides, run.Result)
	validate.Boxes(run.Boxes, run.Result)
	span.End()

	for _, w := range run.Result.Warnings {
		log.Warn("validation warning", "warning", w.Error())
	}
	metrics.ValidationFaults.WithLabelValues("error").Add(float64(len(run.Result.Errors)))
	metrics.ValidationFaults.WithLabelValues("warning").Add(float64(len(run.Result.Warnings)))
	metrics.HostsResolved.Set(float64(reg.Len()))
	metrics.ChecksResolved.Set(float64(run.CheckCount()))
	if run.Result.OK() {
		metrics.RunsTotal.WithLabelValues("ok").Inc()
	} else {
		metrics.RunsTotal.WithLabelValues("invalid").Inc()
	}
	return run, nil
}

func groupVars(cfg *config.Config) render.GroupVars {
	return render.GroupVars{
		LinuxUser:       cfg.LinuxUser,
		LinuxPassword:   cfg.LinuxPassword,
		WindowsUser:     cfg.WindowsUser,
		WindowsPassword: cfg.WindowsPassword,
		WinRMProxy:      cfg.WinRMProxy,
	}
}

// Fingerprint digests the rendered artifacts of a run. Watch mode uses it
// to skip rewrites when nothing changed.
func Fingerprint(run *Run, cfg *config.Config) string {
	h := sha256.New()
	h.Write(render.Inventory(run.Registry, run.Expanded, run.Services, groupVars(cfg)))
	h.Write(render.CheckConfig(run.Boxes))
	return hex.EncodeToString(h.Sum(nil))
}

// WriteArtifacts renders and atomically writes every artifact of a valid
// run. A run with fatal findings writes nothing.
func WriteArtifacts(run *Run, cfg *config.Config) error {
	if !run.Result.OK() {
		return fmt.Errorf("refusing to write artifacts: %d validation errors: %s",
			len(run.Result.Errors), run.Result.Summary())
	}

	inventory := render.Inventory(run.Registry, run.Expanded, run.Services, groupVars(cfg))
	if err := render.WriteFile(cfg.InventoryOut, inventory); err != nil {
		return err
	}
	metrics.ArtifactWrites.WithLabelValues("inventory").Inc()

	if err := render.WriteFile(cfg.ChecksOut, render.CheckConfig(run.Boxes)); err != nil {
		return err
	}
	metrics.ArtifactWrites.WithLabelValues("checks").Inc()

	if cfg.RDPDir != "" {
		opts := render.RDPOptions{Gateway: cfg.RDPGateway, Username: cfg.RDPUsername}
		if err := render.WriteRDPFiles(cfg.RDPDir, run.Registry, opts); err != nil {
			return err
		}
		metrics.ArtifactWrites.WithLabelValues("rdp").Inc()
	}
	return nil
}
