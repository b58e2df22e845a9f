package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rangekit/checkgen/internal/config"
	"github.com/rangekit/checkgen/internal/health"
	"github.com/rangekit/checkgen/internal/logging"
	"github.com/rangekit/checkgen/internal/metrics"
	"github.com/rangekit/checkgen/internal/pipeline"
	"github.com/rangekit/checkgen/internal/telemetry"
)

const version = "1.0.0"

func main() {
	var configFile string
	var topologyFile string
	var tofuDir string
	var assignmentFile string
	var defaultsFile string
	var overridesFile string
	var inventoryOut string
	var checksOut string
	var rdpDir string
	var watch bool
	var intervalSec int
	var metricsAddr string
	var otelEndpoint string
	var otelInsecure bool
	var otelService string
	var verbose bool
	var showVersion bool

	flag.StringVar(&configFile, "config", "", "path to config file (YAML or JSON)")
	flag.StringVar(&topologyFile, "topology", "", "path to the captured topology feed (YAML or JSON)")
	flag.StringVar(&tofuDir, "tofu_dir", "", "read topology live from the OpenTofu project in this directory")
	flag.StringVar(&assignmentFile, "assignment", "", "path to the service assignment table")
	flag.StringVar(&defaultsFile, "defaults", "", "path to the default check table")
	flag.StringVar(&overridesFile, "overrides", "", "path to the per-host override table")
	flag.StringVar(&inventoryOut, "inventory_out", "", "output path for the inventory artifact")
	flag.StringVar(&checksOut, "checks_out", "", "output path for the check-config artifact")
	flag.StringVar(&rdpDir, "rdp_dir", "", "output directory for per-host RDP files (empty to disable)")
	flag.BoolVar(&watch, "watch", false, "stay resident and re-resolve periodically")
	flag.IntVar(&intervalSec, "interval", 0, "seconds between watch-mode runs")
	flag.StringVar(&metricsAddr, "metrics_addr", "", "metrics/health listen addr for watch mode (empty to disable)")
	flag.StringVar(&otelEndpoint, "otel_endpoint", "", "OTLP HTTP endpoint (host:port)")
	flag.BoolVar(&otelInsecure, "otel_insecure", true, "OTLP insecure (no TLS)")
	flag.StringVar(&otelService, "otel_service", "", "OTEL service.name")
	flag.BoolVar(&verbose, "verbose", false, "verbose logging")
	flag.BoolVar(&showVersion, "version", false, "show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "checkgen resolves service assignments for a lab and generates the\n")
		fmt.Fprintf(os.Stderr, "inventory and scoring-engine check configuration from them.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -topology=topology.json -assignment=services.yaml -defaults=checks.yaml\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config=checkgen.yaml -watch -metrics_addr=:9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -tofu_dir=opentofu -defaults=checks.yaml -rdp_dir=RDP\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  CHECKGEN_LINUX_USER / CHECKGEN_LINUX_PASSWORD       inventory Linux connection vars\n")
		fmt.Fprintf(os.Stderr, "  CHECKGEN_WINDOWS_USER / CHECKGEN_WINDOWS_PASSWORD   inventory Windows connection vars\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Println("checkgen v" + version)
		os.Exit(0)
	}

	log := logging.New(verbose)
	defer log.Sync()

	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			log.Fatal("failed to load config file", "file", configFile, "err", err)
		}
		log.Info("loaded config from file", "file", configFile)
	} else {
		cfg = &config.Config{}
		cfg.SetDefaults()
	}
	cfg.LoadFromEnv()

	flags := make(map[string]interface{})
	if topologyFile != "" {
		flags["topology"] = topologyFile
	}
	if tofuDir != "" {
		flags["tofu_dir"] = tofuDir
	}
	if assignmentFile != "" {
		flags["assignment"] = assignmentFile
	}
	if defaultsFile != "" {
		flags["defaults"] = defaultsFile
	}
	if overridesFile != "" {
		flags["overrides"] = overridesFile
	}
	if inventoryOut != "" {
		flags["inventory_out"] = inventoryOut
	}
	if checksOut != "" {
		flags["checks_out"] = checksOut
	}
	if rdpDir != "" {
		flags["rdp_dir"] = rdpDir
	}
	if watch {
		flags["watch"] = watch
	}
	if intervalSec > 0 {
		flags["interval_sec"] = intervalSec
	}
	if metricsAddr != "" {
		flags["metrics_addr"] = metricsAddr
	}
	if otelEndpoint != "" {
		flags["otel_endpoint"] = otelEndpoint
	}
	if otelService != "" {
		flags["otel_service"] = otelService
	}
	flags["otel_insecure"] = otelInsecure
	cfg.MergeWithFlags(flags)

	if err := cfg.Validate(); err != nil {
		flag.Usage()
		log.Fatal("invalid configuration", "err", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.OTELService, cfg.OTELInsecure)
	if err != nil {
		log.Warn("otel init failed", "err", err)
	} else {
		defer shutdown(context.Background())
	}

	if !cfg.Watch {
		if _, ok := runOnce(ctx, cfg, nil, "", log); !ok {
			os.Exit(1)
		}
		return
	}

	healthHandler := health.NewHandler()
	healthHandler.SetMetadata("version", version)
	if cfg.MetricsAddr != "" {
		go metrics.ServeWithHealth(cfg.MetricsAddr, healthHandler, log)
		log.Info("metrics and health server started", "addr", cfg.MetricsAddr)
	}
	healthHandler.SetReady(true)

	log.Info("watching for topology changes", "interval_sec", cfg.IntervalSec)
	ticker := time.NewTicker(time.Duration(cfg.IntervalSec) * time.Second)
	defer ticker.Stop()

	var lastFingerprint string
	if fp, ok := runOnce(ctx, cfg, healthHandler, lastFingerprint, log); ok {
		lastFingerprint = fp
	}
	for {
		select {
		case <-ticker.C:
			if fp, ok := runOnce(ctx, cfg, healthHandler, lastFingerprint, log); ok {
				lastFingerprint = fp
			}
		case <-ctx.Done():
			log.Info("shutdown complete")
			return
		}
	}
}

// runOnce executes one resolve-and-write cycle. It returns the artifact
// fingerprint and whether the run produced (or already matched) valid
// artifacts.
func runOnce(ctx context.Context, cfg *config.Config, h *health.Handler, lastFingerprint string, log *logging.Logger) (string, bool) {
	start := time.Now()

	in, err := pipeline.LoadInputs(ctx, cfg)
	if err != nil {
		log.Error("failed to load inputs", "err", err)
		recordRun(h, health.RunStatus{At: start, Error: err.Error()})
		return "", false
	}

	run, err := pipeline.Resolve(ctx, in, log)
	if err != nil {
		log.Error("resolution failed", "err", err)
		recordRun(h, health.RunStatus{At: start, Error: err.Error()})
		return "", false
	}
	if !run.Result.OK() {
		for _, e := range run.Result.Errors {
			log.Error("validation error", "err", e.Error())
		}
		log.Error("run aborted, no artifacts written", "errors", len(run.Result.Errors))
		recordRun(h, health.RunStatus{At: start, Error: run.Result.Summary(),
			Hosts: run.Registry.Len(), Checks: run.CheckCount(), Warnings: len(run.Result.Warnings)})
		return "", false
	}

	fingerprint := pipeline.Fingerprint(run, cfg)
	if lastFingerprint != "" && fingerprint == lastFingerprint {
		log.Debug("artifacts unchanged, skipping write")
		recordRun(h, health.RunStatus{At: start, OK: true,
			Hosts: run.Registry.Len(), Checks: run.CheckCount(), Warnings: len(run.Result.Warnings)})
		return fingerprint, true
	}

	if err := pipeline.WriteArtifacts(run, cfg); err != nil {
		log.Error("failed to write artifacts", "err", err)
		recordRun(h, health.RunStatus{At: start, Error: err.Error()})
		return "", false
	}

	log.Info("artifacts written",
		"hosts", run.Registry.Len(),
		"checks", run.CheckCount(),
		"warnings", len(run.Result.Warnings),
		"inventory", cfg.InventoryOut,
		"checks_out", cfg.ChecksOut,
		"took", time.Since(start),
	)
	recordRun(h, health.RunStatus{At: start, OK: true,
		Hosts: run.Registry.Len(), Checks: run.CheckCount(), Warnings: len(run.Result.Warnings)})
	return fingerprint, true
}

func recordRun(h *health.Handler, rs health.RunStatus) {
	if h == nil {
		return
	}
	h.RecordRun(rs)
}
