package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rangekit/checkgen/internal/health"
)

var (
	RunsTotal        = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "checkgen_runs_total", Help: "pipeline runs"}, []string{"status"})
	HostsResolved    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "checkgen_hosts_resolved", Help: "hosts in the last resolved run"})
	ChecksResolved   = prometheus.NewGauge(prometheus.GaugeOpts{Name: "checkgen_checks_resolved", Help: "checks in the last resolved run"})
	ValidationFaults = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "checkgen_validation_faults_total", Help: "validation findings"}, []string{"severity"})
	ArtifactWrites   = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "checkgen_artifact_writes_total", Help: "artifact files written"}, []string{"artifact"})
)

func init() {
	prometheus.MustRegister(RunsTotal, HostsResolved, ChecksResolved, ValidationFaults, ArtifactWrites)
}

// ServeWithHealth exposes /metrics plus the health endpoints; used in
// watch mode where the generator stays resident.
func ServeWithHealth(addr string, healthHandler *health.Handler, log *zap.SugaredLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler.HealthHandler)
	mux.HandleFunc("/ready", healthHandler.ReadinessHandler)
	mux.HandleFunc("/live", healthHandler.LivenessHandler)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn("metrics server stopped", "err", err)
	}
}
