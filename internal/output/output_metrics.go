package output

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tkjaer/echobench/internal/shared"
	"github.com/tkjaer/echobench/internal/version"
)

// MetricsOutput exposes run progress as Prometheus metrics. It keeps raw
// per-worker values only; no latency distribution is computed.
type MetricsOutput struct {
	registry *prometheus.Registry

	results         prometheus.Counter
	roundsCompleted prometheus.Counter
	lastElapsed     prometheus.Gauge
	lastRound       prometheus.Gauge
	aborts          *prometheus.CounterVec
	buildInfo       *prometheus.GaugeVec
}

// NewMetricsOutput creates metrics on a fresh registry.
func NewMetricsOutput() *MetricsOutput {
	return newMetricsWithRegistry(prometheus.NewRegistry())
}

func newMetricsWithRegistry(registry *prometheus.Registry) *MetricsOutput {
	m := &MetricsOutput{
		registry: registry,
		results: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "echobench_results_total",
			Help: "Total number of worker round trips written to the result log",
		}),
		roundsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "echobench_rounds_completed_total",
			Help: "Total number of rounds in which every worker completed",
		}),
		lastElapsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "echobench_last_elapsed_microseconds",
			Help: "Elapsed value of the most recently logged worker, as written to the result log",
		}),
		lastRound: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "echobench_last_completed_round",
			Help: "Index of the last fully completed round",
		}),
		aborts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "echobench_aborts_total",
				Help: "Runs aborted, by failure kind",
			},
			[]string{"reason"},
		),
		buildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "echobench_build_info",
				Help: "Build information, value is always 1",
			},
			[]string{"version", "commit"},
		),
	}

	registry.MustRegister(m.results)
	registry.MustRegister(m.roundsCompleted)
	registry.MustRegister(m.lastElapsed)
	registry.MustRegister(m.lastRound)
	registry.MustRegister(m.aborts)
	registry.MustRegister(m.buildInfo)

	m.buildInfo.WithLabelValues(version.Version, version.GitCommit).Set(1)

	return m
}

func (m *MetricsOutput) RecordResult(r shared.WorkerResult) error {
	m.results.Inc()
	m.lastElapsed.Set(float64(r.Elapsed))
	return nil
}

func (m *MetricsOutput) CompleteRound(round uint, workers int) {
	m.roundsCompleted.Inc()
	m.lastRound.Set(float64(round))
}

func (m *MetricsOutput) AbortRun(reason string) {
	m.aborts.WithLabelValues(reason).Inc()
}

func (m *MetricsOutput) Close() error {
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *MetricsOutput) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr and serves /metrics until ctx is done. It returns
// the bound address once the listener is up.
func (m *MetricsOutput) Serve(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server error", "error", err)
		}
	}()

	slog.Info("Serving metrics", "addr", ln.Addr().String(), "path", "/metrics")
	return ln.Addr(), nil
}

