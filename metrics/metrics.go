// Package metrics exposes the decision pipeline's Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "tradecore"

// Metrics owns its own registry so several engines (and tests) can run in
// one process. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	TicksTotal        *prometheus.CounterVec
	BookUpdatesTotal  *prometheus.CounterVec
	StaleUpdatesTotal *prometheus.CounterVec
	SignalsTotal      *prometheus.CounterVec
	IntentsTotal      *prometheus.CounterVec
	RejectionsTotal   *prometheus.CounterVec
	SinkErrorsTotal   *prometheus.CounterVec
	EvalLatency       prometheus.Histogram
	HistoryLength     *prometheus.GaugeVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry:          reg,
		TicksTotal:        counter(f, "market", "ticks_total", "Trade ticks ingested", "symbol"),
		BookUpdatesTotal:  counter(f, "market", "book_updates_total", "Order book updates applied", "symbol", "side"),
		StaleUpdatesTotal: counter(f, "market", "stale_book_updates_total", "Order book updates dropped as out of order", "symbol"),
		SignalsTotal:      counter(f, "strategy", "signals_total", "Directional signals generated", "symbol", "signal"),
		IntentsTotal:      counter(f, "risk", "intents_approved_total", "Trade intents approved by the risk gate", "symbol", "side"),
		RejectionsTotal:   counter(f, "risk", "rejections_total", "Trade intents rejected by the risk gate", "symbol", "kind"),
		SinkErrorsTotal:   counter(f, "engine", "sink_errors_total", "Errors returned by output sinks", "kind"),

		EvalLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "evaluation_latency_ms",
			Help:      "Time to evaluate one symbol in milliseconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		HistoryLength: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "history_length",
			Help:      "Prices held in the per-symbol history buffer",
		}, []string{"symbol"}),
	}
}

func counter(f promauto.Factory, subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Tick(symbol string) {
	if m == nil {
		return
	}
	m.TicksTotal.WithLabelValues(symbol).Inc()
}

func (m *Metrics) BookUpdate(symbol, side string) {
	if m == nil {
		return
	}
	m.BookUpdatesTotal.WithLabelValues(symbol, side).Inc()
}

func (m *Metrics) StaleUpdate(symbol string) {
	if m == nil {
		return
	}
	m.StaleUpdatesTotal.WithLabelValues(symbol).Inc()
}

func (m *Metrics) Signal(symbol, signal string) {
	if m == nil {
		return
	}
	m.SignalsTotal.WithLabelValues(symbol, signal).Inc()
}

func (m *Metrics) Intent(symbol, side string) {
	if m == nil {
		return
	}
	m.IntentsTotal.WithLabelValues(symbol, side).Inc()
}

func (m *Metrics) Rejection(symbol, kind string) {
	if m == nil {
		return
	}
	m.RejectionsTotal.WithLabelValues(symbol, kind).Inc()
}

func (m *Metrics) SinkError(kind string) {
	if m == nil {
		return
	}
	m.SinkErrorsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveEval(d time.Duration) {
	if m == nil {
		return
	}
	m.EvalLatency.Observe(float64(d) / float64(time.Millisecond))
}

func (m *Metrics) SetHistoryLength(symbol string, n int) {
	if m == nil {
		return
	}
	m.HistoryLength.WithLabelValues(symbol).Set(float64(n))
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, m *Metrics, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
