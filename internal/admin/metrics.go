package admin

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// metrics holds the Prometheus collectors the admin server exposes,
// grounded on the same NewGaugeVec/NewCounterVec/NewHistogramVec shape
// as the pack's metric.Metrics, scaled down to this simulator's needs.
type metrics struct {
	registry *prometheus.Registry

	sessions      prometheus.Gauge
	commandsTotal *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	tickDuration  prometheus.Histogram
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()

	m := &metrics{
		registry: reg,
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pvsimd",
			Subsystem: "server",
			Name:      "sessions",
			Help:      "Number of currently connected TCP clients.",
		}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pvsimd",
			Subsystem: "server",
			Name:      "commands_total",
			Help:      "Total commands processed, by verb.",
		}, []string{"verb"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pvsimd",
			Subsystem: "server",
			Name:      "errors_total",
			Help:      "Total error responses sent, by error code.",
		}, []string{"code"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pvsimd",
			Subsystem: "simulation",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of each simulation tick.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.sessions,
		m.commandsTotal,
		m.errorsTotal,
		m.tickDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// IncCommand, IncError, and ObserveTick satisfy server.Recorder
// structurally — admin.metrics is handed to server.Server.SetRecorder
// without this package importing server, the same trick as Logger.
func (m *metrics) IncCommand(verb string) {
	m.commandsTotal.WithLabelValues(verb).Inc()
}

func (m *metrics) IncError(code string) {
	m.errorsTotal.WithLabelValues(code).Inc()
}

func (m *metrics) ObserveTick(d time.Duration) {
	m.tickDuration.Observe(d.Seconds())
}
