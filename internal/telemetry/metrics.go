package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the validation pipeline. All methods
// are nil-safe so callers can run without metrics wired.
type Metrics struct {
	RowsProcessed prometheus.Counter
	RowsAccepted  prometheus.Counter
	RowsRejected  *prometheus.CounterVec // labeled by rejection reason code
	RunDuration   prometheus.Histogram
	RunRows       prometheus.Histogram
}

// NewMetrics creates pipeline metrics registered on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith creates pipeline metrics on a specific registerer.
// Tests pass their own registry to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "regcheck"
	}

	subsystem := "pipeline"
	factory := promauto.With(reg)

	return &Metrics{
		RowsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rows_processed_total",
			Help:      "Total input rows read across all runs",
		}),
		RowsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rows_accepted_total",
			Help:      "Total rows that passed every check",
		}),
		RowsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rows_rejected_total",
			Help:      "Total rejected rows by reason code",
		}, []string{"reason"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a batch run",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
		}),
		RunRows: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_rows",
			Help:      "Rows read per batch run",
			Buckets:   []float64{10, 100, 1000, 10000, 100000, 1000000},
		}),
	}
}

// ObserveAccepted records one accepted row.
func (m *Metrics) ObserveAccepted() {
	if m == nil {
		return
	}
	m.RowsProcessed.Inc()
	m.RowsAccepted.Inc()
}

// ObserveRejected records one rejected row with its reason code.
func (m *Metrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.RowsProcessed.Inc()
	m.RowsRejected.WithLabelValues(reason).Inc()
}

// ObserveRun records the duration and size of a completed batch run.
func (m *Metrics) ObserveRun(d time.Duration, rows int) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
	m.RunRows.Observe(float64(rows))
}
