package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ScanDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "clubgate",
	Name:      "scan_decisions_total",
	Help:      "Scan decisions by outcome and reason",
}, []string{"outcome", "reason"})

var ScanErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "clubgate",
	Name:      "scan_errors_total",
	Help:      "Scans that ended without a decision, by error kind",
}, []string{"kind"})

var ScanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "clubgate",
	Name:      "scan_duration_seconds",
	Help:      "Time spent deciding one scan",
	Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
})

var AuditWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "clubgate",
	Name:      "audit_write_failures_total",
	Help:      "Audit events that could not be persisted",
})

var HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "clubgate",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by route pattern and status code",
}, []string{"route", "code"})

var DBWriteQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "clubgate",
	Subsystem: "db",
	Name:      "write_queue_depth",
	Help:      "Write transactions waiting for the writer goroutine",
})

var DBWriteDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "clubgate",
	Subsystem: "db",
	Name:      "write_duration_seconds",
	Help:      "Time from BEGIN to COMMIT or ROLLBACK of one write transaction",
	Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
})

var DBWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "clubgate",
	Subsystem: "db",
	Name:      "write_failures_total",
	Help:      "Write transactions that rolled back or failed to commit",
})
