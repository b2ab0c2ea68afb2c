package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics groups Prometheus collectors for HTTP observability.
type HTTPMetrics struct {
	ReqTotal *prometheus.CounterVec
	ReqDur   *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTPMetrics registers and returns HTTP metrics collectors.
func NewHTTPMetrics(namespace string, reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &HTTPMetrics{
		ReqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		ReqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"method", "route"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
	}
	register(reg, m.ReqTotal)
	register(reg, m.ReqDur)
	register(reg, m.InFlight)
	return m
}

var (
	domainOnce sync.Once

	// SalesCommittedTotal counts committed sales by status.
	SalesCommittedTotal *prometheus.CounterVec
	// InstallmentsGeneratedTotal counts installments produced by the scheduler.
	InstallmentsGeneratedTotal prometheus.Counter
	// ReceivablesCreatedTotal counts accounts receivable fanned out on commit.
	ReceivablesCreatedTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers sales domain collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		SalesCommittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_committed_total",
			Help:      "Count of committed sales by status.",
		}, []string{"status"})
		InstallmentsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "installments_generated_total",
			Help:      "Count of installments produced by the due-schedule generator.",
		})
		ReceivablesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receivables_created_total",
			Help:      "Count of accounts receivable created from committed sales.",
		})
		register(reg, SalesCommittedTotal)
		register(reg, InstallmentsGeneratedTotal)
		register(reg, ReceivablesCreatedTotal)
	})
}

func register(reg prometheus.Registerer, c prometheus.Collector) {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return
		}
		panic(fmt.Errorf("register collector: %w", err))
	}
}
