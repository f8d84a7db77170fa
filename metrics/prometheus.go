package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exports client metrics as
// nlx402_requests_total{operation,outcome} and
// nlx402_request_duration_seconds{operation}.
type PrometheusRecorder struct {
	counters  *prometheus.CounterVec
	histogram *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the client collectors with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	counters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nlx402",
			Name:      "requests_total",
			Help:      "NLx402 client operations by outcome",
		},
		[]string{LabelOperation, LabelOutcome},
	)

	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nlx402",
			Name:      "request_duration_seconds",
			Help:      "NLx402 client operation latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelOperation},
	)

	for _, c := range []prometheus.Collector{counters, histogram} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &PrometheusRecorder{
		counters:  counters,
		histogram: histogram,
	}, nil
}

func (p *PrometheusRecorder) IncCounter(name string, labels map[string]string) {
	if name != MetricRequests {
		return
	}
	p.counters.With(prometheus.Labels{
		LabelOperation: labels[LabelOperation],
		LabelOutcome:   labels[LabelOutcome],
	}).Inc()
}

func (p *PrometheusRecorder) ObserveLatency(name string, d time.Duration, labels map[string]string) {
	if name != MetricRequestDuration {
		return
	}
	p.histogram.With(prometheus.Labels{
		LabelOperation: labels[LabelOperation],
	}).Observe(d.Seconds())
}
