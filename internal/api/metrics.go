package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments the conversion endpoints.
type Metrics struct {
	// Detections by matched format label; "unrecognized" for no match.
	Detections *prometheus.CounterVec

	// Zone searches by whether the query was empty.
	Searches *prometheus.CounterVec

	ConvertLatency prometheus.Histogram
}

// NewMetrics registers the metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Detections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tsconv_detections_total",
			Help: "Timestamp detections by matched format",
		}, []string{"format"}),

		Searches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tsconv_zone_searches_total",
			Help: "Time zone searches by query kind",
		}, []string{"kind"}),

		ConvertLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tsconv_convert_duration_seconds",
			Help:    "Duration of detect and render for one input",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		}),
	}
}

// IncrementDetection records the outcome of one detection.
func (m *Metrics) IncrementDetection(format string) {
	if m != nil {
		m.Detections.WithLabelValues(format).Inc()
	}
}

// IncrementSearch records one zone search.
func (m *Metrics) IncrementSearch(empty bool) {
	if m == nil {
		return
	}
	kind := "query"
	if empty {
		kind = "empty"
	}
	m.Searches.WithLabelValues(kind).Inc()
}

// ObserveConvertLatency records the duration of one conversion.
func (m *Metrics) ObserveConvertLatency(d time.Duration) {
	if m != nil {
		m.ConvertLatency.Observe(d.Seconds())
	}
}
