package observability

import (
	"context"

	"github.com/aretw0/portscope/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the inspector's Prometheus collectors.
type Metrics struct {
	Extractions     *prometheus.CounterVec
	Duration        prometheus.Histogram
	ExtractedValues prometheus.Histogram
	MarkersCreated  prometheus.Counter
	MarkersSkipped  prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portscope_extractions_total",
				Help: "Port extractions by outcome",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "portscope_extraction_duration_seconds",
			Help:    "Duration of port extractions",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		ExtractedValues: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "portscope_extracted_values",
			Help:    "Number of values read per extraction",
			Buckets: prometheus.ExponentialBuckets(1, 10, 7),
		}),
		MarkersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portscope_markers_created_total",
			Help: "Markers created in the host scene",
		}),
		MarkersSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portscope_markers_skipped_total",
			Help: "Marker values skipped because they were not a valid placement",
		}),
	}
	reg.MustRegister(m.Extractions, m.Duration, m.ExtractedValues, m.MarkersCreated, m.MarkersSkipped)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnExtract: func(ctx context.Context, e *domain.ExtractEvent) {
			m.Extractions.WithLabelValues(string(e.Outcome)).Inc()
			m.Duration.Observe(e.Duration.Seconds())
			if e.Outcome == domain.OutcomeData {
				m.ExtractedValues.Observe(float64(e.Values))
			}
		},
		OnMarker: func(ctx context.Context, e *domain.MarkerEvent) {
			switch e.Type {
			case domain.EventMarkerCreated:
				m.MarkersCreated.Inc()
			case domain.EventMarkerSkipped:
				m.MarkersSkipped.Inc()
			}
		},
	}
}
