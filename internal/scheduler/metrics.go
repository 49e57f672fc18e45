package scheduler

import "github.com/prometheus/client_golang/prometheus"

// Metrics
var (
	detectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "mood_detections_total", Help: "Detection runs by entry kind and outcome"},
		[]string{"entry", "outcome"},
	)
	detectionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mood_detection_duration_seconds",
			Help:    "Full pipeline time",
			Buckets: []float64{1, 2, 5, 10, 20, 40},
		},
	)
	fallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "mood_inference_fallback_total", Help: "Results synthesized locally"},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(detectionsTotal, detectionDuration, fallbackTotal)
}
