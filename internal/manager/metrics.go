package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	initializeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tutord",
			Subsystem: "session",
			Name:      "initialize_total",
			Help:      "Initialization attempts by result",
		},
		[]string{"result"},
	)

	generateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tutord",
			Subsystem: "session",
			Name:      "generate_duration_seconds",
			Help:      "Wall-clock duration of backend generate calls",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"backend", "status"},
	)
)

func init() {
	prometheus.MustRegister(initializeTotal, generateDuration)
}
