package download

import "github.com/prometheus/client_golang/prometheus"

var (
	bytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tutord",
			Subsystem: "download",
			Name:      "bytes_total",
			Help:      "Total bytes written by asset downloads",
		},
	)

	downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tutord",
			Subsystem: "download",
			Name:      "downloads_total",
			Help:      "Finished asset downloads by result",
		},
		[]string{"result"},
	)

	inProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tutord",
			Subsystem: "download",
			Name:      "in_progress",
			Help:      "1 while an asset download is running",
		},
	)
)

func init() {
	prometheus.MustRegister(bytesTotal, downloadsTotal, inProgress)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsCancelled(err):
		return "cancelled"
	case IsAlreadyInProgress(err):
		return "rejected"
	default:
		return "error"
	}
}
