package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(renderJobsTotal, renderLatencySeconds) }

var renderJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "render_jobs_total",
		Help: "Total number of render jobs processed, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var renderLatencySeconds = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "render_latency_seconds",
		Help:    "Video render duration distribution in seconds.",
		Buckets: []float64{1, 5, 10, 30, 60, 90, 120, 180},
	},
)

func IncRenderJob(status string) {
	renderJobsTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveRenderSeconds(s float64) {
	renderLatencySeconds.Observe(s)
}
