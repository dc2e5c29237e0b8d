package backup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "backup_runs_total",
		Help: "Number of database backup runs, by trigger and result.",
	}, []string{"trigger", "result"})

	lastSize = promauto.NewGauge(prometheus.GaugeOpts{ //nolint:gochecknoglobals
		Name: "backup_last_size_bytes",
		Help: "Size of the most recent successful backup artifact.",
	})
)

func observe(trigger string, size int64, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}

	runsTotal.WithLabelValues(trigger, result).Inc()

	if err == nil {
		lastSize.Set(float64(size))
	}
}
