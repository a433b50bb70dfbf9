package models

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultLabel = "result"

	insertResultAccepted = "accepted"
	insertResultRejected = "rejected"
)

var (
	spotCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spot_count",
		Help: "The number of indexed spots.",
	})

	spotInsertTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spot_insert_total",
		Help: "The total number of spot insertions by result.",
	}, []string{resultLabel})

	spotQueryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "spot_query_latency",
		Help: "The time to run a range query.",
	})

	spotQueryResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spot_query_results",
		Help:    "The number of spots returned by a range query.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)

func instrumentIncreaseSpotGauge() {
	spotCount.Inc()
}

func instrumentSpotInsert(result string) {
	spotInsertTotal.
		With(prometheus.Labels{resultLabel: result}).
		Inc()
}

func instrumentSpotQuery(start time.Time, results int) {
	spotQueryLatency.Observe(time.Since(start).Seconds())
	spotQueryResults.Observe(float64(results))
}
