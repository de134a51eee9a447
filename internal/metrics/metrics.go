package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SignalsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_emitted_total", Help: "Signals produced by the engine"},
		[]string{"asset", "strategy"},
	)
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "provider_requests_total", Help: "Quote provider requests by outcome"},
		[]string{"asset", "outcome"},
	)
	BarsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bars_ingested_total", Help: "Bars upserted from the quote provider"},
		[]string{"asset"},
	)
	EngineRunSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_run_seconds",
			Help:    "Wall time of one signal engine invocation",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)
)

func init() {
	prometheus.MustRegister(SignalsEmitted, ProviderRequests, BarsIngested, EngineRunSeconds)
}

// Handler exposes the default registry for a gin router.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
