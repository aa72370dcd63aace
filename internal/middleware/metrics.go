package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MatchCalculations counts compatibility calculations by outcome.
	MatchCalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jammatch_match_calculations_total",
		Help: "Total number of compatibility score calculations by outcome",
	}, []string{"outcome"})

	// FinalScoreDistribution records the distribution of final compatibility scores.
	FinalScoreDistribution = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jammatch_final_score",
		Help:    "Distribution of final compatibility scores",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	// AIAnalysisLatency records Gemini analysis latency by outcome.
	AIAnalysisLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jammatch_ai_analysis_latency_seconds",
		Help:    "Latency of AI compatibility analysis requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	// BandsFormed counts bands created by the matching engine.
	BandsFormed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jammatch_bands_formed_total",
		Help: "Total number of bands formed by the matching engine",
	})

	// ChatMessages counts chat messages by type.
	ChatMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jammatch_chat_messages_total",
		Help: "Total number of chat messages by type",
	}, []string{"message_type"})

	// ActiveWebSockets is the gauge of open chat WebSocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jammatch_websocket_connections",
		Help: "Number of active chat WebSocket connections",
	})

	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jammatch_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the fiberprometheus middleware for HTTP request metrics.
// The underlying collectors register in the default Prometheus registry once;
// subsequent calls return the same instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware returns the HTTP metrics collection handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
