// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors on a private registry so tests can create
// independent instances.
type Metrics struct {
	registry *prometheus.Registry

	TrainingsTotal   prometheus.Counter
	TrainingFailures prometheus.Counter
	TrainingDuration prometheus.Histogram
	ModelUsers       prometheus.Gauge
	ModelMovies      prometheus.Gauge

	RecommendationsTotal *prometheus.CounterVec
	CacheHits            prometheus.Counter
	CacheMisses          prometheus.Counter
	ExplanationTiers     *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		TrainingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinematch_trainings_total",
			Help: "Completed model trainings.",
		}),
		TrainingFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinematch_training_failures_total",
			Help: "Trainings that failed and did not replace the served model.",
		}),
		TrainingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cinematch_training_duration_seconds",
			Help:    "Wall-clock duration of model training.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		ModelUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cinematch_model_users",
			Help: "Users in the currently served model.",
		}),
		ModelMovies: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cinematch_model_movies",
			Help: "Movies in the currently served model.",
		}),
		RecommendationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinematch_recommendations_total",
			Help: "Recommendation requests by strategy.",
		}, []string{"strategy"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinematch_cache_hits_total",
			Help: "Recommendation cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinematch_cache_misses_total",
			Help: "Recommendation cache misses.",
		}),
		ExplanationTiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinematch_explanation_tier_total",
			Help: "Explanations served by fallback tier.",
		}, []string{"tier"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		m.TrainingsTotal,
		m.TrainingFailures,
		m.TrainingDuration,
		m.ModelUsers,
		m.ModelMovies,
		m.RecommendationsTotal,
		m.CacheHits,
		m.CacheMisses,
		m.ExplanationTiers,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
