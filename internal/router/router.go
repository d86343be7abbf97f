// Package router wires the chi route table and HTTP middleware.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/cinematch/cinematch/internal/handler"
	"github.com/cinematch/cinematch/internal/metrics"
)

func Setup(h *handler.Handler, m *metrics.Metrics, logger zerolog.Logger, requestTimeout time.Duration) http.Handler {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// Routes
	r.Get("/movies", h.ListMovies)
	r.Get("/movies/{movieID}", h.GetMovie)
	r.Post("/rate", h.RateMovie)
	r.Get("/users/{userID}/profile", h.GetUserProfile)
	r.Post("/recommendations", h.PostRecommendations)
	r.Get("/recommendations/batch", h.GetBatchRecommendations)
	r.Get("/explain/{userID}/{movieID}", h.GetExplanation)
	r.Get("/evaluate", h.Evaluate)
	r.Post("/admin/retrain", h.Retrain)
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", middleware.GetReqID(r.Context())).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
