// Package service orchestrates the trained model, storage, cache and
// explanation layers behind the HTTP handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinematch/cinematch/internal/domain"
	"github.com/cinematch/cinematch/internal/knowledge"
	"github.com/cinematch/cinematch/internal/metrics"
	"github.com/cinematch/cinematch/internal/rag"
	"github.com/cinematch/cinematch/internal/recommender"
)

const (
	defaultLimit     = 10
	maxLimit         = 50
	batchConcurrency = 10
	batchRecLimit    = 10
)

// RatingStore is the rating persistence the service depends on.
type RatingStore interface {
	GetAllRatings(ctx context.Context) ([]domain.Rating, error)
	GetUserRatings(ctx context.Context, userID int64) ([]domain.Rating, error)
	AddRating(ctx context.Context, rt domain.Rating) error
	MovieRatingStats(ctx context.Context, movieID int64) (float64, int, map[string]int, error)
	GetUserIDsPaginated(ctx context.Context, page, limit int) ([]int64, error)
	CountUsers(ctx context.Context) (int, error)
}

// MovieStore is the catalog persistence the service depends on.
type MovieStore interface {
	GetAllMovies(ctx context.Context) ([]domain.Movie, error)
	GetMovieByID(ctx context.Context, movieID int64) (*domain.Movie, error)
	ListMovies(ctx context.Context, genre, search string, limit int) ([]domain.Movie, error)
}

// RecCache caches recommendation lists. A nil cache disables caching.
type RecCache interface {
	Get(ctx context.Context, userID int64, strategy domain.Strategy, limit int) ([]domain.Recommendation, bool, error)
	Set(ctx context.Context, userID int64, strategy domain.Strategy, limit int, recs []domain.Recommendation) error
	ClearUser(ctx context.Context, userID int64) error
	ClearAll(ctx context.Context) error
}

// Config tunes the service.
type Config struct {
	Model recommender.Config

	// ExplainMode selects "rule" or "rag" at configuration time.
	ExplainMode string

	GenerationTimeout time.Duration

	// HoldoutEvery holds out every Nth rating from training for the
	// evaluation endpoint. Zero disables the holdout.
	HoldoutEvery int

	// SnapshotPath, when set, is where trained models are persisted and
	// restored from on startup.
	SnapshotPath string
}

// Service owns the model handle. The trained model is immutable; a
// retrain builds a complete replacement and publishes it with one
// atomic swap, so readers never observe a half-built matrix.
type Service struct {
	ratings RatingStore
	movies  MovieStore
	cache   RecCache
	cfg     Config
	logger  zerolog.Logger
	metrics *metrics.Metrics

	model     atomic.Pointer[recommender.Model]
	heldOut   atomic.Pointer[[]domain.Rating]
	knowledge atomic.Pointer[knowledge.Store]
	training  atomic.Bool

	explainer *rag.Explainer
}

// New wires the service. generator may be nil; the explanation chain
// degrades to templates without it.
func New(ratings RatingStore, movies MovieStore, cache RecCache, generator rag.Generator, cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Service {
	s := &Service{
		ratings: ratings,
		movies:  movies,
		cache:   cache,
		cfg:     cfg,
		logger:  logger.With().Str("component", "service").Logger(),
		metrics: m,
	}

	opts := []rag.Option{
		rag.WithTierObserver(func(tier string) {
			m.ExplanationTiers.WithLabelValues(tier).Inc()
		}),
	}
	if cfg.GenerationTimeout > 0 {
		opts = append(opts, rag.WithTimeout(cfg.GenerationTimeout))
	}
	if generator != nil {
		opts = append(opts, rag.WithGenerator(generator))
	}
	// The service is its own retriever so the explainer always reads the
	// knowledge store published with the current model.
	s.explainer = rag.NewExplainer(s, logger, opts...)

	return s
}

// Search implements rag.Retriever against the current knowledge store.
func (s *Service) Search(query string, k int) []domain.KnowledgeDoc {
	store := s.knowledge.Load()
	if store == nil {
		return nil
	}
	return store.Search(query, k)
}

// Context implements rag.Retriever against the current knowledge store.
func (s *Service) Context(movieID int64) (string, bool) {
	store := s.knowledge.Load()
	if store == nil {
		return "", false
	}
	return store.Context(movieID)
}

// Model returns the currently served model, or nil before training.
func (s *Service) Model() *recommender.Model {
	return s.model.Load()
}

// Recommend serves a ranked list for one user, consulting the cache
// first. Explanations are attached to each entry.
func (s *Service) Recommend(ctx context.Context, userID int64, strategy domain.Strategy, limit int) (*domain.RecommendationResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	s.metrics.RecommendationsTotal.WithLabelValues(string(strategy)).Inc()

	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, userID, strategy, limit)
		if err != nil {
			s.logger.Warn().Err(err).Int64("user_id", userID).Msg("cache get failed")
		}
		if found {
			s.metrics.CacheHits.Inc()
			return &domain.RecommendationResult{Recommendations: cached, CacheHit: true}, nil
		}
		s.metrics.CacheMisses.Inc()
	}

	model := s.model.Load()
	if model == nil {
		return nil, domain.ErrNotTrained
	}

	recs, err := model.Recommend(userID, limit, strategy)
	if err != nil {
		return nil, err
	}

	for i := range recs {
		recs[i].Explanation = s.explainRec(ctx, model, userID, recs[i])
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, strategy, limit, recs); err != nil {
			s.logger.Warn().Err(err).Int64("user_id", userID).Msg("cache set failed")
		}
	}

	return &domain.RecommendationResult{Recommendations: recs, CacheHit: false}, nil
}

// Explain produces an explanation for one (user, movie) pair. It never
// fails: structural problems degrade to a generic sentence.
func (s *Service) Explain(ctx context.Context, userID, movieID int64) string {
	model := s.model.Load()
	if model == nil {
		return "Recommendations are still warming up; this movie matches broadly popular preferences."
	}

	if s.cfg.ExplainMode == "rag" {
		title, genres := "", []string(nil)
		if mv, ok := model.Movie(movieID); ok {
			title, genres = mv.Title, mv.Genres
		}
		score, err := model.Predict(userID, movieID)
		if err != nil {
			score = domain.NeutralRating
		}
		return s.explainer.Explain(ctx, rag.Input{
			UserID:  userID,
			MovieID: movieID,
			Title:   title,
			Genres:  genres,
			Score:   score,
			Method:  domain.MethodHybridUser,
			Profile: s.profileOrEmpty(ctx, userID),
		})
	}

	return model.Explain(userID, movieID)
}

func (s *Service) explainRec(ctx context.Context, model *recommender.Model, userID int64, rec domain.Recommendation) string {
	if s.cfg.ExplainMode == "rag" {
		return s.explainer.Explain(ctx, rag.Input{
			UserID:  userID,
			MovieID: rec.MovieID,
			Title:   rec.Title,
			Genres:  rec.Genres,
			Score:   rec.Score,
			Method:  rec.Method,
			Profile: s.profileOrEmpty(ctx, userID),
		})
	}
	return model.Explain(userID, rec.MovieID)
}

func (s *Service) profileOrEmpty(ctx context.Context, userID int64) domain.UserProfile {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return domain.UserProfile{UserID: userID}
	}
	return *profile
}

// Profile aggregates a user's rating behavior: totals, mean, top genres
// and the per-star distribution.
func (s *Service) Profile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	userRatings, err := s.ratings.GetUserRatings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch ratings: %w", err)
	}
	if len(userRatings) == 0 {
		return nil, domain.ErrUserNotFound
	}

	profile := &domain.UserProfile{
		UserID:             userID,
		TotalRatings:       len(userRatings),
		RatingDistribution: make(map[string]int),
	}

	type genreAgg struct {
		sum   float64
		count int
	}
	genreSums := make(map[string]*genreAgg)

	var sum float64
	model := s.model.Load()
	for _, rt := range userRatings {
		sum += rt.Value
		profile.RatingDistribution[fmt.Sprintf("%.1f", rt.Value)]++

		if model == nil {
			continue
		}
		mv, ok := model.Movie(rt.MovieID)
		if !ok {
			continue
		}
		for _, g := range mv.Genres {
			agg := genreSums[g]
			if agg == nil {
				agg = &genreAgg{}
				genreSums[g] = agg
			}
			agg.sum += rt.Value
			agg.count++
		}
	}
	profile.AverageRating = sum / float64(len(userRatings))

	for g, agg := range genreSums {
		profile.TopGenres = append(profile.TopGenres, domain.GenreStat{
			Genre:         g,
			AverageRating: agg.sum / float64(agg.count),
			Count:         agg.count,
		})
	}
	sort.Slice(profile.TopGenres, func(i, j int) bool {
		a, b := profile.TopGenres[i], profile.TopGenres[j]
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		return a.Genre < b.Genre
	})
	if len(profile.TopGenres) > 5 {
		profile.TopGenres = profile.TopGenres[:5]
	}

	return profile, nil
}

// RateMovie validates and persists a rating, then invalidates the user's
// cached recommendations. The model itself only picks the rating up on
// the next retrain.
func (s *Service) RateMovie(ctx context.Context, rt domain.Rating) error {
	if !domain.ValidValue(rt.Value) {
		return domain.ErrInvalidRating
	}
	if _, err := s.movies.GetMovieByID(ctx, rt.MovieID); err != nil {
		return err
	}
	if err := s.ratings.AddRating(ctx, rt); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.ClearUser(ctx, rt.UserID); err != nil {
			s.logger.Warn().Err(err).Int64("user_id", rt.UserID).Msg("cache invalidation failed")
		}
	}
	return nil
}

// MovieDetail returns catalog metadata plus rating statistics.
func (s *Service) MovieDetail(ctx context.Context, movieID int64) (*domain.MovieDetail, error) {
	mv, err := s.movies.GetMovieByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	avg, count, dist, err := s.ratings.MovieRatingStats(ctx, movieID)
	if err != nil {
		return nil, err
	}
	return &domain.MovieDetail{
		Movie:              *mv,
		AverageRating:      avg,
		TotalRatings:       count,
		RatingDistribution: dist,
	}, nil
}

// ListMovies returns catalog entries with optional genre/title filters.
func (s *Service) ListMovies(ctx context.Context, genre, search string, limit int) ([]domain.Movie, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.movies.ListMovies(ctx, genre, search, limit)
}

// Evaluate runs the held-out evaluation against the current model.
func (s *Service) Evaluate(ctx context.Context) (*domain.EvalResult, error) {
	model := s.model.Load()
	if model == nil {
		return nil, domain.ErrNotTrained
	}
	held := s.heldOut.Load()
	if held == nil {
		empty := model.Evaluate(nil)
		return &empty, nil
	}
	result := model.Evaluate(*held)
	return &result, nil
}

// categorizeError maps service failures to stable (code, message) pairs
// for batch results.
func categorizeError(err error) (string, string) {
	switch {
	case errors.Is(err, domain.ErrUnknownUser), errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found", "user not found"
	case errors.Is(err, domain.ErrNotTrained):
		return "model_not_ready", "recommendation model has not been trained yet"
	default:
		return "internal_error", "an unexpected error occurred"
	}
}
