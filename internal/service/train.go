package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cinematch/cinematch/internal/domain"
	"github.com/cinematch/cinematch/internal/knowledge"
	"github.com/cinematch/cinematch/internal/recommender"
)

// Bootstrap prepares the first served model. It restores the snapshot at
// the configured path when one exists and is readable, otherwise trains
// from the database.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.cfg.SnapshotPath != "" {
		if err := s.restoreSnapshot(ctx); err == nil {
			return nil
		} else if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", s.cfg.SnapshotPath).
				Msg("snapshot restore failed, training from scratch")
		}
	}
	return s.Train(ctx)
}

func (s *Service) restoreSnapshot(ctx context.Context) error {
	snap, err := recommender.ReadSnapshot(s.cfg.SnapshotPath)
	if err != nil {
		return err
	}

	movies, err := s.movies.GetAllMovies(ctx)
	if err != nil {
		return fmt.Errorf("load movies: %w", err)
	}

	model, err := recommender.Restore(snap, movies)
	if err != nil {
		return err
	}

	// The snapshot predates any held-out split, so restore rebuilds it
	// from the same deterministic ordering training uses.
	ratings, err := s.ratings.GetAllRatings(ctx)
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}
	_, heldOut := splitHoldout(ratings, s.cfg.HoldoutEvery)

	s.publish(model, movies, heldOut)
	s.logger.Info().
		Str("snapshot_id", snap.SnapshotID).
		Int("users", model.UserCount()).
		Int("movies", model.MovieCount()).
		Msg("model restored from snapshot")
	return nil
}

// Retrain kicks off a background training run. It fails fast with
// ErrTrainingInProgress when one is already running; otherwise it
// returns immediately while the new model is built.
func (s *Service) Retrain() error {
	if s.training.Load() {
		return domain.ErrTrainingInProgress
	}
	go func() {
		// Training is decoupled from the request that triggered it.
		if err := s.Train(context.Background()); err != nil && !errors.Is(err, domain.ErrTrainingInProgress) {
			s.logger.Error().Err(err).Msg("background retrain failed")
		}
	}()
	return nil
}

// Train builds a fresh model from all stored ratings and atomically
// replaces the served one. Only one training runs at a time; concurrent
// calls get ErrTrainingInProgress.
func (s *Service) Train(ctx context.Context) error {
	if !s.training.CompareAndSwap(false, true) {
		return domain.ErrTrainingInProgress
	}
	defer s.training.Store(false)

	start := time.Now()

	ratings, err := s.ratings.GetAllRatings(ctx)
	if err != nil {
		s.metrics.TrainingFailures.Inc()
		return fmt.Errorf("load ratings: %w", err)
	}
	movies, err := s.movies.GetAllMovies(ctx)
	if err != nil {
		s.metrics.TrainingFailures.Inc()
		return fmt.Errorf("load movies: %w", err)
	}

	trainSet, heldOut := splitHoldout(ratings, s.cfg.HoldoutEvery)

	model, err := recommender.Train(trainSet, movies, s.cfg.Model)
	if err != nil {
		s.metrics.TrainingFailures.Inc()
		return fmt.Errorf("train model: %w", err)
	}

	elapsed := time.Since(start)
	s.publish(model, movies, heldOut)
	s.metrics.TrainingsTotal.Inc()
	s.metrics.TrainingDuration.Observe(elapsed.Seconds())

	if s.cache != nil {
		if err := s.cache.ClearAll(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("cache flush after retrain failed")
		}
	}

	if s.cfg.SnapshotPath != "" {
		if err := s.writeSnapshot(model); err != nil {
			s.logger.Warn().Err(err).Str("path", s.cfg.SnapshotPath).Msg("snapshot write failed")
		}
	}

	s.logger.Info().
		Str("model_id", model.ID).
		Int("users", model.UserCount()).
		Int("movies", model.MovieCount()).
		Int("held_out", len(heldOut)).
		Dur("duration", elapsed).
		Msg("model trained")
	return nil
}

// publish swaps in the new model, its knowledge store and the held-out
// set together so every reader sees a matched triple.
func (s *Service) publish(model *recommender.Model, movies []domain.Movie, heldOut []domain.Rating) {
	store := knowledge.Build(movies)
	s.knowledge.Store(store)
	s.heldOut.Store(&heldOut)
	s.model.Store(model)

	s.metrics.ModelUsers.Set(float64(model.UserCount()))
	s.metrics.ModelMovies.Set(float64(model.MovieCount()))
}

func (s *Service) writeSnapshot(model *recommender.Model) error {
	snap := model.Snapshot()
	return snap.WriteFile(s.cfg.SnapshotPath)
}

// splitHoldout holds out every nth rating. Input order is deterministic
// (the repository sorts by user then movie), so the split is too.
func splitHoldout(ratings []domain.Rating, every int) (train, heldOut []domain.Rating) {
	if every <= 1 {
		return ratings, nil
	}
	train = make([]domain.Rating, 0, len(ratings))
	for i, rt := range ratings {
		if (i+1)%every == 0 {
			heldOut = append(heldOut, rt)
		} else {
			train = append(train, rt)
		}
	}
	// Holding out a user's only rating would make them unknown to the
	// model; accept that, Evaluate skips unpredictable pairs.
	return train, heldOut
}
