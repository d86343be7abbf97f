package domain

import "errors"

var (
	// ErrEmptyRatings is returned when training is attempted with no ratings.
	ErrEmptyRatings = errors.New("no ratings to train on")

	// ErrNotTrained is returned when an operation needs a trained model
	// and none has been published yet.
	ErrNotTrained = errors.New("model not trained")

	// ErrUnknownUser is returned when a user id is outside the trained matrix.
	ErrUnknownUser = errors.New("user not in training data")

	// ErrUnknownMovie is returned when a movie id is outside the trained matrix.
	ErrUnknownMovie = errors.New("movie not in training data")

	// ErrGenerationUnavailable marks a failed or absent text-generation
	// collaborator. It never escapes the explanation layer: every caller
	// falls back to a template instead.
	ErrGenerationUnavailable = errors.New("text generation unavailable")

	// ErrTrainingInProgress is returned when a retrain is requested while
	// one is already running.
	ErrTrainingInProgress = errors.New("training already in progress")

	ErrMovieNotFound = errors.New("movie not found")
	ErrUserNotFound  = errors.New("user not found")

	// ErrInvalidRating is returned for rating values outside [0.5, 5.0].
	ErrInvalidRating = errors.New("rating must be between 0.5 and 5.0")
)
