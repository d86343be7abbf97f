package domain

import "time"

// Rating bounds for the 0.5-5.0 star scale. Zero is reserved as the
// "unrated" sentinel inside the rating matrix and is never a valid rating.
const (
	MinRating     = 0.5
	MaxRating     = 5.0
	NeutralRating = 3.0
)

type Rating struct {
	UserID  int64     `json:"user_id"`
	MovieID int64     `json:"movie_id"`
	Value   float64   `json:"rating"`
	RatedAt time.Time `json:"rated_at,omitempty"`
}

// ValidValue reports whether v is a legal star rating.
func ValidValue(v float64) bool {
	return v >= MinRating && v <= MaxRating
}

// EvalResult holds prediction-accuracy metrics over a held-out rating set.
// RMSE and MAE are +Inf and N is 0 when nothing was predictable.
type EvalResult struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	N    int     `json:"n_predictions"`
}
