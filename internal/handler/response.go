package handler

import "github.com/cinematch/cinematch/internal/domain"

type RecommendationRequest struct {
	UserID   int64  `json:"user_id" validate:"required,gt=0"`
	Limit    int    `json:"limit" validate:"omitempty,gte=1,lte=50"`
	Strategy string `json:"strategy" validate:"omitempty,oneof=user item hybrid"`
}

type RecommendationResponse struct {
	UserID          int64                     `json:"user_id"`
	Recommendations []domain.Recommendation   `json:"recommendations"`
	Metadata        domain.RecommendationMeta `json:"metadata"`
}

type RateRequest struct {
	UserID  int64   `json:"user_id" validate:"required,gt=0"`
	MovieID int64   `json:"movie_id" validate:"required,gt=0"`
	Rating  float64 `json:"rating" validate:"required,gte=0.5,lte=5"`
}

type RateResponse struct {
	Status  string `json:"status"`
	UserID  int64  `json:"user_id"`
	MovieID int64  `json:"movie_id"`
	Rating  float64 `json:"rating"`
}

type ExplainResponse struct {
	UserID      int64  `json:"user_id"`
	MovieID     int64  `json:"movie_id"`
	Explanation string `json:"explanation"`
}

type MovieListResponse struct {
	Movies []domain.Movie `json:"movies"`
	Count  int            `json:"count"`
}

// EvalResponse mirrors domain.EvalResult with nullable metrics, since
// the infinite sentinels produced by an empty evaluation are not
// representable in JSON.
type EvalResponse struct {
	RMSE *float64 `json:"rmse"`
	MAE  *float64 `json:"mae"`
	N    int      `json:"n_predictions"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	ModelTrained bool   `json:"model_trained"`
	ModelID      string `json:"model_id,omitempty"`
}

type RetrainResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
