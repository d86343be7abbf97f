package recommender

import (
	"math"

	"github.com/cinematch/cinematch/internal/domain"
)

// Evaluate measures prediction accuracy against held-out ratings.
// Ratings whose user or movie the model never saw are skipped; if nothing
// is predictable both errors are +Inf with N = 0.
func (m *Model) Evaluate(heldOut []domain.Rating) domain.EvalResult {
	var sqSum, absSum float64
	var n int

	for _, r := range heldOut {
		predicted, err := m.Predict(r.UserID, r.MovieID)
		if err != nil {
			continue
		}
		diff := predicted - r.Value
		sqSum += diff * diff
		absSum += math.Abs(diff)
		n++
	}

	if n == 0 {
		return domain.EvalResult{RMSE: math.Inf(1), MAE: math.Inf(1), N: 0}
	}
	return domain.EvalResult{
		RMSE: math.Sqrt(sqSum / float64(n)),
		MAE:  absSum / float64(n),
		N:    n,
	}
}
