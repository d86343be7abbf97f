package recommender

import "github.com/cinematch/cinematch/internal/domain"

// Predict estimates the rating a user would give a movie: a
// similarity-weighted average over the top-K most similar other users who
// actually rated it. When no similar user rated the movie the prediction
// falls back to the movie's mean rating, and when the movie has no
// ratings at all to the neutral constant.
//
// Unknown ids are caller bugs and surface as typed errors; the numeric
// fallbacks are expected outcomes, not errors.
func (m *Model) Predict(userID, movieID int64) (float64, error) {
	userIdx, ok := m.matrix.userIndex[userID]
	if !ok {
		return 0, domain.ErrUnknownUser
	}
	movieIdx, ok := m.matrix.movieIndex[movieID]
	if !ok {
		return 0, domain.ErrUnknownMovie
	}

	var weightedSum, simSum float64
	for _, n := range m.topNeighbors(userIdx, m.cfg.TopK) {
		if n.sim <= 0 {
			continue
		}
		if rating := m.matrix.data.At(n.idx, movieIdx); rating > 0 {
			weightedSum += n.sim * rating
			simSum += n.sim
		}
	}
	if simSum > 0 {
		return weightedSum / simSum, nil
	}

	return m.movieMean(movieIdx), nil
}

// movieMean is the arithmetic mean of a movie's real ratings, or the
// neutral constant when nobody rated it.
func (m *Model) movieMean(movieIdx int) float64 {
	var sum float64
	var count int
	for i := range m.matrix.users {
		if r := m.matrix.data.At(i, movieIdx); r > 0 {
			sum += r
			count++
		}
	}
	if count == 0 {
		return domain.NeutralRating
	}
	return sum / float64(count)
}
