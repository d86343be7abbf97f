package recommender

import (
	"sort"

	"github.com/cinematch/cinematch/internal/domain"
)

// scored is an unranked candidate movie.
type scored struct {
	movieIdx int
	score    float64
}

// Recommend dispatches to the ranking branch named by strategy.
func (m *Model) Recommend(userID int64, n int, strategy domain.Strategy) ([]domain.Recommendation, error) {
	switch strategy {
	case domain.StrategyUser:
		return m.RecommendUserBased(userID, n)
	case domain.StrategyItem:
		return m.RecommendItemBased(userID, n)
	default:
		return m.RecommendHybrid(userID, n)
	}
}

// RecommendUserBased ranks unrated movies by the predicted rating from
// the user's top-K most similar neighbors. Movies no similar user rated
// are skipped rather than scored.
func (m *Model) RecommendUserBased(userID int64, n int) ([]domain.Recommendation, error) {
	userIdx, ok := m.matrix.userIndex[userID]
	if !ok {
		return nil, domain.ErrUnknownUser
	}

	neighbors := m.topNeighbors(userIdx, m.cfg.TopK)
	userRow := m.matrix.userRow(userIdx)

	candidates := make([]scored, 0, len(m.matrix.movies))
	for j := range m.matrix.movies {
		if userRow[j] > 0 {
			continue
		}

		var weightedSum, simSum float64
		for _, nb := range neighbors {
			if nb.sim <= 0 {
				continue
			}
			if rating := m.matrix.data.At(nb.idx, j); rating > 0 {
				weightedSum += nb.sim * rating
				simSum += nb.sim
			}
		}
		if simSum > 0 {
			candidates = append(candidates, scored{movieIdx: j, score: weightedSum / simSum})
		}
	}

	return m.rank(candidates, n, domain.MethodUserBased), nil
}

// RecommendItemBased ranks unrated movies by their mean item-item
// similarity to the user's liked set (ratings at or above the like
// threshold). A user with no liked movies gets an empty list.
func (m *Model) RecommendItemBased(userID int64, n int) ([]domain.Recommendation, error) {
	userIdx, ok := m.matrix.userIndex[userID]
	if !ok {
		return nil, domain.ErrUnknownUser
	}

	userRow := m.matrix.userRow(userIdx)
	var liked []int
	for j, r := range userRow {
		if r >= m.cfg.LikeThreshold {
			liked = append(liked, j)
		}
	}
	if len(liked) == 0 {
		return []domain.Recommendation{}, nil
	}

	candidates := make([]scored, 0, len(m.matrix.movies))
	for j := range m.matrix.movies {
		if userRow[j] > 0 {
			continue
		}
		var sum float64
		for _, l := range liked {
			sum += m.movieSim.At(j, l)
		}
		candidates = append(candidates, scored{movieIdx: j, score: sum / float64(len(liked))})
	}

	return m.rank(candidates, n, domain.MethodItemBased), nil
}

// RecommendHybrid interleaves the user-based and item-based lists,
// user-based first each round, skipping item-based entries already
// emitted. The two branches keep their own scoring scales; the method tag
// tells them apart.
func (m *Model) RecommendHybrid(userID int64, n int) ([]domain.Recommendation, error) {
	userBased, err := m.RecommendUserBased(userID, n)
	if err != nil {
		return nil, err
	}
	itemBased, err := m.RecommendItemBased(userID, n)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, n)
	hybrid := make([]domain.Recommendation, 0, n)

	for i := 0; len(hybrid) < n && (i < len(userBased) || i < len(itemBased)); i++ {
		if i < len(userBased) {
			rec := userBased[i]
			if _, dup := seen[rec.MovieID]; !dup {
				rec.Method = domain.MethodHybridUser
				hybrid = append(hybrid, rec)
				seen[rec.MovieID] = struct{}{}
			}
		}
		if len(hybrid) >= n {
			break
		}
		if i < len(itemBased) {
			rec := itemBased[i]
			if _, dup := seen[rec.MovieID]; !dup {
				rec.Method = domain.MethodHybridItem
				hybrid = append(hybrid, rec)
				seen[rec.MovieID] = struct{}{}
			}
		}
	}

	return hybrid, nil
}

// rank sorts candidates by score descending with ascending movie id as
// the tie-break, truncates to n and fills in catalog metadata.
func (m *Model) rank(candidates []scored, n int, method domain.Method) []domain.Recommendation {
	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		return m.matrix.movies[candidates[a].movieIdx] < m.matrix.movies[candidates[b].movieIdx]
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	recs := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		movieID := m.matrix.movies[c.movieIdx]
		title, genres := m.movieMeta(movieID)
		recs = append(recs, domain.Recommendation{
			MovieID: movieID,
			Title:   title,
			Genres:  genres,
			Score:   c.score,
			Method:  method,
		})
	}
	return recs
}
