package recommender

import (
	"fmt"
)

// Explain produces the rule-based justification for recommending a movie
// to a user: it cites the most similar "fan" (a user who rated the movie
// at or above the like threshold) when one clears the similarity floor,
// and falls back to a generic preference sentence otherwise. It never
// fails and never returns an empty string.
func (m *Model) Explain(userID, movieID int64) string {
	title, _ := m.movieMeta(movieID)
	if title == "" {
		return "We recommend this movie based on your preferences and viewing patterns."
	}

	fan, sim, found := m.topFan(userID, movieID)
	if !found {
		return fmt.Sprintf("We recommend %q based on your movie preferences and viewing patterns.", title)
	}

	return fmt.Sprintf(
		"We recommend %q because users similar to you (like user %d) gave it high ratings. You have %.1f%% similarity with users who loved this movie.",
		title, fan, sim*100,
	)
}

// topFan finds the fan of a movie most similar to the requester. Fans
// below the similarity floor are never cited.
func (m *Model) topFan(userID, movieID int64) (int64, float64, bool) {
	userIdx, ok := m.matrix.userIndex[userID]
	if !ok {
		return 0, 0, false
	}
	movieIdx, ok := m.matrix.movieIndex[movieID]
	if !ok {
		return 0, 0, false
	}

	bestIdx := -1
	var bestSim float64
	for i := range m.matrix.users {
		if i == userIdx {
			continue
		}
		if m.matrix.data.At(i, movieIdx) < m.cfg.LikeThreshold {
			continue
		}
		sim := m.userSim.At(userIdx, i)
		if sim <= m.cfg.SimilarityFloor {
			continue
		}
		// Ascending scan over sorted user ids keeps ties deterministic.
		if bestIdx == -1 || sim > bestSim {
			bestIdx = i
			bestSim = sim
		}
	}
	if bestIdx == -1 {
		return 0, 0, false
	}
	return m.matrix.users[bestIdx], bestSim, true
}
