package recommender

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cinematch/cinematch/internal/domain"
)

// Config tunes the collaborative-filtering engine.
type Config struct {
	// TopK is the number of most-similar neighbors used for prediction
	// and user-based ranking.
	TopK int

	// LikeThreshold is the rating at or above which a movie counts as
	// "liked" for item-based ranking and fan-based explanations.
	LikeThreshold float64

	// SimilarityFloor is the minimum similarity for a fan to be cited in
	// a rule-based explanation.
	SimilarityFloor float64

	// Workers bounds the parallelism of similarity computation.
	Workers int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		TopK:            20,
		LikeThreshold:   4.0,
		SimilarityFloor: 0.1,
		Workers:         4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.LikeThreshold <= 0 {
		c.LikeThreshold = d.LikeThreshold
	}
	if c.SimilarityFloor <= 0 {
		c.SimilarityFloor = d.SimilarityFloor
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}

// Model is one trained collaborative-filtering model: the rating matrix,
// both similarity matrices and a read-only catalog reference. It is
// immutable after Train returns and therefore safe for concurrent reads;
// retraining builds a fresh Model and the serving layer swaps the handle.
type Model struct {
	ID        string
	TrainedAt time.Time

	cfg      Config
	matrix   *RatingMatrix
	userSim  *SimilarityMatrix
	movieSim *SimilarityMatrix
	catalog  map[int64]domain.Movie
}

// Train builds a complete model from ratings and the movie catalog.
// It fails with domain.ErrEmptyRatings when there is nothing to learn from.
func Train(ratings []domain.Rating, movies []domain.Movie, cfg Config) (*Model, error) {
	cfg = cfg.withDefaults()

	matrix, err := BuildRatingMatrix(ratings)
	if err != nil {
		return nil, err
	}

	catalog := make(map[int64]domain.Movie, len(movies))
	for _, mv := range movies {
		catalog[mv.ID] = mv
	}

	return &Model{
		ID:        uuid.NewString(),
		TrainedAt: time.Now().UTC(),
		cfg:       cfg,
		matrix:    matrix,
		userSim:   UserSimilarity(matrix, cfg.Workers),
		movieSim:  MovieSimilarity(matrix, cfg.Workers),
		catalog:   catalog,
	}, nil
}

// UserCount returns the number of users on the matrix axis.
func (m *Model) UserCount() int { return len(m.matrix.users) }

// MovieCount returns the number of movies on the matrix axis.
func (m *Model) MovieCount() int { return len(m.matrix.movies) }

// HasUser reports whether the user was present at training time.
func (m *Model) HasUser(userID int64) bool { return m.matrix.HasUser(userID) }

// HasMovie reports whether the movie was present at training time.
func (m *Model) HasMovie(movieID int64) bool { return m.matrix.HasMovie(movieID) }

// Movie looks up catalog metadata for a movie id.
func (m *Model) Movie(movieID int64) (domain.Movie, bool) {
	mv, ok := m.catalog[movieID]
	return mv, ok
}

// neighbor pairs an axis index with its similarity to a target.
type neighbor struct {
	idx int
	sim float64
}

// topNeighbors returns the k most similar other users, ordered by
// similarity descending with ascending user id as the tie-break so
// repeated runs rank identically.
func (m *Model) topNeighbors(userIdx, k int) []neighbor {
	neighbors := make([]neighbor, 0, len(m.matrix.users)-1)
	for i := range m.matrix.users {
		if i == userIdx {
			continue
		}
		neighbors = append(neighbors, neighbor{idx: i, sim: m.userSim.At(userIdx, i)})
	}
	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].sim != neighbors[b].sim {
			return neighbors[a].sim > neighbors[b].sim
		}
		return m.matrix.users[neighbors[a].idx] < m.matrix.users[neighbors[b].idx]
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// movieMeta fills title and genres from the catalog. Movies that were
// rated but are missing from the catalog keep empty metadata rather than
// failing the request.
func (m *Model) movieMeta(movieID int64) (string, []string) {
	if mv, ok := m.catalog[movieID]; ok {
		return mv.Title, mv.Genres
	}
	return "", nil
}
