package recommender

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/cinematch/cinematch/internal/domain"
)

// RatingMatrix is a dense user×movie matrix. Rows are users, columns are
// movies, both sorted ascending by id so training is reproducible. Cells
// hold the star rating, or 0 for "unrated". 0 is never a real rating on
// the 0.5-5.0 scale, so it safely double-codes as missing.
//
// The matrix is built once per training run and never mutated afterwards.
type RatingMatrix struct {
	users  []int64
	movies []int64

	userIndex  map[int64]int
	movieIndex map[int64]int

	data *mat.Dense
}

// BuildRatingMatrix assembles the dense matrix from a flat rating list.
// Duplicate (user, movie) pairs keep the last value seen.
func BuildRatingMatrix(ratings []domain.Rating) (*RatingMatrix, error) {
	if len(ratings) == 0 {
		return nil, domain.ErrEmptyRatings
	}

	userSet := make(map[int64]struct{})
	movieSet := make(map[int64]struct{})
	for _, r := range ratings {
		userSet[r.UserID] = struct{}{}
		movieSet[r.MovieID] = struct{}{}
	}

	m := &RatingMatrix{
		users:      sortedIDs(userSet),
		movies:     sortedIDs(movieSet),
		userIndex:  make(map[int64]int, len(userSet)),
		movieIndex: make(map[int64]int, len(movieSet)),
	}
	for i, id := range m.users {
		m.userIndex[id] = i
	}
	for j, id := range m.movies {
		m.movieIndex[id] = j
	}

	m.data = mat.NewDense(len(m.users), len(m.movies), nil)
	for _, r := range ratings {
		m.data.Set(m.userIndex[r.UserID], m.movieIndex[r.MovieID], r.Value)
	}

	return m, nil
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Users returns the row ids in matrix order.
func (m *RatingMatrix) Users() []int64 { return m.users }

// Movies returns the column ids in matrix order.
func (m *RatingMatrix) Movies() []int64 { return m.movies }

// HasUser reports whether the user appears on the row axis.
func (m *RatingMatrix) HasUser(userID int64) bool {
	_, ok := m.userIndex[userID]
	return ok
}

// HasMovie reports whether the movie appears on the column axis.
func (m *RatingMatrix) HasMovie(movieID int64) bool {
	_, ok := m.movieIndex[movieID]
	return ok
}

// Rating returns the stored rating, with 0 meaning unrated. The second
// return value is false when either id is outside the matrix.
func (m *RatingMatrix) Rating(userID, movieID int64) (float64, bool) {
	i, ok := m.userIndex[userID]
	if !ok {
		return 0, false
	}
	j, ok := m.movieIndex[movieID]
	if !ok {
		return 0, false
	}
	return m.data.At(i, j), true
}

// userRow returns a read-only view of one user's ratings.
func (m *RatingMatrix) userRow(i int) []float64 {
	return m.data.RawRowView(i)
}

// movieColumn copies one movie's ratings across all users.
func (m *RatingMatrix) movieColumn(j int) []float64 {
	col := make([]float64, len(m.users))
	mat.Col(col, j, m.data)
	return col
}
