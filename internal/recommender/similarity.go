package recommender

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SimilarityMatrix is a square, symmetric cosine-similarity matrix over
// one axis of the rating matrix. The diagonal is fixed at 1. Values are
// in [0, 1] because rating vectors are non-negative.
type SimilarityMatrix struct {
	ids   []int64
	index map[int64]int
	data  *mat.Dense
}

// Sim returns the similarity between two ids. The second return value is
// false when either id is unknown.
func (s *SimilarityMatrix) Sim(a, b int64) (float64, bool) {
	i, ok := s.index[a]
	if !ok {
		return 0, false
	}
	j, ok := s.index[b]
	if !ok {
		return 0, false
	}
	return s.data.At(i, j), true
}

// At returns the similarity by matrix position.
func (s *SimilarityMatrix) At(i, j int) float64 { return s.data.At(i, j) }

// IDs returns the axis ids in matrix order.
func (s *SimilarityMatrix) IDs() []int64 { return s.ids }

// UserSimilarity computes the user-user cosine-similarity matrix.
//
// The 0 "unrated" sentinel is treated as a literal zero component, which
// biases similarity toward users with overlapping and jointly-missing
// ratings. That matches the trained behavior this engine reproduces and
// is kept deliberately.
func UserSimilarity(m *RatingMatrix, workers int) *SimilarityMatrix {
	vectors := make([][]float64, len(m.users))
	for i := range m.users {
		vectors[i] = m.userRow(i)
	}
	return cosineMatrix(m.users, m.userIndex, vectors, workers)
}

// MovieSimilarity computes the movie-movie cosine-similarity matrix from
// the transposed view of the rating matrix.
func MovieSimilarity(m *RatingMatrix, workers int) *SimilarityMatrix {
	vectors := make([][]float64, len(m.movies))
	for j := range m.movies {
		vectors[j] = m.movieColumn(j)
	}
	return cosineMatrix(m.movies, m.movieIndex, vectors, workers)
}

// cosineMatrix fills the full symmetric matrix. Rows are split across
// workers; each (i, j) pair with j > i is owned by exactly one worker, so
// no locking is needed and the result is independent of worker count.
func cosineMatrix(ids []int64, index map[int64]int, vectors [][]float64, workers int) *SimilarityMatrix {
	n := len(ids)
	s := &SimilarityMatrix{
		ids:   ids,
		index: index,
		data:  mat.NewDense(n, n, nil),
	}

	norms := make([]float64, n)
	for i, v := range vectors {
		norms[i] = math.Sqrt(floats.Dot(v, v))
		s.data.Set(i, i, 1.0)
	}

	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	rows := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rows {
				for j := i + 1; j < n; j++ {
					sim := cosine(vectors[i], vectors[j], norms[i], norms[j])
					s.data.Set(i, j, sim)
					s.data.Set(j, i, sim)
				}
			}
		}()
	}
	for i := 0; i < n; i++ {
		rows <- i
	}
	close(rows)
	wg.Wait()

	return s
}

// cosine is the plain dot-product cosine. A zero vector yields 0 rather
// than NaN: a user or movie with no ratings is similar to nothing.
func cosine(a, b []float64, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}
