package recommender

import (
	"math"
	"testing"

	"github.com/cinematch/cinematch/internal/domain"
)

const tolerance = 1e-9

func buildTestMatrix(t *testing.T) *RatingMatrix {
	t.Helper()
	m, err := BuildRatingMatrix([]domain.Rating{
		{UserID: 1, MovieID: 1, Value: 5.0},
		{UserID: 1, MovieID: 2, Value: 3.0},
		{UserID: 2, MovieID: 1, Value: 4.0},
		{UserID: 2, MovieID: 2, Value: 5.0},
		{UserID: 3, MovieID: 1, Value: 1.0},
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSelfSimilarityIsOne(t *testing.T) {
	m := buildTestMatrix(t)

	for _, s := range []*SimilarityMatrix{UserSimilarity(m, 2), MovieSimilarity(m, 2)} {
		for i := range s.IDs() {
			if got := s.At(i, i); got != 1.0 {
				t.Errorf("self-similarity at %d = %v, want 1.0", i, got)
			}
		}
	}
}

func TestSimilaritySymmetry(t *testing.T) {
	m := buildTestMatrix(t)
	s := UserSimilarity(m, 3)

	n := len(s.IDs())
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if diff := math.Abs(s.At(i, j) - s.At(j, i)); diff > tolerance {
				t.Errorf("asymmetry at (%d,%d): %v", i, j, diff)
			}
		}
	}
}

func TestSimilarityKnownValue(t *testing.T) {
	m := buildTestMatrix(t)
	s := UserSimilarity(m, 1)

	// u1 = [5,3], u2 = [4,5]: cos = 35 / (sqrt(34)*sqrt(41))
	want := 35.0 / (math.Sqrt(34) * math.Sqrt(41))
	got, ok := s.Sim(1, 2)
	if !ok {
		t.Fatal("Sim(1,2) not found")
	}
	if math.Abs(got-want) > tolerance {
		t.Errorf("Sim(1,2) = %v, want %v", got, want)
	}
}

func TestSimilarityWorkerCountIndependent(t *testing.T) {
	m := buildTestMatrix(t)
	a := UserSimilarity(m, 1)
	b := UserSimilarity(m, 8)

	n := len(a.IDs())
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if a.At(i, j) != b.At(i, j) {
				t.Fatalf("worker count changed result at (%d,%d): %v vs %v", i, j, a.At(i, j), b.At(i, j))
			}
		}
	}
}

func TestZeroVectorCosineIsZeroNotNaN(t *testing.T) {
	zero := []float64{0, 0, 0}
	v := []float64{1, 2, 3}
	if got := cosine(zero, v, 0, math.Sqrt(14)); got != 0 {
		t.Errorf("cosine with zero vector = %v, want 0", got)
	}
}

func TestOrthogonalUsersSimilarityIsZero(t *testing.T) {
	m, err := BuildRatingMatrix([]domain.Rating{
		{UserID: 1, MovieID: 1, Value: 5.0},
		{UserID: 2, MovieID: 2, Value: 4.0},
	})
	if err != nil {
		t.Fatal(err)
	}
	s := UserSimilarity(m, 2)

	got, ok := s.Sim(1, 2)
	if !ok {
		t.Fatal("Sim(1,2) not found")
	}
	if math.IsNaN(got) {
		t.Fatal("similarity is NaN, want 0")
	}
	if got != 0 {
		t.Errorf("orthogonal users similarity = %v, want 0", got)
	}
}
