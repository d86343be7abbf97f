package recommender

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cinematch/cinematch/internal/domain"
)

func TestBuildRatingMatrixEmpty(t *testing.T) {
	_, err := BuildRatingMatrix(nil)
	if !errors.Is(err, domain.ErrEmptyRatings) {
		t.Fatalf("expected ErrEmptyRatings, got %v", err)
	}
}

func TestBuildRatingMatrixAxesSorted(t *testing.T) {
	m, err := BuildRatingMatrix([]domain.Rating{
		{UserID: 7, MovieID: 30, Value: 2.5},
		{UserID: 2, MovieID: 10, Value: 4.0},
		{UserID: 5, MovieID: 20, Value: 3.0},
	})
	if err != nil {
		t.Fatal(err)
	}

	if got, want := m.Users(), []int64{2, 5, 7}; !reflect.DeepEqual(got, want) {
		t.Errorf("users = %v, want %v", got, want)
	}
	if got, want := m.Movies(), []int64{10, 20, 30}; !reflect.DeepEqual(got, want) {
		t.Errorf("movies = %v, want %v", got, want)
	}
}

func TestBuildRatingMatrixDuplicateKeepsLast(t *testing.T) {
	m, err := BuildRatingMatrix([]domain.Rating{
		{UserID: 1, MovieID: 1, Value: 2.0},
		{UserID: 1, MovieID: 1, Value: 4.5},
	})
	if err != nil {
		t.Fatal(err)
	}

	if r, ok := m.Rating(1, 1); !ok || r != 4.5 {
		t.Errorf("Rating(1,1) = %v, %v; want 4.5, true", r, ok)
	}
}

func TestRatingUnratedAndUnknown(t *testing.T) {
	m, err := BuildRatingMatrix([]domain.Rating{
		{UserID: 1, MovieID: 1, Value: 5.0},
		{UserID: 2, MovieID: 2, Value: 3.0},
	})
	if err != nil {
		t.Fatal(err)
	}

	if r, ok := m.Rating(1, 2); !ok || r != 0 {
		t.Errorf("unrated pair = %v, %v; want 0, true", r, ok)
	}
	if _, ok := m.Rating(99, 1); ok {
		t.Error("unknown user should not be found")
	}
	if _, ok := m.Rating(1, 99); ok {
		t.Error("unknown movie should not be found")
	}
}
