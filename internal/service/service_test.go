package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinematch/cinematch/internal/domain"
	"github.com/cinematch/cinematch/internal/metrics"
)

type fakeRatingStore struct {
	ratings []domain.Rating
	added   []domain.Rating
}

func (f *fakeRatingStore) GetAllRatings(ctx context.Context) ([]domain.Rating, error) {
	return f.ratings, nil
}

func (f *fakeRatingStore) GetUserRatings(ctx context.Context, userID int64) ([]domain.Rating, error) {
	var out []domain.Rating
	for _, r := range f.ratings {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRatingStore) AddRating(ctx context.Context, rt domain.Rating) error {
	f.added = append(f.added, rt)
	f.ratings = append(f.ratings, rt)
	return nil
}

func (f *fakeRatingStore) MovieRatingStats(ctx context.Context, movieID int64) (float64, int, map[string]int, error) {
	var sum float64
	count := 0
	dist := make(map[string]int)
	for _, r := range f.ratings {
		if r.MovieID == movieID {
			sum += r.Value
			count++
		}
	}
	if count == 0 {
		return 0, 0, dist, nil
	}
	return sum / float64(count), count, dist, nil
}

func (f *fakeRatingStore) GetUserIDsPaginated(ctx context.Context, page, limit int) ([]int64, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for _, r := range f.ratings {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakeRatingStore) CountUsers(ctx context.Context) (int, error) {
	seen := make(map[int64]bool)
	for _, r := range f.ratings {
		seen[r.UserID] = true
	}
	return len(seen), nil
}

type fakeMovieStore struct {
	movies []domain.Movie
}

func (f *fakeMovieStore) GetAllMovies(ctx context.Context) ([]domain.Movie, error) {
	return f.movies, nil
}

func (f *fakeMovieStore) GetMovieByID(ctx context.Context, movieID int64) (*domain.Movie, error) {
	for _, mv := range f.movies {
		if mv.ID == movieID {
			return &mv, nil
		}
	}
	return nil, domain.ErrMovieNotFound
}

func (f *fakeMovieStore) ListMovies(ctx context.Context, genre, search string, limit int) ([]domain.Movie, error) {
	var out []domain.Movie
	for _, mv := range f.movies {
		if len(out) >= limit {
			break
		}
		if search != "" && !strings.Contains(strings.ToLower(mv.Title), strings.ToLower(search)) {
			continue
		}
		out = append(out, mv)
	}
	return out, nil
}

type fakeCache struct {
	entries      map[string][]domain.Recommendation
	clearedUsers []int64
	clearedAll   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]domain.Recommendation)}
}

func cacheKey(userID int64, strategy domain.Strategy, limit int) string {
	return fmt.Sprintf("%d:%s:%d", userID, strategy, limit)
}

func (f *fakeCache) Get(ctx context.Context, userID int64, strategy domain.Strategy, limit int) ([]domain.Recommendation, bool, error) {
	recs, ok := f.entries[cacheKey(userID, strategy, limit)]
	return recs, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, userID int64, strategy domain.Strategy, limit int, recs []domain.Recommendation) error {
	f.entries[cacheKey(userID, strategy, limit)] = recs
	return nil
}

func (f *fakeCache) ClearUser(ctx context.Context, userID int64) error {
	f.clearedUsers = append(f.clearedUsers, userID)
	return nil
}

func (f *fakeCache) ClearAll(ctx context.Context) error {
	f.clearedAll++
	f.entries = make(map[string][]domain.Recommendation)
	return nil
}

func fixtureRatings() []domain.Rating {
	return []domain.Rating{
		{UserID: 1, MovieID: 1, Value: 5.0},
		{UserID: 1, MovieID: 2, Value: 3.0},
		{UserID: 2, MovieID: 1, Value: 4.0},
		{UserID: 2, MovieID: 2, Value: 5.0},
		{UserID: 2, MovieID: 3, Value: 4.5},
		{UserID: 3, MovieID: 1, Value: 4.5},
	}
}

func fixtureMovies() []domain.Movie {
	return []domain.Movie{
		{ID: 1, Title: "The Matrix", Genres: []string{"Sci-Fi", "Action"}},
		{ID: 2, Title: "Se7en", Genres: []string{"Thriller"}},
		{ID: 3, Title: "Superbad", Genres: []string{"Comedy"}},
	}
}

func newTestService(t *testing.T, cfg Config) (*Service, *fakeRatingStore, *fakeCache) {
	t.Helper()
	ratings := &fakeRatingStore{ratings: fixtureRatings()}
	movies := &fakeMovieStore{movies: fixtureMovies()}
	c := newFakeCache()
	svc := New(ratings, movies, c, nil, cfg, metrics.New(), zerolog.Nop())
	return svc, ratings, c
}

func TestTrainPublishesModel(t *testing.T) {
	svc, _, c := newTestService(t, Config{ExplainMode: "rule"})

	if svc.Model() != nil {
		t.Fatal("model published before training")
	}
	if err := svc.Train(context.Background()); err != nil {
		t.Fatal(err)
	}
	model := svc.Model()
	if model == nil {
		t.Fatal("no model after training")
	}
	if model.UserCount() != 3 || model.MovieCount() != 3 {
		t.Errorf("model dims = %dx%d, want 3x3", model.UserCount(), model.MovieCount())
	}
	if c.clearedAll != 1 {
		t.Errorf("cache cleared %d times, want 1", c.clearedAll)
	}
}

func TestTrainGuardRejectsConcurrentRun(t *testing.T) {
	svc, _, _ := newTestService(t, Config{ExplainMode: "rule"})

	svc.training.Store(true)
	if err := svc.Train(context.Background()); !errors.Is(err, domain.ErrTrainingInProgress) {
		t.Fatalf("expected ErrTrainingInProgress, got %v", err)
	}
	svc.training.Store(false)

	if err := svc.Train(context.Background()); err != nil {
		t.Fatalf("training after guard release failed: %v", err)
	}
}

func TestRecommendBeforeTraining(t *testing.T) {
	svc, _, _ := newTestService(t, Config{ExplainMode: "rule"})

	if _, err := svc.Recommend(context.Background(), 1, domain.StrategyHybrid, 5); !errors.Is(err, domain.ErrNotTrained) {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}

func TestRecommendCachesResults(t *testing.T) {
	svc, _, _ := newTestService(t, Config{ExplainMode: "rule"})
	if err := svc.Train(context.Background()); err != nil {
		t.Fatal(err)
	}

	first, err := svc.Recommend(context.Background(), 3, domain.StrategyHybrid, 5)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Error("first call reported a cache hit")
	}
	if len(first.Recommendations) == 0 {
		t.Fatal("no recommendations")
	}
	for _, rec := range first.Recommendations {
		if rec.Explanation == "" {
			t.Errorf("movie %d has no explanation", rec.MovieID)
		}
	}

	second, err := svc.Recommend(context.Background(), 3, domain.StrategyHybrid, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second call missed the cache")
	}
}

func TestRecommendUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t, Config{ExplainMode: "rule"})
	if err := svc.Train(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Recommend(context.Background(), 99, domain.StrategyUser, 5); !errors.Is(err, domain.ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestRateMovie(t *testing.T) {
	svc, ratings, c := newTestService(t, Config{ExplainMode: "rule"})

	err := svc.RateMovie(context.Background(), domain.Rating{UserID: 3, MovieID: 2, Value: 4.5})
	if err != nil {
		t.Fatal(err)
	}
	if len(ratings.added) != 1 {
		t.Fatalf("stored %d ratings, want 1", len(ratings.added))
	}
	if len(c.clearedUsers) != 1 || c.clearedUsers[0] != 3 {
		t.Errorf("cleared users = %v, want [3]", c.clearedUsers)
	}
}

func TestRateMovieValidation(t *testing.T) {
	svc, ratings, _ := newTestService(t, Config{ExplainMode: "rule"})

	err := svc.RateMovie(context.Background(), domain.Rating{UserID: 3, MovieID: 2, Value: 6.0})
	if !errors.Is(err, domain.ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}

	err = svc.RateMovie(context.Background(), domain.Rating{UserID: 3, MovieID: 99, Value: 4.0})
	if !errors.Is(err, domain.ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}

	if len(ratings.added) != 0 {
		t.Errorf("stored %d invalid ratings, want 0", len(ratings.added))
	}
}

func TestProfile(t *testing.T) {
	svc, _, _ := newTestService(t, Config{ExplainMode: "rule"})
	if err := svc.Train(context.Background()); err != nil {
		t.Fatal(err)
	}

	profile, err := svc.Profile(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if profile.TotalRatings != 3 {
		t.Errorf("TotalRatings = %d, want 3", profile.TotalRatings)
	}
	want := (4.0 + 5.0 + 4.5) / 3
	if diff := profile.AverageRating - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AverageRating = %v, want %v", profile.AverageRating, want)
	}
	if len(profile.TopGenres) == 0 {
		t.Error("no top genres")
	}
	if profile.RatingDistribution["4.0"] != 1 {
		t.Errorf("distribution = %v, want one 4.0 entry", profile.RatingDistribution)
	}
}

func TestProfileUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t, Config{ExplainMode: "rule"})

	if _, err := svc.Profile(context.Background(), 42); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestExplainBeforeTrainingNeverEmpty(t *testing.T) {
	svc, _, _ := newTestService(t, Config{ExplainMode: "rule"})

	if got := svc.Explain(context.Background(), 1, 1); got == "" {
		t.Error("explanation is empty before training")
	}
}

func TestExplainRagMode(t *testing.T) {
	svc, _, _ := newTestService(t, Config{ExplainMode: "rag", GenerationTimeout: time.Second})
	if err := svc.Train(context.Background()); err != nil {
		t.Fatal(err)
	}

	// No generator is wired, so the template tier must answer.
	got := svc.Explain(context.Background(), 3, 2)
	if got == "" {
		t.Fatal("explanation is empty")
	}
}

func TestEvaluateWithHoldout(t *testing.T) {
	svc, _, _ := newTestService(t, Config{ExplainMode: "rule", HoldoutEvery: 3})
	if err := svc.Train(context.Background()); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.N == 0 {
		t.Error("holdout evaluation predicted nothing")
	}
}

func TestEvaluateBeforeTraining(t *testing.T) {
	svc, _, _ := newTestService(t, Config{ExplainMode: "rule"})

	if _, err := svc.Evaluate(context.Background()); !errors.Is(err, domain.ErrNotTrained) {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}

func TestBatchRecommendations(t *testing.T) {
	svc, _, _ := newTestService(t, Config{ExplainMode: "rule"})
	if err := svc.Train(context.Background()); err != nil {
		t.Fatal(err)
	}

	resp, err := svc.GetBatchRecommendations(context.Background(), 1, 20, domain.StrategyHybrid)
	if err != nil {
		t.Fatal(err)
	}
	if resp.TotalUsers != 3 {
		t.Errorf("TotalUsers = %d, want 3", resp.TotalUsers)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(resp.Results))
	}
	if resp.Summary.SuccessCount+resp.Summary.FailedCount != len(resp.Results) {
		t.Errorf("summary counts %d+%d do not cover %d results",
			resp.Summary.SuccessCount, resp.Summary.FailedCount, len(resp.Results))
	}
	for _, r := range resp.Results {
		if r.Status != domain.StatusSuccess {
			t.Errorf("user %d failed: %s %s", r.UserID, r.Error, r.Message)
		}
	}
}

func TestBootstrapRestoresSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	first, _, _ := newTestService(t, Config{ExplainMode: "rule", SnapshotPath: path})
	if err := first.Train(context.Background()); err != nil {
		t.Fatal(err)
	}
	trainedID := first.Model().ID

	second, _, _ := newTestService(t, Config{ExplainMode: "rule", SnapshotPath: path})
	if err := second.Bootstrap(context.Background()); err != nil {
		t.Fatal(err)
	}
	if second.Model() == nil {
		t.Fatal("no model after bootstrap")
	}
	if second.Model().ID != trainedID {
		t.Errorf("bootstrap trained fresh (id %s), want restore of %s", second.Model().ID, trainedID)
	}
}

func TestBootstrapTrainsWithoutSnapshot(t *testing.T) {
	svc, _, _ := newTestService(t, Config{
		ExplainMode:  "rule",
		SnapshotPath: filepath.Join(t.TempDir(), "absent.json"),
	})
	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatal(err)
	}
	if svc.Model() == nil {
		t.Fatal("no model after bootstrap")
	}
}

func TestSplitHoldout(t *testing.T) {
	ratings := fixtureRatings()

	train, held := splitHoldout(ratings, 3)
	if len(held) != 2 {
		t.Errorf("held out %d ratings, want 2", len(held))
	}
	if len(train)+len(held) != len(ratings) {
		t.Errorf("split lost ratings: %d+%d != %d", len(train), len(held), len(ratings))
	}

	train, held = splitHoldout(ratings, 0)
	if len(held) != 0 || len(train) != len(ratings) {
		t.Errorf("disabled holdout split = %d/%d, want %d/0", len(train), len(held), len(ratings))
	}
}
