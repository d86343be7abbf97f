package knowledge

import (
	"reflect"
	"strings"
	"testing"

	"github.com/cinematch/cinematch/internal/domain"
)

var catalog = []domain.Movie{
	{ID: 1, Title: "The Matrix", Genres: []string{"Sci-Fi", "Action"}},
	{ID: 2, Title: "Se7en", Genres: []string{"Thriller"}},
	{ID: 3, Title: "Superbad", Genres: []string{"Comedy"}},
	{ID: 4, Title: "Hot Fuzz", Genres: []string{"Comedy", "Action"}},
}

func TestBuildIndexesEveryMovie(t *testing.T) {
	s := Build(catalog)

	if s.Len() != len(catalog) {
		t.Fatalf("Len = %d, want %d", s.Len(), len(catalog))
	}
	for _, mv := range catalog {
		text, ok := s.Context(mv.ID)
		if !ok {
			t.Errorf("no context for movie %d", mv.ID)
			continue
		}
		if !strings.Contains(text, mv.Title) {
			t.Errorf("context for movie %d does not mention its title", mv.ID)
		}
		if !strings.Contains(text, "Plot:") || !strings.Contains(text, "Review Summary:") {
			t.Errorf("context for movie %d missing sections: %q", mv.ID, text)
		}
	}
}

func TestContextUnknownMovie(t *testing.T) {
	s := Build(catalog)
	if _, ok := s.Context(99); ok {
		t.Error("expected no context for unknown movie")
	}
}

func TestSearchFindsByTitle(t *testing.T) {
	s := Build(catalog)

	results := s.Search("matrix", 3)
	if len(results) == 0 {
		t.Fatal("no results for title query")
	}
	if results[0].MovieID != 1 {
		t.Errorf("top result = movie %d, want 1", results[0].MovieID)
	}
	if results[0].Score <= 0 {
		t.Errorf("top result score = %v, want > 0", results[0].Score)
	}
}

func TestSearchRanksByOverlap(t *testing.T) {
	s := Build(catalog)

	// Both comedies match "comedy"; the one also matching "action"
	// should rank at least as high on the combined query.
	results := s.Search("comedy action", 4)
	if len(results) < 2 {
		t.Fatalf("got %d results, want at least 2", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted by score: %v after %v", results[i].Score, results[i-1].Score)
		}
	}
}

func TestSearchRespectsK(t *testing.T) {
	s := Build(catalog)

	if got := s.Search("comedy action thriller", 1); len(got) > 1 {
		t.Errorf("got %d results, want at most 1", len(got))
	}
	if got := s.Search("comedy", 0); got != nil {
		t.Errorf("k=0 returned %v, want nil", got)
	}
	if got := s.Search("zzzzz", 3); len(got) != 0 {
		t.Errorf("nonsense query returned %d results, want 0", len(got))
	}
}

func TestBuildDeterministic(t *testing.T) {
	a := Build(catalog)

	// Shuffled input produces the same store.
	shuffled := []domain.Movie{catalog[2], catalog[0], catalog[3], catalog[1]}
	b := Build(shuffled)

	if !reflect.DeepEqual(a.Search("comedy action", 4), b.Search("comedy action", 4)) {
		t.Error("search results depend on catalog input order")
	}
	for _, mv := range catalog {
		ta, _ := a.Context(mv.ID)
		tb, _ := b.Context(mv.ID)
		if ta != tb {
			t.Errorf("context for movie %d differs across builds", mv.ID)
		}
	}
}
