// Package knowledge builds an in-process movie-knowledge store used by
// the retrieval-augmented explanation path. Documents are synthesized
// deterministically from the catalog; retrieval is token-overlap scoring
// over an inverted index. A real embedding backend can replace this store
// behind the same search interface.
package knowledge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cinematch/cinematch/internal/domain"
)

// document is one synthesized knowledge entry.
type document struct {
	movieID int64
	title   string
	genres  []string
	text    string
	tokens  map[string]int
}

// Store is an immutable keyword-indexed document collection. Build once,
// read from any goroutine.
type Store struct {
	docs    []document
	byMovie map[int64]int
	index   map[string][]int
}

// plotTemplates vary the synthetic plot line by primary genre, keyed the
// same way for every build so retrieval results are reproducible.
var plotTemplates = map[string][]string{
	"Action": {
		"An action-packed thriller where the hero must overcome impossible odds to save the day.",
		"High-octane adventure featuring intense chase sequences and spectacular stunts.",
		"A gripping tale of survival and courage in the face of overwhelming danger.",
	},
	"Comedy": {
		"A hilarious misadventure that keeps the laughs coming from start to finish.",
		"A heartwarming comedy about friendship, love, and life's unexpected turns.",
		"A clever and witty story that offers both laughs and meaningful insights.",
	},
	"Drama": {
		"A powerful and emotional journey exploring the depths of human experience.",
		"An intimate character study that reveals the complexities of relationships.",
		"A thought-provoking narrative that challenges perspectives and touches hearts.",
	},
	"Horror": {
		"A chilling tale that keeps you on the edge of your seat.",
		"A supernatural thriller filled with suspense and unexpected scares.",
		"A psychological horror that explores the darkest corners of the mind.",
	},
	"Romance": {
		"A beautiful love story that celebrates the power of connection and hope.",
		"An enchanting romantic tale filled with passion and heartfelt moments.",
		"A touching story about finding love in the most unexpected places.",
	},
}

// Build synthesizes one document per catalog movie.
func Build(movies []domain.Movie) *Store {
	s := &Store{
		byMovie: make(map[int64]int, len(movies)),
		index:   make(map[string][]int),
	}

	sorted := make([]domain.Movie, len(movies))
	copy(sorted, movies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, mv := range sorted {
		doc := synthesize(mv)
		idx := len(s.docs)
		s.docs = append(s.docs, doc)
		s.byMovie[mv.ID] = idx
		for token := range doc.tokens {
			s.index[token] = append(s.index[token], idx)
		}
	}
	return s
}

func synthesize(mv domain.Movie) document {
	primary := "Drama"
	if len(mv.Genres) > 0 {
		primary = mv.Genres[0]
	}
	plots, ok := plotTemplates[primary]
	if !ok {
		plots = plotTemplates["Drama"]
	}
	plot := plots[int(mv.ID)%len(plots)]

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", mv.Title)
	fmt.Fprintf(&b, "Genres: %s\n", strings.Join(mv.Genres, ", "))
	fmt.Fprintf(&b, "Plot: %s", plot)
	if len(mv.Genres) > 0 {
		fmt.Fprintf(&b, " Set in a %s context, this film explores themes of %s.",
			strings.ToLower(primary), strings.ToLower(strings.Join(firstN(mv.Genres, 2), ", ")))
	}
	fmt.Fprintf(&b, "\nReview Summary: Critics praise this %s for its engaging story and strong performances.",
		strings.ToLower(primary))

	doc := document{
		movieID: mv.ID,
		title:   mv.Title,
		genres:  mv.Genres,
		text:    b.String(),
	}
	doc.tokens = tokenize(doc.title + " " + strings.Join(doc.genres, " ") + " " + plot)
	return doc
}

// Search scores documents by query-token overlap and returns the top k,
// ordered by score descending with movie id breaking ties.
func (s *Store) Search(query string, k int) []domain.KnowledgeDoc {
	if k <= 0 {
		return nil
	}

	hits := make(map[int]float64)
	for token, weight := range tokenize(query) {
		for _, idx := range s.index[token] {
			hits[idx] += float64(weight * s.docs[idx].tokens[token])
		}
	}

	scored := make([]int, 0, len(hits))
	for idx := range hits {
		scored = append(scored, idx)
	}
	sort.Slice(scored, func(a, b int) bool {
		if hits[scored[a]] != hits[scored[b]] {
			return hits[scored[a]] > hits[scored[b]]
		}
		return s.docs[scored[a]].movieID < s.docs[scored[b]].movieID
	})
	if len(scored) > k {
		scored = scored[:k]
	}

	results := make([]domain.KnowledgeDoc, 0, len(scored))
	for _, idx := range scored {
		doc := s.docs[idx]
		results = append(results, domain.KnowledgeDoc{
			MovieID: doc.movieID,
			Title:   doc.title,
			Genres:  doc.genres,
			Text:    doc.text,
			Score:   hits[idx],
		})
	}
	return results
}

// Context returns the full document text for one movie.
func (s *Store) Context(movieID int64) (string, bool) {
	idx, ok := s.byMovie[movieID]
	if !ok {
		return "", false
	}
	return s.docs[idx].text, true
}

// Len reports the number of indexed documents.
func (s *Store) Len() int { return len(s.docs) }

func tokenize(text string) map[string]int {
	tokens := make(map[string]int)
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if len(field) < 2 {
			continue
		}
		tokens[field]++
	}
	return tokens
}

func firstN(xs []string, n int) []string {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
