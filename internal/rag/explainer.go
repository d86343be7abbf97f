// Package rag generates natural-language recommendation explanations by
// combining retrieved movie knowledge with a delegated text-generation
// collaborator. Generation is best-effort: a three-tier fallback chain
// guarantees a non-empty explanation no matter what the collaborator does.
package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinematch/cinematch/internal/domain"
)

// Retriever is the knowledge-store collaborator. Implementations must be
// safe for concurrent use.
type Retriever interface {
	Search(query string, k int) []domain.KnowledgeDoc
	Context(movieID int64) (string, bool)
}

// Generator is the text-generation collaborator. It may block on network
// I/O and may fail; the explainer treats both exactly like an absent
// generator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Fallback tier labels, exported for metrics.
const (
	TierGenerated = "generated"
	TierTemplate  = "template"
	TierGeneric   = "generic"
)

// Input bundles everything an explanation needs. Built per request,
// consumed once.
type Input struct {
	UserID  int64
	MovieID int64
	Title   string
	Genres  []string
	Score   float64
	Method  domain.Method
	Profile domain.UserProfile
}

// Explainer runs the RAG explanation path.
type Explainer struct {
	retriever Retriever
	generator Generator
	timeout   time.Duration
	logger    zerolog.Logger
	onTier    func(tier string)
}

// Option configures an Explainer.
type Option func(*Explainer)

// WithGenerator installs the text-generation collaborator. Without one
// the explainer starts at the template tier.
func WithGenerator(g Generator) Option {
	return func(e *Explainer) { e.generator = g }
}

// WithTimeout bounds each generation call. Timeouts count as generator
// failure and trigger the fallback chain.
func WithTimeout(d time.Duration) Option {
	return func(e *Explainer) { e.timeout = d }
}

// WithTierObserver registers a callback invoked with the tier that
// actually produced each explanation.
func WithTierObserver(fn func(tier string)) Option {
	return func(e *Explainer) { e.onTier = fn }
}

// NewExplainer creates an explainer over the given knowledge retriever.
func NewExplainer(retriever Retriever, logger zerolog.Logger, opts ...Option) *Explainer {
	e := &Explainer{
		retriever: retriever,
		timeout:   5 * time.Second,
		logger:    logger.With().Str("component", "explainer").Logger(),
		onTier:    func(string) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Explain returns a non-empty explanation for the recommendation in
// input. It never returns an error: generator failure falls back to a
// method-keyed template, and template failure to a generic score line.
func (e *Explainer) Explain(ctx context.Context, in Input) string {
	if e.generator != nil {
		if text, err := e.generate(ctx, in); err == nil && strings.TrimSpace(text) != "" {
			e.onTier(TierGenerated)
			return strings.TrimSpace(text)
		} else if err != nil {
			e.logger.Debug().Err(err).Int64("movie_id", in.MovieID).Msg("generation failed, using template")
		}
	}

	if text := e.fromTemplate(in); text != "" {
		e.onTier(TierTemplate)
		return text
	}

	e.onTier(TierGeneric)
	return fmt.Sprintf(
		"This movie is recommended based on your viewing preferences and has a compatibility score of %.2f. Users with similar tastes have rated it highly.",
		in.Score,
	)
}

// generate builds the structured prompt and delegates to the generator.
func (e *Explainer) generate(ctx context.Context, in Input) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	text, err := e.generator.Generate(ctx, e.BuildPrompt(in))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}
	return strings.TrimPrefix(strings.TrimSpace(text), "Explanation:"), nil
}

// BuildPrompt assembles the generation prompt from the user's preference
// summary, retrieved movie context, the recommendation's method and
// score, and up to three retrieved similar movies.
func (e *Explainer) BuildPrompt(in Input) string {
	var b strings.Builder

	b.WriteString("You are a knowledgeable movie recommendation expert. Explain why this movie is recommended to this user.\n\n")

	b.WriteString("User Preferences:\n")
	b.WriteString(formatPreferences(in.Profile))

	b.WriteString("\n\nRecommended Movie Information:\n")
	if text, ok := e.retriever.Context(in.MovieID); ok {
		b.WriteString(text)
	} else {
		fmt.Fprintf(&b, "Title: %s\nGenres: %s", in.Title, strings.Join(in.Genres, ", "))
	}

	fmt.Fprintf(&b, "\n\nRecommendation Type: %s\nRecommendation Score: %.2f\n", in.Method, in.Score)

	b.WriteString("\nSimilar Movies the User Might Like:\n")
	b.WriteString(e.formatSimilar(in))

	b.WriteString("\n\nProvide a personalized, engaging explanation (2-3 sentences) covering how it matches their preferences and what makes it appealing.\n\nExplanation:")
	return b.String()
}

func (e *Explainer) formatSimilar(in Input) string {
	query := in.Title + " " + strings.Join(in.Genres, " ")
	similar := e.retriever.Search(query, 4)

	var lines []string
	for _, doc := range similar {
		if doc.MovieID == in.MovieID {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s (%s)", doc.Title, strings.Join(firstN(doc.Genres, 2), ", ")))
		if len(lines) == 3 {
			break
		}
	}
	if len(lines) == 0 {
		return "No similar movies data available"
	}
	return strings.Join(lines, "\n")
}

func formatPreferences(p domain.UserProfile) string {
	var lines []string
	if len(p.TopGenres) > 0 {
		names := make([]string, 0, 3)
		for _, g := range firstNGenres(p.TopGenres, 3) {
			names = append(names, g.Genre)
		}
		lines = append(lines, "Favorite genres: "+strings.Join(names, ", "))
	}
	if p.AverageRating > 0 {
		lines = append(lines, fmt.Sprintf("Average rating given: %.1f/5.0", p.AverageRating))
	}
	if p.TotalRatings > 0 {
		lines = append(lines, fmt.Sprintf("Movies rated: %d", p.TotalRatings))
	}
	if len(lines) == 0 {
		return "Limited preference data available"
	}
	return strings.Join(lines, "\n")
}

// fromTemplate fills the method-keyed fallback template. Returns "" only
// when no template matches, which the caller turns into the generic tier.
func (e *Explainer) fromTemplate(in Input) string {
	genres := in.Genres
	if len(genres) == 0 {
		genres = []string{"movie"}
	}

	switch {
	case strings.HasPrefix(string(in.Method), "user"):
		return fmt.Sprintf(
			"Based on users with similar tastes, this %s movie is highly rated by people who enjoyed %s. The %s recommendation algorithm found strong similarities with your viewing preferences.",
			strings.ToLower(genres[0]), strings.ToLower(strings.Join(firstN(genres, 2), ", ")), in.Method)
	case strings.HasPrefix(string(in.Method), "item"):
		return fmt.Sprintf(
			"This movie shares key characteristics with films you've rated highly. It features %s storytelling and has received positive reviews for its engaging plot and character development.",
			strings.ToLower(genres[0]))
	case strings.HasPrefix(string(in.Method), "hybrid"):
		return fmt.Sprintf(
			"Our engine combines multiple signals to recommend this film. It matches your preference for %s and is similar to movies you've enjoyed before.",
			strings.ToLower(strings.Join(firstN(genres, 2), ", ")))
	default:
		return ""
	}
}

func firstN(xs []string, n int) []string {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}

func firstNGenres(xs []domain.GenreStat, n int) []domain.GenreStat {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
