package domain

import "strings"

// Movie is a catalog entry. Genres follow the MovieLens convention of a
// pipe-separated list in storage; in memory they are a slice.
type Movie struct {
	ID     int64    `json:"movie_id"`
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
}

// GenreString renders genres back into the stored pipe-separated form.
func (m Movie) GenreString() string {
	return strings.Join(m.Genres, "|")
}

// ParseGenres splits a pipe-separated genre list, dropping empty entries.
func ParseGenres(s string) []string {
	parts := strings.Split(s, "|")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

// MovieDetail is a movie plus rating statistics for the detail endpoint.
type MovieDetail struct {
	Movie
	AverageRating      float64        `json:"average_rating"`
	TotalRatings       int            `json:"total_ratings"`
	RatingDistribution map[string]int `json:"rating_distribution,omitempty"`
}
