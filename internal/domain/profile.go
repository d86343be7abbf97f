package domain

// GenreStat summarizes how a user rates one genre.
type GenreStat struct {
	Genre         string  `json:"genre"`
	AverageRating float64 `json:"average_rating"`
	Count         int     `json:"count"`
}

// UserProfile is the viewing profile served by the profile endpoint and
// fed into the retrieval-augmented explanation prompt.
type UserProfile struct {
	UserID             int64          `json:"user_id"`
	TotalRatings       int            `json:"total_ratings"`
	AverageRating      float64        `json:"average_rating"`
	TopGenres          []GenreStat    `json:"top_genres"`
	RatingDistribution map[string]int `json:"rating_distribution"`
}
