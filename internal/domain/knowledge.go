package domain

// KnowledgeDoc is a retrieved movie-knowledge document with a relevance
// score. It is the shared vocabulary between the knowledge store and the
// explanation layer.
type KnowledgeDoc struct {
	MovieID int64    `json:"movie_id"`
	Title   string   `json:"title"`
	Genres  []string `json:"genres"`
	Text    string   `json:"text"`
	Score   float64  `json:"score"`
}
