package domain

// Strategy selects which ranking branch serves a recommendation request.
type Strategy string

const (
	StrategyUser   Strategy = "user"
	StrategyItem   Strategy = "item"
	StrategyHybrid Strategy = "hybrid"
)

// Method tags a recommendation with the branch that produced it. Hybrid
// lists mix both scoring scales (predicted rating vs. similarity), so the
// tag is the only way to interpret Score.
type Method string

const (
	MethodUserBased  Method = "user_based"
	MethodItemBased  Method = "item_based"
	MethodHybridUser Method = "hybrid-user"
	MethodHybridItem Method = "hybrid-item"
)

type Recommendation struct {
	MovieID     int64    `json:"movie_id"`
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	Score       float64  `json:"score"`
	Method      Method   `json:"recommendation_type"`
	Explanation string   `json:"explanation,omitempty"`
}

type RecommendationResult struct {
	Recommendations []Recommendation
	CacheHit        bool
}

type RecommendationMeta struct {
	Strategy    Strategy `json:"strategy"`
	CacheHit    bool     `json:"cache_hit"`
	GeneratedAt string   `json:"generated_at"`
	TotalCount  int      `json:"total_count"`
}

type BatchUserResult struct {
	UserID          int64            `json:"user_id"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Status          string           `json:"status"`
	Error           string           `json:"error,omitempty"`
	Message         string           `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchResponse struct {
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalUsers int               `json:"total_users"`
	Results    []BatchUserResult `json:"results"`
	Summary    BatchSummary      `json:"summary"`
	Metadata   BatchMeta         `json:"metadata"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)
