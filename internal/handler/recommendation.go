package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/cinematch/cinematch/internal/domain"
)

// POST /recommendations
func (h *Handler) PostRecommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	strategy := domain.StrategyHybrid
	if req.Strategy != "" {
		strategy = domain.Strategy(req.Strategy)
	}

	result, err := h.service.Recommend(r.Context(), req.UserID, strategy, req.Limit)
	if err != nil {
		h.writeRecommendError(w, req.UserID, err)
		return
	}

	writeJSON(w, http.StatusOK, RecommendationResponse{
		UserID:          req.UserID,
		Recommendations: result.Recommendations,
		Metadata: domain.RecommendationMeta{
			Strategy:    strategy,
			CacheHit:    result.CacheHit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(result.Recommendations),
		},
	})
}

// GET /explain/{userID}/{movieID}
func (h *Handler) GetExplanation(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, chi.URLParam(r, "userID"), "user_id")
	if !ok {
		return
	}
	movieID, ok := parseID(w, chi.URLParam(r, "movieID"), "movie_id")
	if !ok {
		return
	}

	explanation := h.service.Explain(r.Context(), userID, movieID)
	writeJSON(w, http.StatusOK, ExplainResponse{
		UserID:      userID,
		MovieID:     movieID,
		Explanation: explanation,
	})
}

// GET /recommendations/batch
func (h *Handler) GetBatchRecommendations(w http.ResponseWriter, r *http.Request) {
	// Parse and validate page
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil || parsed < 1 || parsed > 10000 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid page parameter")
			return
		}
		page = parsed
	}

	// Parse and validate limit
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	strategy := domain.StrategyHybrid
	if s := r.URL.Query().Get("strategy"); s != "" {
		strategy = domain.Strategy(s)
		if strategy != domain.StrategyUser && strategy != domain.StrategyItem && strategy != domain.StrategyHybrid {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid strategy parameter")
			return
		}
	}

	result, err := h.service.GetBatchRecommendations(r.Context(), page, limit, strategy)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeRecommendError(w http.ResponseWriter, userID int64, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownUser), errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found",
			fmt.Sprintf("User with ID %d does not exist", userID))
	case errors.Is(err, domain.ErrNotTrained):
		writeError(w, http.StatusServiceUnavailable, "model_not_ready",
			"Recommendation model has not been trained yet")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request_timeout",
			"Request timed out, please try again")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func parseID(w http.ResponseWriter, raw, name string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}
