package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/cinematch/cinematch/internal/domain"
)

// POST /rate
func (h *Handler) RateMovie(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	err := h.service.RateMovie(r.Context(), domain.Rating{
		UserID:  req.UserID,
		MovieID: req.MovieID,
		Value:   req.Rating,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRating):
			writeError(w, http.StatusBadRequest, "invalid_rating",
				"Rating must be between 0.5 and 5.0")
		case errors.Is(err, domain.ErrMovieNotFound):
			writeError(w, http.StatusNotFound, "movie_not_found",
				fmt.Sprintf("Movie with ID %d does not exist", req.MovieID))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		}
		return
	}

	writeJSON(w, http.StatusOK, RateResponse{
		Status:  "ok",
		UserID:  req.UserID,
		MovieID: req.MovieID,
		Rating:  req.Rating,
	})
}

// GET /users/{userID}/profile
func (h *Handler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, chi.URLParam(r, "userID"), "user_id")
	if !ok {
		return
	}

	profile, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found",
				fmt.Sprintf("User with ID %d does not exist", userID))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
