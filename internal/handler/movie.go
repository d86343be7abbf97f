package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cinematch/cinematch/internal/domain"
)

// GET /movies
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 500 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	movies, err := h.service.ListMovies(r.Context(),
		r.URL.Query().Get("genre"),
		r.URL.Query().Get("search"),
		limit,
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	if movies == nil {
		movies = []domain.Movie{}
	}
	writeJSON(w, http.StatusOK, MovieListResponse{Movies: movies, Count: len(movies)})
}

// GET /movies/{movieID}
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	movieID, ok := parseID(w, chi.URLParam(r, "movieID"), "movie_id")
	if !ok {
		return
	}

	detail, err := h.service.MovieDetail(r.Context(), movieID)
	if err != nil {
		if errors.Is(err, domain.ErrMovieNotFound) {
			writeError(w, http.StatusNotFound, "movie_not_found",
				fmt.Sprintf("Movie with ID %d does not exist", movieID))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}
