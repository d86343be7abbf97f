package handler

import (
	"errors"
	"math"
	"net/http"

	"github.com/cinematch/cinematch/internal/domain"
)

// POST /admin/retrain
func (h *Handler) Retrain(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Retrain(); err != nil {
		if errors.Is(err, domain.ErrTrainingInProgress) {
			writeError(w, http.StatusConflict, "training_in_progress",
				"A training run is already in progress")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}
	writeJSON(w, http.StatusAccepted, RetrainResponse{Status: "training started"})
}

// GET /evaluate
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Evaluate(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotTrained) {
			writeError(w, http.StatusServiceUnavailable, "model_not_ready",
				"Recommendation model has not been trained yet")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	resp := EvalResponse{N: result.N}
	if !math.IsInf(result.RMSE, 1) {
		resp.RMSE = &result.RMSE
	}
	if !math.IsInf(result.MAE, 1) {
		resp.MAE = &result.MAE
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if model := h.service.Model(); model != nil {
		resp.ModelTrained = true
		resp.ModelID = model.ID
	}
	writeJSON(w, http.StatusOK, resp)
}
