package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xtding233/diamond-sim/internal/config"
	"github.com/xtding233/diamond-sim/internal/game"
	"github.com/xtding233/diamond-sim/internal/publish"
	"github.com/xtding233/diamond-sim/internal/service"
	"github.com/xtding233/diamond-sim/internal/store"
)

// HealthCheck returns service health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "diamond-sim",
	})
}

// Simulate plays a game for the requested trials and records the run.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var body service.RequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	out, err := h.svc.Simulate(r.Context(), body.Request())
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// LatestResult returns the cached result of a game.
func (h *Handler) LatestResult(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.LatestResult(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Snapshot returns the stored snapshot of a game.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// Resume finishes a stored game. An optional seed query parameter fixes
// the random stream.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	var seed uint64
	if v := r.URL.Query().Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "seed must be an unsigned integer")
			return
		}
		seed = n
	}
	res, err := h.svc.Resume(r.Context(), chi.URLParam(r, "gameID"), seed)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "err", err)
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrBadRequest), errors.Is(err, config.ErrInvalid), errors.Is(err, game.ErrIncompleteRoster):
		return http.StatusBadRequest
	case errors.Is(err, config.ErrNotFound), errors.Is(err, store.ErrNotFound), errors.Is(err, publish.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidSnapshot):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNoStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
