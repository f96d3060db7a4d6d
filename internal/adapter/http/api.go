package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/couchcryptid/aurora-oval-service/internal/contour"
	"github.com/couchcryptid/aurora-oval-service/internal/domain"
)

// CallerHeader carries the caller identity checked against the allow list.
const CallerHeader = "X-Caller-ID"

const maxBodyBytes = 4 << 20

// OvalAPI is the model boundary served under /v1. *oval.Service implements it.
type OvalAPI interface {
	FitObservations(ctx context.Context, caller string, points []domain.Observation) error
	Predict(ctx context.Context, caller string, useCache bool) ([]domain.ScorePoint, error)
	Scores(ctx context.Context, caller string) ([]uint16, float64, error)
	Contours(ctx context.Context, caller string) ([]domain.Contour, error)
	AddCaller(ctx context.Context, caller, id string) error
	RemoveCaller(ctx context.Context, caller, id string) error
	ListCallers(ctx context.Context, caller string) ([]string, error)
}

type handlers struct {
	api    OvalAPI
	logger *slog.Logger
}

type scoresResponse struct {
	Scale  float64  `json:"scale"`
	Scores []uint16 `json:"scores"`
}

func (h *handlers) fitObservations(w http.ResponseWriter, r *http.Request) {
	var batch domain.ObservationBatch
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&batch); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: decode body: %v", domain.ErrInvalidInputShape, err))
		return
	}
	points, err := batch.Points()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.api.FitObservations(r.Context(), caller(r), points); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"stations": len(points)})
}

func (h *handlers) predict(w http.ResponseWriter, r *http.Request) {
	useCache := false
	if v := r.URL.Query().Get("cache"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: cache=%q", domain.ErrInvalidInputShape, v))
			return
		}
		useCache = b
	}
	points, err := h.api.Predict(r.Context(), caller(r), useCache)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if points == nil {
		points = []domain.ScorePoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func (h *handlers) scores(w http.ResponseWriter, r *http.Request) {
	scores, scale, err := h.api.Scores(r.Context(), caller(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if scores == nil {
		scores = []uint16{}
	}
	writeJSON(w, http.StatusOK, scoresResponse{Scale: scale, Scores: scores})
}

func (h *handlers) contours(w http.ResponseWriter, r *http.Request) {
	contours, err := h.api.Contours(r.Context(), caller(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(contour.FeatureCollection(contours)) //nolint:errcheck // client may have gone away
}

func (h *handlers) listCallers(w http.ResponseWriter, r *http.Request) {
	callers, err := h.api.ListCallers(r.Context(), caller(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"callers": callers})
}

func (h *handlers) addCaller(w http.ResponseWriter, r *http.Request) {
	if err := h.api.AddCaller(r.Context(), caller(r), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) removeCaller(w http.ResponseWriter, r *http.Request) {
	if err := h.api.RemoveCaller(r.Context(), caller(r), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func caller(r *http.Request) string {
	return r.Header.Get(CallerHeader)
}

// statusFor maps domain sentinel errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInputShape):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidModelState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNumericalInstability):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	} else {
		h.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
