package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"winereview/internal/persona"
	"winereview/internal/review"
	"winereview/pkg/logging/logging"
)

// ReviewGenerator is implemented by review.Service.
type ReviewGenerator interface {
	Generate(ctx context.Context, req review.Request) (string, error)
}

// ReviewHandler holds dependencies for the /generate-review endpoint.
type ReviewHandler struct {
	Reviews ReviewGenerator
}

func NewReviewHandler(g ReviewGenerator) *ReviewHandler {
	return &ReviewHandler{Reviews: g}
}

type reviewResponse struct {
	Review string `json:"review"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GenerateReview handles POST /generate-review.
//
// Every failure, client input errors included, is answered with 500 and
// {"error": "<message>"}.
func (h *ReviewHandler) GenerateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	var req review.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, logger, fmt.Errorf("invalid request body: %w", err))
		return
	}

	text, err := h.Reviews.Generate(ctx, req)
	if err != nil {
		h.fail(w, logger, err)
		return
	}

	logger.Info("review_generated",
		zap.String("persona", req.Persona),
		zap.Int("review_bytes", len(text)),
		logging.Millis("total_latency_ms", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, reviewResponse{Review: text})
}

func (h *ReviewHandler) fail(w http.ResponseWriter, logger *zap.Logger, err error) {
	fields := []zap.Field{zap.Error(err)}

	var ipe *persona.InvalidPersonaError
	var ue *review.UpstreamError
	switch {
	case errors.As(err, &ipe):
		fields = append(fields, zap.String("error_kind", "invalid_persona"))
	case errors.As(err, &ue):
		fields = append(fields,
			zap.String("error_kind", "upstream"),
			zap.String("op", string(ue.Op)),
		)
	default:
		fields = append(fields, zap.String("error_kind", "request"))
	}

	logger.Error("generate_review_failed", fields...)
	h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

// writeJSON is a small helper to send JSON responses consistently.
func (h *ReviewHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
