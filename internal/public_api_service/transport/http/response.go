package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/apperror"
)

// GenericErrorResponse is the body of every error response.
type GenericErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse acknowledges webhooks and background operations.
type MessageResponse struct {
	Message string `json:"message"`
	Summary any    `json:"summary,omitempty"`
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusUnprocessableEntity
	case apperror.KindUpstream:
		return http.StatusBadGateway
	case apperror.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondError writes the caller-safe message of err. Causes are logged, never returned.
func respondError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	kind := apperror.KindOf(err)
	statusCode := statusFor(kind)
	if statusCode >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "Request failed", "kind", kind.String(), "status_code", statusCode, "error", err)
	} else {
		logger.WarnContext(ctx, "Request rejected", "kind", kind.String(), "status_code", statusCode, "error", err)
	}
	respondJSON(w, statusCode, GenericErrorResponse{Error: apperror.MessageOf(err)})
}

// memberIDParam reads an optional numeric member_id query parameter. Absent means zero.
func memberIDParam(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("member_id")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.Validation("member_id must be a number")
	}
	return id, nil
}
