package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	chi_middleware "github.com/go-chi/chi/v5/middleware"

	reportapp "github.com/Code67TechSolutions/infobip-scripts/internal/delivery_report_service/app"
	inboundapp "github.com/Code67TechSolutions/infobip-scripts/internal/inbound_processor_service/app"
	ledgerdomain "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/apperror"
)

const maxWebhookBodyBytes = 4 << 20

// ReportProcessor applies delivery and seen reports.
type ReportProcessor interface {
	ProcessWebhook(ctx context.Context, channel ledgerdomain.Channel, body []byte) (*reportapp.ReconcileSummary, error)
}

// InboundProcessor stores inbound messages.
type InboundProcessor interface {
	ProcessWebhook(ctx context.Context, channel ledgerdomain.Channel, body []byte) (*inboundapp.IntakeSummary, error)
}

// WebhookHandler receives provider callbacks. These routes carry no bearer token.
type WebhookHandler struct {
	reports ReportProcessor
	inbound InboundProcessor
	logger  *slog.Logger
}

func NewWebhookHandler(reports ReportProcessor, inbound InboundProcessor, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		reports: reports,
		inbound: inbound,
		logger:  logger.With("handler", "webhook"),
	}
}

func (h *WebhookHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		return nil, apperror.Validation("failed to read request body")
	}
	return body, nil
}

func (h *WebhookHandler) handleReports(channel ledgerdomain.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx), "channel", channel)
		logger.InfoContext(ctx, "Received delivery report callback")

		body, err := h.readBody(w, r)
		if err != nil {
			respondError(ctx, w, logger, err)
			return
		}
		summary, err := h.reports.ProcessWebhook(ctx, channel, body)
		if err != nil {
			respondError(ctx, w, logger, err)
			return
		}
		respondJSON(w, http.StatusOK, MessageResponse{Message: "Delivery report received successfully.", Summary: summary})
	}
}

func (h *WebhookHandler) handleInbound(channel ledgerdomain.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx), "channel", channel)
		logger.InfoContext(ctx, "Received inbound message callback")

		body, err := h.readBody(w, r)
		if err != nil {
			respondError(ctx, w, logger, err)
			return
		}
		summary, err := h.inbound.ProcessWebhook(ctx, channel, body)
		if err != nil {
			respondError(ctx, w, logger, err)
			return
		}
		respondJSON(w, http.StatusOK, MessageResponse{Message: "Inbound messages received successfully.", Summary: summary})
	}
}
