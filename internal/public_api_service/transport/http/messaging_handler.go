package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	chi_middleware "github.com/go-chi/chi/v5/middleware"

	outboundapp "github.com/Code67TechSolutions/infobip-scripts/internal/outbound_service/app"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/apperror"
)

// MessageSender is the outbound send use-cases.
type MessageSender interface {
	SendSMS(ctx context.Context, cmd outboundapp.SendSMSCommand) (*outboundapp.SendOutcome, error)
	SendWhatsApp(ctx context.Context, cmd outboundapp.SendWhatsAppCommand) (*outboundapp.SendOutcome, error)
	SendEmail(ctx context.Context, cmd outboundapp.SendEmailCommand) (*outboundapp.SendOutcome, error)
}

// RenewalNotifier sends membership renewal notices.
type RenewalNotifier interface {
	Notify(ctx context.Context, cmd outboundapp.RenewalNoticeCommand) (*outboundapp.SendOutcome, error)
}

type MessagingHandler struct {
	sender  MessageSender
	renewal RenewalNotifier
	logger  *slog.Logger
}

func NewMessagingHandler(sender MessageSender, renewal RenewalNotifier, logger *slog.Logger) *MessagingHandler {
	return &MessagingHandler{
		sender:  sender,
		renewal: renewal,
		logger:  logger.With("handler", "messaging"),
	}
}

// handleSendSMS takes its input from the query string: to, msg and member_id.
func (h *MessagingHandler) handleSendSMS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	memberID, err := memberIDParam(r)
	if err != nil {
		respondError(ctx, w, logger, err)
		return
	}
	q := r.URL.Query()
	outcome, err := h.sender.SendSMS(ctx, outboundapp.SendSMSCommand{
		To:       q.Get("to"),
		Text:     q.Get("msg"),
		MemberID: memberID,
	})
	if err != nil {
		respondError(ctx, w, logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toSendResponse(outcome))
}

// handleSendWhatsApp serves both the template and the text route. The body decides which
// provider endpoint is used.
func (h *MessagingHandler) handleSendWhatsApp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	var req WhatsAppSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, logger, apperror.Validation("invalid request payload"))
		return
	}
	outcome, err := h.sender.SendWhatsApp(ctx, req.Command())
	if err != nil {
		respondError(ctx, w, logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toSendResponse(outcome))
}

func (h *MessagingHandler) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	var req EmailSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, logger, apperror.Validation("invalid request payload"))
		return
	}
	outcome, err := h.sender.SendEmail(ctx, outboundapp.SendEmailCommand{
		To:           req.To,
		Subject:      req.Subject,
		Text:         req.Text,
		HTML:         req.HTML,
		Placeholders: req.Placeholders,
		MemberID:     req.MemberID,
	})
	if err != nil {
		respondError(ctx, w, logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toSendResponse(outcome))
}

func (h *MessagingHandler) handleRenewalNotice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	var req RenewalNoticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, logger, apperror.Validation("invalid request payload"))
		return
	}
	outcome, err := h.renewal.Notify(ctx, outboundapp.RenewalNoticeCommand{
		MobileNumber: req.MobileNumber,
		Email:        req.Email,
		MemberID:     req.MemberID,
	})
	if err != nil {
		respondError(ctx, w, logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toSendResponse(outcome))
}
