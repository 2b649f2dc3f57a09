package http

import (
	"context"
	"log/slog"
	"net/http"

	chi_middleware "github.com/go-chi/chi/v5/middleware"

	identityapp "github.com/Code67TechSolutions/infobip-scripts/internal/identity_service/app"
	ledgerdomain "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/apperror"
)

// HistoryReader is the read side of the ledger.
type HistoryReader interface {
	OutboundByMember(ctx context.Context, channel ledgerdomain.Channel, memberID int64) ([]ledgerdomain.OutboundMessage, error)
	OutboundAll(ctx context.Context, channel ledgerdomain.Channel) ([]ledgerdomain.OutboundMessage, error)
	InboundAll(ctx context.Context, channel ledgerdomain.Channel) ([]ledgerdomain.InboundMessage, error)
	InboundUnresolved(ctx context.Context, channel ledgerdomain.Channel) ([]ledgerdomain.InboundMessage, error)
	Conversation(ctx context.Context, channel ledgerdomain.Channel, memberID int64) ([]ledgerdomain.ConversationEntry, error)
	Logs(ctx context.Context, channel ledgerdomain.Channel) ([]ledgerdomain.ConversationEntry, error)
}

// BackfillRunner links unresolved inbound messages to members.
type BackfillRunner interface {
	Run(ctx context.Context, channel ledgerdomain.Channel) (*identityapp.BackfillResult, error)
}

type HistoryHandler struct {
	history  HistoryReader
	backfill BackfillRunner
	logger   *slog.Logger
}

func NewHistoryHandler(history HistoryReader, backfill BackfillRunner, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		history:  history,
		backfill: backfill,
		logger:   logger.With("handler", "history"),
	}
}

// handleMemberMessages lists one member's outbound messages on channel. With notFoundWhenEmpty
// an empty list is reported as 404.
func (h *HistoryHandler) handleMemberMessages(channel ledgerdomain.Channel, notFoundWhenEmpty bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx), "channel", channel)

		memberID, err := memberIDParam(r)
		if err != nil {
			respondError(ctx, w, logger, err)
			return
		}
		msgs, err := h.history.OutboundByMember(ctx, channel, memberID)
		if err != nil {
			respondError(ctx, w, logger, err)
			return
		}
		if notFoundWhenEmpty && len(msgs) == 0 {
			respondError(ctx, w, logger, apperror.NotFound("No messages found"))
			return
		}
		respondJSON(w, http.StatusOK, toOutboundResponses(msgs))
	}
}

func (h *HistoryHandler) handleOutboundAll(channel ledgerdomain.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		msgs, err := h.history.OutboundAll(ctx, channel)
		if err != nil {
			respondError(ctx, w, h.logger, err)
			return
		}
		respondJSON(w, http.StatusOK, toOutboundResponses(msgs))
	}
}

func (h *HistoryHandler) handleInboundAll(channel ledgerdomain.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		msgs, err := h.history.InboundAll(ctx, channel)
		if err != nil {
			respondError(ctx, w, h.logger, err)
			return
		}
		respondJSON(w, http.StatusOK, toInboundResponses(msgs))
	}
}

func (h *HistoryHandler) handleInboundUnresolved(channel ledgerdomain.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		msgs, err := h.history.InboundUnresolved(ctx, channel)
		if err != nil {
			respondError(ctx, w, h.logger, err)
			return
		}
		respondJSON(w, http.StatusOK, toInboundResponses(msgs))
	}
}

func (h *HistoryHandler) handleConversation(channel ledgerdomain.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		memberID, err := memberIDParam(r)
		if err != nil {
			respondError(ctx, w, h.logger, err)
			return
		}
		entries, err := h.history.Conversation(ctx, channel, memberID)
		if err != nil {
			respondError(ctx, w, h.logger, err)
			return
		}
		respondJSON(w, http.StatusOK, toConversationResponses(entries))
	}
}

func (h *HistoryHandler) handleLogs(channel ledgerdomain.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		entries, err := h.history.Logs(ctx, channel)
		if err != nil {
			respondError(ctx, w, h.logger, err)
			return
		}
		respondJSON(w, http.StatusOK, toConversationResponses(entries))
	}
}

func (h *HistoryHandler) handleBackfill(channel ledgerdomain.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx), "channel", channel)

		result, err := h.backfill.Run(ctx, channel)
		if err != nil {
			respondError(ctx, w, logger, apperror.Internal("Error updating member IDs", err))
			return
		}
		logger.InfoContext(ctx, "Member backfill finished", "scanned", result.Scanned, "resolved", result.Resolved)
		respondJSON(w, http.StatusAccepted, MessageResponse{Message: "Member IDs updated successfully", Summary: result})
	}
}
