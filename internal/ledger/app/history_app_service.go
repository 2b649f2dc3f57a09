package app

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/apperror"
)

// HistoryAppService serves read-only views of the ledger.
type HistoryAppService struct {
	outbound     domain.OutboundRepository
	inbound      domain.InboundRepository
	conversation domain.ConversationRepository
	logger       *slog.Logger
}

func NewHistoryAppService(outbound domain.OutboundRepository, inbound domain.InboundRepository, conversation domain.ConversationRepository, logger *slog.Logger) *HistoryAppService {
	return &HistoryAppService{
		outbound:     outbound,
		inbound:      inbound,
		conversation: conversation,
		logger:       logger.With("service", "history_app"),
	}
}

func (s *HistoryAppService) fail(ctx context.Context, msg string, channel domain.Channel, err error) error {
	s.logger.ErrorContext(ctx, msg, "channel", channel, "error", err)
	return apperror.Internal(msg, err)
}

func requireMember(memberID int64) error {
	if memberID <= 0 {
		return apperror.Validation("member_id is required")
	}
	return nil
}

func (s *HistoryAppService) OutboundByMember(ctx context.Context, channel domain.Channel, memberID int64) ([]domain.OutboundMessage, error) {
	if err := requireMember(memberID); err != nil {
		return nil, err
	}
	messages, err := s.outbound.ListByMember(ctx, channel, memberID)
	if err != nil {
		return nil, s.fail(ctx, "failed to load messages", channel, err)
	}
	return messages, nil
}

func (s *HistoryAppService) OutboundAll(ctx context.Context, channel domain.Channel) ([]domain.OutboundMessage, error) {
	messages, err := s.outbound.ListAll(ctx, channel)
	if err != nil {
		return nil, s.fail(ctx, "failed to load outbound messages", channel, err)
	}
	return messages, nil
}

func (s *HistoryAppService) InboundAll(ctx context.Context, channel domain.Channel) ([]domain.InboundMessage, error) {
	messages, err := s.inbound.ListAll(ctx, channel)
	if err != nil {
		return nil, s.fail(ctx, "failed to load inbound messages", channel, err)
	}
	return messages, nil
}

// InboundUnresolved lists inbound messages from senders that match no member.
func (s *HistoryAppService) InboundUnresolved(ctx context.Context, channel domain.Channel) ([]domain.InboundMessage, error) {
	messages, err := s.inbound.ListUnresolved(ctx, channel)
	if err != nil {
		return nil, s.fail(ctx, "failed to load unregistered inbound messages", channel, err)
	}
	return messages, nil
}

// Conversation merges both directions for one member, newest first.
func (s *HistoryAppService) Conversation(ctx context.Context, channel domain.Channel, memberID int64) ([]domain.ConversationEntry, error) {
	if err := requireMember(memberID); err != nil {
		return nil, err
	}
	entries, err := s.conversation.ConversationHistory(ctx, channel, sql.NullInt64{Int64: memberID, Valid: true})
	if err != nil {
		return nil, s.fail(ctx, "failed to load conversation", channel, err)
	}
	return entries, nil
}

// Logs is the merged history of every member.
func (s *HistoryAppService) Logs(ctx context.Context, channel domain.Channel) ([]domain.ConversationEntry, error) {
	entries, err := s.conversation.ConversationHistory(ctx, channel, sql.NullInt64{})
	if err != nil {
		return nil, s.fail(ctx, "failed to load message logs", channel, err)
	}
	return entries, nil
}
