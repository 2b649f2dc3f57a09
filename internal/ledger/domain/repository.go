package domain

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
)

// OutboundRepository stores outbound messages, one table per channel.
type OutboundRepository interface {
	// Create inserts msg. Provider message ids are not checked for uniqueness.
	Create(ctx context.Context, msg *OutboundMessage) error

	// FindByProviderMessageID returns (nil, nil) when no record carries the id.
	FindByProviderMessageID(ctx context.Context, channel Channel, providerMessageID string) (*OutboundMessage, error)

	// UpdateDeliveryStatus overwrites the five status fields and the raw delivery report.
	UpdateDeliveryStatus(ctx context.Context, channel Channel, id uuid.UUID, status StatusFields, rawReport json.RawMessage) error

	// UpdateSeenStatus overwrites seen_at, sent_at and the raw seen report.
	UpdateSeenStatus(ctx context.Context, channel Channel, id uuid.UUID, seenAt, sentAt sql.NullTime, rawReport json.RawMessage) error

	ListByMember(ctx context.Context, channel Channel, memberID int64) ([]OutboundMessage, error)
	ListAll(ctx context.Context, channel Channel) ([]OutboundMessage, error)
}

// InboundRepository stores inbound messages.
type InboundRepository interface {
	Create(ctx context.Context, msg *InboundMessage) error
	ListByMember(ctx context.Context, channel Channel, memberID int64) ([]InboundMessage, error)
	ListUnresolved(ctx context.Context, channel Channel) ([]InboundMessage, error)
	ListAll(ctx context.Context, channel Channel) ([]InboundMessage, error)

	// AssignMember sets member_id on one row. Only the backfill uses it.
	AssignMember(ctx context.Context, id uuid.UUID, memberID int64) error
}

// ConversationRepository reads merged inbound/outbound histories.
type ConversationRepository interface {
	// ConversationHistory returns newest first. An invalid memberID means all members.
	ConversationHistory(ctx context.Context, channel Channel, memberID sql.NullInt64) ([]ConversationEntry, error)
}
