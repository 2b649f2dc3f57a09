package domain

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// UnknownContentType is stored as message_type when an inbound event carries no content.
const UnknownContentType = "Unknown_Content"

// Direction tags entries of a conversation history.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// StatusFields is the provider status block as stored on an outbound record.
// All five fields are overwritten together.
type StatusFields struct {
	Name        sql.NullString
	Description sql.NullString
	GroupID     sql.NullInt64
	GroupName   sql.NullString
	ID          sql.NullInt64
}

// OutboundMessage is a message this system sent through the provider on one channel.
// ProviderMessageID is null until the provider answers and is never changed afterwards.
type OutboundMessage struct {
	ID                uuid.UUID
	Channel           Channel
	ProviderMessageID sql.NullString
	BulkID            sql.NullString // email only
	Destination       string
	Body              string // text, template name or email text
	MemberID          sql.NullInt64
	Status            StatusFields
	SeenAt            sql.NullTime
	SentAt            sql.NullTime
	// Latest delivery/seen event payloads as received.
	RawDeliveryReport json.RawMessage
	RawSeenReport     json.RawMessage
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewOutboundMessage creates a record for a send attempt. Status fields start null.
func NewOutboundMessage(channel Channel, destination, body string, memberID sql.NullInt64) *OutboundMessage {
	now := time.Now().UTC()
	return &OutboundMessage{
		ID:          uuid.New(),
		Channel:     channel,
		Destination: destination,
		Body:        body,
		MemberID:    memberID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// InboundMessage is a message received from an external sender. It is never updated
// after creation, except for MemberID which the backfill may fill in once.
type InboundMessage struct {
	ID                uuid.UUID
	Channel           Channel
	ProviderMessageID string
	PairedMessageID   string
	Sender            string
	MemberID          sql.NullInt64
	MessageType       string
	MessageBody       sql.NullString // text content only
	DisplayBody       string         // MessageBody, or MessageType when there is no text
	Destination       string
	Event             string
	ReceivedAt        sql.NullTime
	CallbackData      sql.NullString
	RawContent        json.RawMessage
	RawReport         json.RawMessage
	CreatedAt         time.Time
}

// ConversationEntry is one row of a merged inbound/outbound history.
type ConversationEntry struct {
	Message     string
	Timestamp   time.Time
	MemberID    sql.NullInt64
	Destination string
	Status      sql.NullString
	SeenAt      sql.NullTime
	Direction   Direction
}
