package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	ledgerdomain "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/apperror"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/messagebroker"
)

// SubjectInboundReceived is suffixed with the lower-case channel name.
const SubjectInboundReceived = "messaging.inbound.received."

// SenderResolver maps a raw sender to a member id. An unmatched sender is not an error.
type SenderResolver interface {
	ResolveSender(ctx context.Context, sender string) (sql.NullInt64, error)
}

// InboundReceivedEvent is published for every stored inbound message.
type InboundReceivedEvent struct {
	ID                uuid.UUID `json:"id"`
	Channel           string    `json:"channel"`
	ProviderMessageID string    `json:"provider_message_id"`
	Sender            string    `json:"sender"`
	MemberID          *int64    `json:"member_id,omitempty"`
	MessageType       string    `json:"message_type"`
}

// IntakeSummary counts the outcome of one batch.
type IntakeSummary struct {
	Received   int `json:"received"`
	Stored     int `json:"stored"`
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
	Failed     int `json:"failed"`
}

// IntakeProcessor stores inbound messages and links them to members.
type IntakeProcessor struct {
	inbound   ledgerdomain.InboundRepository
	resolver  SenderResolver
	publisher messagebroker.Publisher
	logger    *slog.Logger
}

func NewIntakeProcessor(inbound ledgerdomain.InboundRepository, resolver SenderResolver, publisher messagebroker.Publisher, logger *slog.Logger) *IntakeProcessor {
	return &IntakeProcessor{
		inbound:   inbound,
		resolver:  resolver,
		publisher: publisher,
		logger:    logger.With("component", "intake_processor"),
	}
}

// ProcessWebhook decodes a raw webhook body. Only a body without a results array fails
// the call; an individual event that cannot be decoded is counted as failed.
func (p *IntakeProcessor) ProcessWebhook(ctx context.Context, channel ledgerdomain.Channel, body []byte) (*IntakeSummary, error) {
	batch, err := ledgerdomain.DecodeWebhookBatch(body)
	if err != nil {
		p.logger.WarnContext(ctx, "Rejecting inbound message body", "channel", channel, "error", err)
		return nil, apperror.Validation("malformed inbound message payload")
	}
	return p.Process(ctx, channel, batch), nil
}

// Process handles every event of the batch. A failing event is logged and counted, and
// processing continues with the next one.
func (p *IntakeProcessor) Process(ctx context.Context, channel ledgerdomain.Channel, batch *ledgerdomain.WebhookBatch) *IntakeSummary {
	start := time.Now()
	defer func() {
		inboundBatchDurationHist.WithLabelValues(channel.String()).Observe(time.Since(start).Seconds())
	}()

	summary := &IntakeSummary{Received: len(batch.Results)}
	for i := range batch.Results {
		msg, ok := p.processEvent(ctx, channel, &batch.Results[i])
		if !ok {
			summary.Failed++
			continue
		}
		summary.Stored++
		if msg.MemberID.Valid {
			summary.Resolved++
		} else {
			summary.Unresolved++
		}
	}

	p.logger.InfoContext(ctx, "Finished inbound batch",
		"channel", channel,
		"received", summary.Received,
		"stored", summary.Stored,
		"unresolved", summary.Unresolved,
		"failed", summary.Failed,
	)
	return summary
}

func (p *IntakeProcessor) processEvent(ctx context.Context, channel ledgerdomain.Channel, event *ledgerdomain.WebhookResult) (*ledgerdomain.InboundMessage, bool) {
	if event.DecodeErr != nil {
		inboundEventsProcessedCounter.WithLabelValues(channel.String(), "error_decode").Inc()
		p.logger.WarnContext(ctx, "Skipping undecodable inbound message",
			"channel", channel,
			"provider_message_id", event.MessageID,
			"error", event.DecodeErr,
		)
		return nil, false
	}
	msg := NewInboundFromEvent(channel, event)
	p.logger.InfoContext(ctx, "Processing inbound message",
		"channel", channel,
		"provider_message_id", msg.ProviderMessageID,
		"sender", msg.Sender,
		"message_type", msg.MessageType,
	)

	memberID, err := p.resolver.ResolveSender(ctx, msg.Sender)
	if err != nil {
		inboundEventsProcessedCounter.WithLabelValues(channel.String(), "error_resolve").Inc()
		p.logger.WarnContext(ctx, "Sender resolution failed, storing without member", "sender", msg.Sender, "error", err)
	} else {
		msg.MemberID = memberID
	}

	if err := p.inbound.Create(ctx, msg); err != nil {
		inboundEventsProcessedCounter.WithLabelValues(channel.String(), "error_db_save").Inc()
		p.logger.ErrorContext(ctx, "Failed to save inbound message",
			"error", err,
			"id", msg.ID,
			"provider_message_id", msg.ProviderMessageID,
		)
		return nil, false
	}
	inboundEventsProcessedCounter.WithLabelValues(channel.String(), "success").Inc()

	p.publish(ctx, msg)
	return msg, true
}

// NewInboundFromEvent maps a webhook event to a ledger row. Non-text content has a null
// body and shows its type name instead.
func NewInboundFromEvent(channel ledgerdomain.Channel, event *ledgerdomain.WebhookResult) *ledgerdomain.InboundMessage {
	body := event.TextBody()
	display := event.MessageType()
	if body.Valid {
		display = body.String
	}
	return &ledgerdomain.InboundMessage{
		ID:                uuid.New(),
		Channel:           channel,
		ProviderMessageID: event.MessageID,
		PairedMessageID:   event.CorrelationID(),
		Sender:            event.Sender,
		MessageType:       event.MessageType(),
		MessageBody:       body,
		DisplayBody:       display,
		Destination:       event.Destination,
		Event:             event.Event,
		ReceivedAt:        event.ReceivedAt.NullTime(),
		CallbackData:      sql.NullString{String: event.CallbackData, Valid: event.CallbackData != ""},
		RawContent:        event.RawContent,
		RawReport:         event.Raw,
		CreatedAt:         time.Now().UTC(),
	}
}

func (p *IntakeProcessor) publish(ctx context.Context, msg *ledgerdomain.InboundMessage) {
	event := InboundReceivedEvent{
		ID:                msg.ID,
		Channel:           msg.Channel.String(),
		ProviderMessageID: msg.ProviderMessageID,
		Sender:            msg.Sender,
		MessageType:       msg.MessageType,
	}
	if msg.MemberID.Valid {
		id := msg.MemberID.Int64
		event.MemberID = &id
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to marshal inbound event", "error", err)
		return
	}
	subject := SubjectInboundReceived + strings.ToLower(msg.Channel.String())
	if err := p.publisher.Publish(ctx, subject, data); err != nil {
		p.logger.WarnContext(ctx, "Failed to publish inbound event", "subject", subject, "error", err)
	}
}
