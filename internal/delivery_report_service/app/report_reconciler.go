package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	ledgerdomain "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/apperror"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/messagebroker"
)

// SubjectReportApplied is suffixed with the lower-case channel name.
const SubjectReportApplied = "messaging.dlr.applied."

// ReportAppliedEvent is published after a report changed a ledger row.
type ReportAppliedEvent struct {
	ID                uuid.UUID  `json:"id"`
	Channel           string     `json:"channel"`
	ProviderMessageID string     `json:"provider_message_id"`
	Kind              string     `json:"kind"` // "status" or "seen"
	StatusName        string     `json:"status_name,omitempty"`
	SeenAt            *time.Time `json:"seen_at,omitempty"`
}

// ReconcileSummary counts what happened to each event of a batch.
type ReconcileSummary struct {
	Received int `json:"received"`
	Status   int `json:"status_updates"`
	Seen     int `json:"seen_updates"`
	Missed   int `json:"missed"`
	Ignored  int `json:"ignored"`
}

// ReportReconciler applies provider delivery and seen reports to outbound ledger rows.
type ReportReconciler struct {
	ledger    ledgerdomain.OutboundRepository
	publisher messagebroker.Publisher
	logger    *slog.Logger
}

func NewReportReconciler(ledger ledgerdomain.OutboundRepository, publisher messagebroker.Publisher, logger *slog.Logger) *ReportReconciler {
	return &ReportReconciler{
		ledger:    ledger,
		publisher: publisher,
		logger:    logger.With("component", "report_reconciler"),
	}
}

// ProcessWebhook decodes a raw webhook body and reconciles it. A body without a results
// array is a validation failure and nothing is written. An event that cannot be decoded
// stops the batch at that event like any other failing event.
func (r *ReportReconciler) ProcessWebhook(ctx context.Context, channel ledgerdomain.Channel, body []byte) (*ReconcileSummary, error) {
	batch, err := ledgerdomain.DecodeWebhookBatch(body)
	if err != nil {
		r.logger.WarnContext(ctx, "Rejecting delivery report body", "channel", channel, "error", err)
		return nil, apperror.Validation("malformed delivery report")
	}
	return r.Reconcile(ctx, channel, batch)
}

// Reconcile applies each event in order. Unknown provider ids are skipped. The first
// failing event stops the batch; rows already written stay written, and replaying the
// same batch yields the same final state.
func (r *ReportReconciler) Reconcile(ctx context.Context, channel ledgerdomain.Channel, batch *ledgerdomain.WebhookBatch) (*ReconcileSummary, error) {
	start := time.Now()
	defer func() {
		reportBatchDurationHist.WithLabelValues(channel.String()).Observe(time.Since(start).Seconds())
	}()

	summary := &ReconcileSummary{Received: len(batch.Results)}
	r.logger.InfoContext(ctx, "Processing delivery report batch", "channel", channel, "count", len(batch.Results))

	for i := range batch.Results {
		if err := r.apply(ctx, channel, &batch.Results[i], summary); err != nil {
			reportEventsProcessedCounter.WithLabelValues(channel.String(), "error").Inc()
			r.logger.ErrorContext(ctx, "Aborting delivery report batch",
				"channel", channel,
				"provider_message_id", batch.Results[i].MessageID,
				"processed", i,
				"remaining", len(batch.Results)-i,
				"error", err,
			)
			return summary, apperror.Internal("delivery report processing failed", err)
		}
	}

	r.logger.InfoContext(ctx, "Finished delivery report batch",
		"channel", channel,
		"status_updates", summary.Status,
		"seen_updates", summary.Seen,
		"missed", summary.Missed,
		"ignored", summary.Ignored,
	)
	return summary, nil
}

func (r *ReportReconciler) apply(ctx context.Context, channel ledgerdomain.Channel, event *ledgerdomain.WebhookResult, summary *ReconcileSummary) error {
	if event.DecodeErr != nil {
		return event.DecodeErr
	}
	if event.MessageID == "" {
		summary.Ignored++
		reportEventsProcessedCounter.WithLabelValues(channel.String(), "ignored").Inc()
		r.logger.WarnContext(ctx, "Delivery report event without messageId", "channel", channel)
		return nil
	}

	record, err := r.ledger.FindByProviderMessageID(ctx, channel, event.MessageID)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", event.MessageID, err)
	}
	if record == nil {
		summary.Missed++
		reportEventsProcessedCounter.WithLabelValues(channel.String(), "miss").Inc()
		r.logger.InfoContext(ctx, "No outbound message for provider id", "channel", channel, "provider_message_id", event.MessageID, "to", event.To)
		return nil
	}

	switch {
	case event.HasStatus():
		if err := r.ledger.UpdateDeliveryStatus(ctx, channel, record.ID, event.Status.Fields(), event.Raw); err != nil {
			return err
		}
		summary.Status++
		reportEventsProcessedCounter.WithLabelValues(channel.String(), "status").Inc()
		r.logger.InfoContext(ctx, "Delivery status saved", "channel", channel, "provider_message_id", event.MessageID, "status", event.Status.Name)
		r.publish(ctx, channel, ReportAppliedEvent{
			ID: record.ID, Channel: channel.String(), ProviderMessageID: event.MessageID, Kind: "status", StatusName: event.Status.Name,
		})

	case event.HasSeen():
		if err := r.ledger.UpdateSeenStatus(ctx, channel, record.ID, event.SeenAt.NullTime(), event.SentAt.NullTime(), event.Raw); err != nil {
			return err
		}
		summary.Seen++
		reportEventsProcessedCounter.WithLabelValues(channel.String(), "seen").Inc()
		seenAt := event.SeenAt.Time
		r.publish(ctx, channel, ReportAppliedEvent{
			ID: record.ID, Channel: channel.String(), ProviderMessageID: event.MessageID, Kind: "seen", SeenAt: &seenAt,
		})

	default:
		summary.Ignored++
		reportEventsProcessedCounter.WithLabelValues(channel.String(), "ignored").Inc()
		r.logger.DebugContext(ctx, "Delivery report event carries neither status nor seen time", "provider_message_id", event.MessageID)
	}
	return nil
}

// publish failures never affect the ledger write that preceded them.
func (r *ReportReconciler) publish(ctx context.Context, channel ledgerdomain.Channel, event ReportAppliedEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to marshal report event", "error", err)
		return
	}
	subject := SubjectReportApplied + strings.ToLower(channel.String())
	if err := r.publisher.Publish(ctx, subject, data); err != nil {
		r.logger.WarnContext(ctx, "Failed to publish report event", "subject", subject, "error", err)
	}
}
