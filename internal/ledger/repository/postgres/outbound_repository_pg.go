package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/database"
)

// outboundTables maps each channel to its table. Table names are never taken from input.
var outboundTables = map[domain.Channel]string{
	domain.ChannelSMS:      "sms_messages",
	domain.ChannelWhatsApp: "whatsapp_messages_outbound",
	domain.ChannelEmail:    "email_messages_outbound",
}

const outboundColumns = `id, provider_message_id, bulk_id, destination, body, member_id,
	status_name, status_description, status_group_id, status_group_name, status_id,
	seen_at, sent_at, raw_delivery_report, raw_seen_report, created_at, updated_at`

type PgOutboundRepository struct {
	db     database.Querier
	logger *slog.Logger
}

func NewPgOutboundRepository(db database.Querier, logger *slog.Logger) *PgOutboundRepository {
	return &PgOutboundRepository{db: db, logger: logger.With("component", "outbound_repository_pg")}
}

func outboundTable(channel domain.Channel) (string, error) {
	table, ok := outboundTables[channel]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownChannel, channel)
	}
	return table, nil
}

func scanOutbound(row pgx.Row, channel domain.Channel) (*domain.OutboundMessage, error) {
	m := domain.OutboundMessage{Channel: channel}
	err := row.Scan(
		&m.ID,
		&m.ProviderMessageID,
		&m.BulkID,
		&m.Destination,
		&m.Body,
		&m.MemberID,
		&m.Status.Name,
		&m.Status.Description,
		&m.Status.GroupID,
		&m.Status.GroupName,
		&m.Status.ID,
		&m.SeenAt,
		&m.SentAt,
		&m.RawDeliveryReport,
		&m.RawSeenReport,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgOutboundRepository) Create(ctx context.Context, msg *domain.OutboundMessage) error {
	table, err := outboundTable(msg.Channel)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`, table, outboundColumns)

	_, err = r.db.Exec(ctx, query,
		msg.ID, msg.ProviderMessageID, msg.BulkID, msg.Destination, msg.Body, msg.MemberID,
		msg.Status.Name, msg.Status.Description, msg.Status.GroupID, msg.Status.GroupName, msg.Status.ID,
		msg.SeenAt, msg.SentAt, msg.RawDeliveryReport, msg.RawSeenReport, msg.CreatedAt, msg.UpdatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error inserting outbound message", "channel", msg.Channel, "id", msg.ID, "error", err)
		return fmt.Errorf("inserting %s message %s: %w", msg.Channel, msg.ID, err)
	}
	return nil
}

func (r *PgOutboundRepository) FindByProviderMessageID(ctx context.Context, channel domain.Channel, providerMessageID string) (*domain.OutboundMessage, error) {
	table, err := outboundTable(channel)
	if err != nil {
		return nil, err
	}
	// Provider ids are not unique in storage; the oldest record wins.
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE provider_message_id = $1 ORDER BY created_at ASC LIMIT 1`, outboundColumns, table)

	msg, err := scanOutbound(r.db.QueryRow(ctx, query, providerMessageID), channel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Error finding outbound message", "channel", channel, "provider_message_id", providerMessageID, "error", err)
		return nil, fmt.Errorf("finding %s message by provider id %s: %w", channel, providerMessageID, err)
	}
	return msg, nil
}

func (r *PgOutboundRepository) UpdateDeliveryStatus(ctx context.Context, channel domain.Channel, id uuid.UUID, status domain.StatusFields, rawReport json.RawMessage) error {
	table, err := outboundTable(channel)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET status_name = $1, status_description = $2, status_group_id = $3,
		status_group_name = $4, status_id = $5, raw_delivery_report = $6, updated_at = NOW()
		WHERE id = $7`, table)

	cmdTag, err := r.db.Exec(ctx, query, status.Name, status.Description, status.GroupID, status.GroupName, status.ID, rawReport, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating delivery status", "channel", channel, "id", id, "error", err)
		return fmt.Errorf("updating delivery status of %s message %s: %w", channel, id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("updating delivery status of %s message %s: %w", channel, id, pgx.ErrNoRows)
	}
	return nil
}

func (r *PgOutboundRepository) UpdateSeenStatus(ctx context.Context, channel domain.Channel, id uuid.UUID, seenAt, sentAt sql.NullTime, rawReport json.RawMessage) error {
	table, err := outboundTable(channel)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET seen_at = $1, sent_at = $2, raw_seen_report = $3, updated_at = NOW()
		WHERE id = $4`, table)

	cmdTag, err := r.db.Exec(ctx, query, seenAt, sentAt, rawReport, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating seen status", "channel", channel, "id", id, "error", err)
		return fmt.Errorf("updating seen status of %s message %s: %w", channel, id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("updating seen status of %s message %s: %w", channel, id, pgx.ErrNoRows)
	}
	return nil
}

func (r *PgOutboundRepository) ListByMember(ctx context.Context, channel domain.Channel, memberID int64) ([]domain.OutboundMessage, error) {
	table, err := outboundTable(channel)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE member_id = $1 ORDER BY created_at DESC`, outboundColumns, table)
	return r.list(ctx, channel, query, memberID)
}

func (r *PgOutboundRepository) ListAll(ctx context.Context, channel domain.Channel) ([]domain.OutboundMessage, error) {
	table, err := outboundTable(channel)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC`, outboundColumns, table)
	return r.list(ctx, channel, query)
}

func (r *PgOutboundRepository) list(ctx context.Context, channel domain.Channel, query string, args ...any) ([]domain.OutboundMessage, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing outbound messages", "channel", channel, "error", err)
		return nil, fmt.Errorf("listing %s messages: %w", channel, err)
	}
	defer rows.Close()

	var messages []domain.OutboundMessage
	for rows.Next() {
		msg, err := scanOutbound(rows, channel)
		if err != nil {
			return nil, fmt.Errorf("scanning %s message: %w", channel, err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s messages: %w", channel, err)
	}
	return messages, nil
}
