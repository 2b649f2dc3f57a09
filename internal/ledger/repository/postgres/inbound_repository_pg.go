package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/database"
)

const inboundColumns = `id, channel, provider_message_id, paired_message_id, sender, member_id,
	message_type, message_body, display_body, destination, event, received_at, callback_data,
	raw_content, raw_report, created_at`

type PgInboundRepository struct {
	db     database.Querier
	logger *slog.Logger
}

// NewPgInboundRepository accepts the pool or a transaction. The backfill runs it inside one.
func NewPgInboundRepository(db database.Querier, logger *slog.Logger) *PgInboundRepository {
	return &PgInboundRepository{db: db, logger: logger.With("component", "inbound_repository_pg")}
}

func scanInbound(row pgx.Row) (*domain.InboundMessage, error) {
	var m domain.InboundMessage
	var channel string
	err := row.Scan(
		&m.ID,
		&channel,
		&m.ProviderMessageID,
		&m.PairedMessageID,
		&m.Sender,
		&m.MemberID,
		&m.MessageType,
		&m.MessageBody,
		&m.DisplayBody,
		&m.Destination,
		&m.Event,
		&m.ReceivedAt,
		&m.CallbackData,
		&m.RawContent,
		&m.RawReport,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Channel = domain.Channel(channel)
	return &m, nil
}

func (r *PgInboundRepository) Create(ctx context.Context, msg *domain.InboundMessage) error {
	query := `INSERT INTO inbound_messages (` + inboundColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.Exec(ctx, query,
		msg.ID, msg.Channel.String(), msg.ProviderMessageID, msg.PairedMessageID, msg.Sender, msg.MemberID,
		msg.MessageType, msg.MessageBody, msg.DisplayBody, msg.Destination, msg.Event, msg.ReceivedAt,
		msg.CallbackData, msg.RawContent, msg.RawReport, msg.CreatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error inserting inbound message", "channel", msg.Channel, "provider_message_id", msg.ProviderMessageID, "error", err)
		return fmt.Errorf("inserting inbound message %s: %w", msg.ProviderMessageID, err)
	}
	return nil
}

func (r *PgInboundRepository) ListByMember(ctx context.Context, channel domain.Channel, memberID int64) ([]domain.InboundMessage, error) {
	query := `SELECT ` + inboundColumns + ` FROM inbound_messages
		WHERE channel = $1 AND member_id = $2 ORDER BY created_at DESC`
	return r.list(ctx, query, channel.String(), memberID)
}

// ListUnresolved returns rows without a member, oldest first.
func (r *PgInboundRepository) ListUnresolved(ctx context.Context, channel domain.Channel) ([]domain.InboundMessage, error) {
	query := `SELECT ` + inboundColumns + ` FROM inbound_messages
		WHERE channel = $1 AND member_id IS NULL ORDER BY created_at ASC`
	return r.list(ctx, query, channel.String())
}

func (r *PgInboundRepository) ListAll(ctx context.Context, channel domain.Channel) ([]domain.InboundMessage, error) {
	query := `SELECT ` + inboundColumns + ` FROM inbound_messages
		WHERE channel = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, channel.String())
}

func (r *PgInboundRepository) AssignMember(ctx context.Context, id uuid.UUID, memberID int64) error {
	query := `UPDATE inbound_messages SET member_id = $1 WHERE id = $2`
	cmdTag, err := r.db.Exec(ctx, query, memberID, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error assigning member to inbound message", "id", id, "member_id", memberID, "error", err)
		return fmt.Errorf("assigning member %d to inbound message %s: %w", memberID, id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("assigning member %d to inbound message %s: %w", memberID, id, pgx.ErrNoRows)
	}
	return nil
}

func (r *PgInboundRepository) list(ctx context.Context, query string, args ...any) ([]domain.InboundMessage, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing inbound messages", "error", err)
		return nil, fmt.Errorf("listing inbound messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.InboundMessage
	for rows.Next() {
		msg, err := scanInbound(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning inbound message: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inbound messages: %w", err)
	}
	return messages, nil
}
