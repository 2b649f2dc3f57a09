package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/database"
)

type PgConversationRepository struct {
	db     database.Querier
	logger *slog.Logger
}

func NewPgConversationRepository(db database.Querier, logger *slog.Logger) *PgConversationRepository {
	return &PgConversationRepository{db: db, logger: logger.With("component", "conversation_repository_pg")}
}

// ConversationHistory merges inbound and outbound rows of one channel. A null $2 selects all members.
func (r *PgConversationRepository) ConversationHistory(ctx context.Context, channel domain.Channel, memberID sql.NullInt64) ([]domain.ConversationEntry, error) {
	table, err := outboundTable(channel)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT message, ts, member_id, destination, status, seen_at, direction FROM (
			SELECT display_body AS message, COALESCE(received_at, created_at) AS ts, member_id,
				destination, NULL::text AS status, NULL::timestamptz AS seen_at, 'inbound' AS direction
			FROM inbound_messages
			WHERE channel = $1 AND ($2::bigint IS NULL OR member_id = $2)
			UNION ALL
			SELECT body AS message, created_at AS ts, member_id,
				destination, status_name AS status, seen_at, 'outbound' AS direction
			FROM %s
			WHERE ($2::bigint IS NULL OR member_id = $2)
		) history
		ORDER BY ts DESC`, table)

	rows, err := r.db.Query(ctx, query, channel.String(), memberID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error loading conversation history", "channel", channel, "member_id", memberID, "error", err)
		return nil, fmt.Errorf("loading %s conversation history: %w", channel, err)
	}
	defer rows.Close()

	var entries []domain.ConversationEntry
	for rows.Next() {
		var e domain.ConversationEntry
		var direction string
		if err := rows.Scan(&e.Message, &e.Timestamp, &e.MemberID, &e.Destination, &e.Status, &e.SeenAt, &direction); err != nil {
			return nil, fmt.Errorf("scanning conversation entry: %w", err)
		}
		e.Direction = domain.Direction(direction)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversation history: %w", err)
	}
	return entries, nil
}
