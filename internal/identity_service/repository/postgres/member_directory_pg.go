package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Code67TechSolutions/infobip-scripts/internal/identity_service/domain"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/database"
)

// PgMemberDirectory reads the members table. It never writes to it.
type PgMemberDirectory struct {
	db     database.Querier
	logger *slog.Logger
}

func NewPgMemberDirectory(db database.Querier, logger *slog.Logger) *PgMemberDirectory {
	return &PgMemberDirectory{db: db, logger: logger.With("component", "member_directory_pg")}
}

func (d *PgMemberDirectory) Snapshot(ctx context.Context) ([]domain.Member, error) {
	query := `SELECT member_id, work_number, mobile_number, whatsapp_number FROM members ORDER BY member_id ASC`
	d.logger.DebugContext(ctx, "Loading member snapshot", "query", query)

	rows, err := d.db.Query(ctx, query)
	if err != nil {
		d.logger.ErrorContext(ctx, "Error loading member snapshot", "error", err)
		return nil, fmt.Errorf("loading member snapshot: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.WorkNumber, &m.MobileNumber, &m.WhatsAppNumber); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating members: %w", err)
	}
	return members, nil
}
