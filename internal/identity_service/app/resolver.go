package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Code67TechSolutions/infobip-scripts/internal/identity_service/domain"
)

// Resolver maps live inbound senders to members using LooseMatch.
type Resolver struct {
	directory domain.MemberDirectory
	logger    *slog.Logger
}

func NewResolver(directory domain.MemberDirectory, logger *slog.Logger) *Resolver {
	return &Resolver{directory: directory, logger: logger.With("component", "identity_resolver")}
}

// ResolveSender returns the member id of sender, or an invalid NullInt64 when nobody matches.
// An unresolved sender is not an error.
func (r *Resolver) ResolveSender(ctx context.Context, sender string) (sql.NullInt64, error) {
	if sender == "" {
		senderResolutionsCounter.WithLabelValues("loose", "unmatched").Inc()
		return sql.NullInt64{}, nil
	}

	members, err := r.directory.Snapshot(ctx)
	if err != nil {
		senderResolutionsCounter.WithLabelValues("loose", "error").Inc()
		return sql.NullInt64{}, fmt.Errorf("resolving sender %s: %w", sender, err)
	}

	member, ok := domain.Resolve(sender, members, domain.LooseMatch)
	if !ok {
		senderResolutionsCounter.WithLabelValues("loose", "unmatched").Inc()
		r.logger.DebugContext(ctx, "Sender did not match any member", "sender", sender)
		return sql.NullInt64{}, nil
	}
	senderResolutionsCounter.WithLabelValues("loose", "matched").Inc()
	return sql.NullInt64{Int64: member.ID, Valid: true}, nil
}
