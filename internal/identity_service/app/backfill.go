package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Code67TechSolutions/infobip-scripts/internal/identity_service/domain"
	ledgerdomain "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/database"
)

// InboundRepoFactory binds an inbound repository to a pool or transaction.
type InboundRepoFactory func(db database.Querier) ledgerdomain.InboundRepository

// DirectoryFactory binds a member directory to a pool or transaction.
type DirectoryFactory func(db database.Querier) domain.MemberDirectory

// BackfillResult summarises one run.
type BackfillResult struct {
	Scanned  int `json:"scanned"`
	Resolved int `json:"resolved"`
}

// Backfiller assigns members to unresolved inbound messages using StrictMatch.
// A run is a single transaction; any failure leaves no row changed.
type Backfiller struct {
	db          database.TxBeginner
	inboundRepo InboundRepoFactory
	directory   DirectoryFactory
	logger      *slog.Logger
}

func NewBackfiller(db database.TxBeginner, inboundRepo InboundRepoFactory, directory DirectoryFactory, logger *slog.Logger) *Backfiller {
	return &Backfiller{
		db:          db,
		inboundRepo: inboundRepo,
		directory:   directory,
		logger:      logger.With("component", "member_backfill"),
	}
}

// Run resolves every unresolved inbound message of channel. Rows that already carry a
// member are never read, so a second run changes nothing.
func (b *Backfiller) Run(ctx context.Context, channel ledgerdomain.Channel) (*BackfillResult, error) {
	start := time.Now()
	defer func() { backfillRunDurationHist.Observe(time.Since(start).Seconds()) }()

	tx, err := b.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting backfill transaction: %w", err)
	}

	result, err := b.run(ctx, tx, channel)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			b.logger.ErrorContext(ctx, "Failed to roll back backfill", "error", rbErr)
		}
		b.logger.ErrorContext(ctx, "Backfill aborted", "channel", channel, "error", err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing backfill: %w", err)
	}

	b.logger.InfoContext(ctx, "Backfill completed", "channel", channel, "scanned", result.Scanned, "resolved", result.Resolved)
	return result, nil
}

func (b *Backfiller) run(ctx context.Context, tx database.Querier, channel ledgerdomain.Channel) (*BackfillResult, error) {
	inbound := b.inboundRepo(tx)

	unresolved, err := inbound.ListUnresolved(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("loading unresolved inbound messages: %w", err)
	}
	result := &BackfillResult{Scanned: len(unresolved)}
	if len(unresolved) == 0 {
		return result, nil
	}

	members, err := b.directory(tx).Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading member snapshot: %w", err)
	}

	for _, msg := range unresolved {
		member, ok := domain.Resolve(msg.Sender, members, domain.StrictMatch)
		if !ok {
			senderResolutionsCounter.WithLabelValues("strict", "unmatched").Inc()
			continue
		}
		if err := inbound.AssignMember(ctx, msg.ID, member.ID); err != nil {
			senderResolutionsCounter.WithLabelValues("strict", "error").Inc()
			return nil, err
		}
		senderResolutionsCounter.WithLabelValues("strict", "matched").Inc()
		result.Resolved++
	}
	return result, nil
}
