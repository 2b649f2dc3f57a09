package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Code67TechSolutions/infobip-scripts/internal/identity_service/domain"
)

const snapshotKey = "identity:members:snapshot"

// snapshotStore is the part of redis.UniversalClient the cache uses.
type snapshotStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type cachedMember struct {
	ID             int64   `json:"id"`
	WorkNumber     *string `json:"work_number,omitempty"`
	MobileNumber   *string `json:"mobile_number,omitempty"`
	WhatsAppNumber *string `json:"whatsapp_number,omitempty"`
}

// CachedMemberDirectory serves member snapshots from redis and falls back to the
// wrapped directory on a miss or any redis failure.
type CachedMemberDirectory struct {
	store  snapshotStore
	next   domain.MemberDirectory
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedMemberDirectory(store snapshotStore, next domain.MemberDirectory, ttl time.Duration, logger *slog.Logger) *CachedMemberDirectory {
	return &CachedMemberDirectory{
		store:  store,
		next:   next,
		ttl:    ttl,
		logger: logger.With("component", "member_cache"),
	}
}

func (c *CachedMemberDirectory) Snapshot(ctx context.Context) ([]domain.Member, error) {
	payload, err := c.store.Get(ctx, snapshotKey).Bytes()
	switch {
	case err == nil:
		var cached []cachedMember
		if err := json.Unmarshal(payload, &cached); err == nil {
			return fromCache(cached), nil
		}
		c.logger.WarnContext(ctx, "Discarding unreadable member snapshot from cache", "error", err)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WarnContext(ctx, "Member cache unavailable, reading directory", "error", err)
	}

	members, err := c.next.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(toCache(members))
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to encode member snapshot", "error", err)
		return members, nil
	}
	if err := c.store.Set(ctx, snapshotKey, encoded, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Failed to store member snapshot in cache", "error", err)
	}
	return members, nil
}

func toCache(members []domain.Member) []cachedMember {
	out := make([]cachedMember, 0, len(members))
	for _, m := range members {
		out = append(out, cachedMember{
			ID:             m.ID,
			WorkNumber:     ptr(m.WorkNumber),
			MobileNumber:   ptr(m.MobileNumber),
			WhatsAppNumber: ptr(m.WhatsAppNumber),
		})
	}
	return out
}

func fromCache(cached []cachedMember) []domain.Member {
	out := make([]domain.Member, 0, len(cached))
	for _, m := range cached {
		out = append(out, domain.Member{
			ID:             m.ID,
			WorkNumber:     null(m.WorkNumber),
			MobileNumber:   null(m.MobileNumber),
			WhatsAppNumber: null(m.WhatsAppNumber),
		})
	}
	return out
}

func ptr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func null(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
