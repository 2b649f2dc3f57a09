package domain

import (
	"context"
	"database/sql"
)

// Member is a row of the external member directory. Any of the numbers may be null.
type Member struct {
	ID             int64
	WorkNumber     sql.NullString
	MobileNumber   sql.NullString
	WhatsAppNumber sql.NullString
}

// MemberDirectory returns every member in ascending member id order.
// The order makes "first match wins" deterministic.
type MemberDirectory interface {
	Snapshot(ctx context.Context) ([]Member, error)
}
