package postgres

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
)

func TestPgConversationRepository_ConversationHistory(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()
	repo := NewPgConversationRepository(mockPool, slog.New(slog.NewTextHandler(io.Discard, nil)))

	member := sql.NullInt64{Int64: 5, Valid: true}
	newer := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	cols := []string{"message", "ts", "member_id", "destination", "status", "seen_at", "direction"}
	rows := mockPool.NewRows(cols).
		AddRow("thanks", newer, member, "447860099299", sql.NullString{}, sql.NullTime{}, "inbound").
		AddRow("welcome_template", older, member, "15551234567", sql.NullString{String: "DELIVERED", Valid: true}, sql.NullTime{Time: older, Valid: true}, "outbound")

	mockPool.ExpectQuery(`UNION ALL .* FROM whatsapp_messages_outbound`).
		WithArgs("WHATSAPP", member).
		WillReturnRows(rows)

	entries, err := repo.ConversationHistory(context.Background(), domain.ChannelWhatsApp, member)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.DirectionInbound, entries[0].Direction)
	assert.Equal(t, "thanks", entries[0].Message)
	assert.Equal(t, domain.DirectionOutbound, entries[1].Direction)
	assert.Equal(t, "DELIVERED", entries[1].Status.String)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgConversationRepository_UnknownChannel(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()
	repo := NewPgConversationRepository(mockPool, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err = repo.ConversationHistory(context.Background(), domain.Channel("FAX"), sql.NullInt64{})
	assert.ErrorIs(t, err, domain.ErrUnknownChannel)
}
