package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgMemberDirectory_Snapshot(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()
	dir := NewPgMemberDirectory(mockPool, slog.New(slog.NewTextHandler(io.Discard, nil)))

	query := `SELECT member_id, work_number, mobile_number, whatsapp_number FROM members ORDER BY member_id ASC`

	t.Run("Success", func(t *testing.T) {
		rows := mockPool.NewRows([]string{"member_id", "work_number", "mobile_number", "whatsapp_number"}).
			AddRow(int64(1), sql.NullString{}, sql.NullString{String: "15550000001", Valid: true}, sql.NullString{}).
			AddRow(int64(2), sql.NullString{String: "15550000002", Valid: true}, sql.NullString{}, sql.NullString{String: "15550000003", Valid: true})
		mockPool.ExpectQuery(query).WillReturnRows(rows)

		members, err := dir.Snapshot(context.Background())
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, int64(1), members[0].ID)
		assert.Equal(t, "15550000001", members[0].MobileNumber.String)
		assert.False(t, members[0].WorkNumber.Valid)
		assert.Equal(t, "15550000003", members[1].WhatsAppNumber.String)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		mockPool.ExpectQuery(query).WillReturnError(errors.New("relation \"members\" does not exist"))

		members, err := dir.Snapshot(context.Background())
		require.Error(t, err)
		assert.Nil(t, members)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
