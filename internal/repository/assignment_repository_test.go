package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandloop/creator-campaigns/internal/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestAcknowledgeRepeatIsANoOp(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepo(db)

	// MySQL reports zero affected rows when nothing changes, which is what a
	// second acknowledge in the same second looks like. The ledger row exists,
	// so the call must still succeed.
	mock.ExpectExec("UPDATE campaign_creators SET ack_status=").
		WithArgs(model.AckAcknowledged, uint64(3), uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM campaign_creators WHERE").
		WithArgs(uint64(3), uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	require.NoError(t, repo.Acknowledge(context.Background(), 3, 11, model.AckAcknowledged))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcknowledgeWithoutLedgerRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRepo(db)

	mock.ExpectExec("UPDATE campaign_creators SET ack_status=").
		WithArgs(model.AckDeclined, uint64(3), uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM campaign_creators WHERE").
		WithArgs(uint64(3), uint64(99)).
		WillReturnError(sql.ErrNoRows)

	err := repo.Acknowledge(context.Background(), 3, 99, model.AckDeclined)
	assert.ErrorIs(t, err, ErrNotAssigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}
