package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Notifuse/notifuse/internal/domain"
	"github.com/Notifuse/notifuse/internal/repository/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboundEventRepository_InsertRaw(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewInboundEventRepository(db)
	mock.ExpectExec("INSERT INTO inbound_events").WillReturnResult(sqlmock.NewResult(1, 1))

	e := &domain.InboundEvent{ID: "evt_1", Phone: "+14155552671", Body: "STOP", RawPayload: domain.MapOfAny{"From": "+14155552671"}}
	require.NoError(t, repo.InsertRaw(context.Background(), e))
	assert.False(t, e.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInboundEventRepository_MarkProcessed(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewInboundEventRepository(db)
	mock.ExpectExec("UPDATE inbound_events").WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.MarkProcessed(context.Background(), "evt_1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
