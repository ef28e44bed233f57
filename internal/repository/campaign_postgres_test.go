package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Notifuse/notifuse/internal/domain"
	"github.com/Notifuse/notifuse/internal/repository/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func campaignColumns() []string {
	return []string{
		"id", "topic", "template_id", "segment_id", "status", "rate_limit_per_second",
		"quiet_hours_start", "quiet_hours_end", "schedule_time", "created_at", "updated_at",
	}
}

func TestCampaignRepository_GetCampaignByID(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewCampaignRepository(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(campaignColumns()).
		AddRow("camp_1", "fall-sale", "tmpl_1", "seg_1", "READY", 10, "22:00", "08:00", nil, now, now)
	mock.ExpectQuery("SELECT (.+) FROM campaigns").WillReturnRows(rows)

	c, err := repo.GetCampaignByID(context.Background(), "camp_1")
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignStatusReady, c.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepository_GetCampaignByID_NotFound(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewCampaignRepository(db)
	mock.ExpectQuery("SELECT (.+) FROM campaigns").WillReturnRows(sqlmock.NewRows(campaignColumns()))

	_, err := repo.GetCampaignByID(context.Background(), "camp_missing")
	require.Error(t, err)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCampaignRepository_TransitionStatus_Applied(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewCampaignRepository(db)
	mock.ExpectExec("UPDATE campaigns").WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.TransitionStatus(context.Background(), "camp_1", domain.CampaignStatusReady, domain.CampaignStatusRunning)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepository_TransitionStatus_LostRace(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewCampaignRepository(db)
	mock.ExpectExec("UPDATE campaigns").WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.TransitionStatus(context.Background(), "camp_1", domain.CampaignStatusReady, domain.CampaignStatusRunning)
	require.NoError(t, err)
	assert.False(t, applied, "a second scheduler instance must observe rowsAffected == 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepository_DueForScheduling(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewCampaignRepository(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(campaignColumns()).
		AddRow("camp_1", "fall-sale", "tmpl_1", "seg_1", "READY", 10, "22:00", "08:00", nil, now, now)
	mock.ExpectQuery("SELECT (.+) FROM campaigns").WillReturnRows(rows)

	campaigns, err := repo.DueForScheduling(context.Background(), now)
	require.NoError(t, err)
	assert.Len(t, campaigns, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
