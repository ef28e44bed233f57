package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Notifuse/notifuse/internal/domain"
	domainmocks "github.com/Notifuse/notifuse/internal/domain/mocks"
	"github.com/Notifuse/notifuse/pkg/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logger.Logger {
	return logger.NewLogger()
}

// recordingDispatcher records which campaign IDs it was asked to process.
type recordingDispatcher struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (d *recordingDispatcher) Process(ctx context.Context, campaignID string) (*domain.CampaignResult, error) {
	d.mu.Lock()
	d.ids = append(d.ids, campaignID)
	d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	return &domain.CampaignResult{CampaignID: campaignID, Sent: 1}, nil
}

func (d *recordingDispatcher) calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.ids))
	copy(out, d.ids)
	return out
}

func TestScheduler_Sweep_DispatchesDueCampaigns(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := domainmocks.NewMockCampaignRepository(ctrl)
	repo.EXPECT().DueForScheduling(gomock.Any(), gomock.Any()).
		Return([]*domain.Campaign{{ID: "camp_1", Status: domain.CampaignStatusReady}}, nil)
	repo.EXPECT().TransitionStatus(gomock.Any(), "camp_1", domain.CampaignStatusReady, domain.CampaignStatusRunning).
		Return(true, nil)

	dispatcher := &recordingDispatcher{}
	s := New(repo, dispatcher, testLogger(), DefaultConfig())

	s.sweep(context.Background())

	assert.Equal(t, []string{"camp_1"}, dispatcher.calls())
}

func TestScheduler_Sweep_SkipsCampaignLostToAnotherSweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := domainmocks.NewMockCampaignRepository(ctrl)
	repo.EXPECT().DueForScheduling(gomock.Any(), gomock.Any()).
		Return([]*domain.Campaign{{ID: "camp_1", Status: domain.CampaignStatusReady}}, nil)
	repo.EXPECT().TransitionStatus(gomock.Any(), "camp_1", domain.CampaignStatusReady, domain.CampaignStatusRunning).
		Return(false, nil)

	dispatcher := &recordingDispatcher{}
	s := New(repo, dispatcher, testLogger(), DefaultConfig())

	s.sweep(context.Background())

	assert.Empty(t, dispatcher.calls(), "a lost compare-and-swap must not dispatch")
}

func TestScheduler_Sweep_NoDueCampaigns(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := domainmocks.NewMockCampaignRepository(ctrl)
	repo.EXPECT().DueForScheduling(gomock.Any(), gomock.Any()).Return(nil, nil)

	dispatcher := &recordingDispatcher{}
	s := New(repo, dispatcher, testLogger(), DefaultConfig())

	s.sweep(context.Background())

	assert.Empty(t, dispatcher.calls())
}

func TestScheduler_Sweep_TruncatesToBatchSize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := domainmocks.NewMockCampaignRepository(ctrl)
	due := []*domain.Campaign{
		{ID: "camp_1", Status: domain.CampaignStatusReady},
		{ID: "camp_2", Status: domain.CampaignStatusReady},
		{ID: "camp_3", Status: domain.CampaignStatusReady},
	}
	repo.EXPECT().DueForScheduling(gomock.Any(), gomock.Any()).Return(due, nil)
	repo.EXPECT().TransitionStatus(gomock.Any(), gomock.Any(), domain.CampaignStatusReady, domain.CampaignStatusRunning).
		Return(true, nil).Times(2)

	dispatcher := &recordingDispatcher{}
	config := &Config{PollInterval: time.Second, BatchSize: 2, MaxConcurrent: 2}
	s := New(repo, dispatcher, testLogger(), config)

	s.sweep(context.Background())

	assert.Len(t, dispatcher.calls(), 2)
}

func TestScheduler_StartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := domainmocks.NewMockCampaignRepository(ctrl)
	repo.EXPECT().DueForScheduling(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	dispatcher := &recordingDispatcher{}
	config := &Config{PollInterval: 10 * time.Millisecond, BatchSize: 5, MaxConcurrent: 2}
	s := New(repo, dispatcher, testLogger(), config)

	require.False(t, s.IsRunning())
	s.Start(context.Background())
	assert.True(t, s.IsRunning())

	s.Stop()
	assert.False(t, s.IsRunning())
}
