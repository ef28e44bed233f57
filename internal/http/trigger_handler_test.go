package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Notifuse/notifuse/internal/domain"
	domainmocks "github.com/Notifuse/notifuse/internal/domain/mocks"
	"github.com/Notifuse/notifuse/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncDispatcher struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
	err   error
}

func (d *syncDispatcher) Process(ctx context.Context, campaignID string) (*domain.CampaignResult, error) {
	d.mu.Lock()
	d.calls = append(d.calls, campaignID)
	d.mu.Unlock()
	if d.done != nil {
		close(d.done)
	}
	if d.err != nil {
		return nil, d.err
	}
	return &domain.CampaignResult{CampaignID: campaignID, TotalRecipients: 3, Sent: 3}, nil
}

func newTriggerRouter(repo domain.CampaignRepository, dispatcher *syncDispatcher) chi.Router {
	h := NewTriggerHandler(repo, dispatcher, logger.NewLogger())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestTriggerHandler_TriggersReadyCampaign(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := domainmocks.NewMockCampaignRepository(ctrl)
	repo.EXPECT().GetCampaignByID(gomock.Any(), "c1").
		Return(&domain.Campaign{ID: "c1", Status: domain.CampaignStatusReady}, nil)
	repo.EXPECT().TransitionStatus(gomock.Any(), "c1", domain.CampaignStatusReady, domain.CampaignStatusRunning).
		Return(true, nil)

	dispatcher := &syncDispatcher{done: make(chan struct{})}
	r := newTriggerRouter(repo, dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/campaigns/c1/trigger", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)

	select {
	case <-dispatcher.done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher.Process was never called")
	}
}

func TestTriggerHandler_RejectsNonReadyCampaign(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := domainmocks.NewMockCampaignRepository(ctrl)
	repo.EXPECT().GetCampaignByID(gomock.Any(), "c1").
		Return(&domain.Campaign{ID: "c1", Status: domain.CampaignStatusRunning}, nil)

	dispatcher := &syncDispatcher{}
	r := newTriggerRouter(repo, dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/campaigns/c1/trigger", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestTriggerHandler_CampaignNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := domainmocks.NewMockCampaignRepository(ctrl)
	repo.EXPECT().GetCampaignByID(gomock.Any(), "missing").
		Return(nil, &domain.NotFoundError{Entity: "Campaign", ID: "missing"})

	dispatcher := &syncDispatcher{}
	r := newTriggerRouter(repo, dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/campaigns/missing/trigger", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTriggerHandler_LostRaceReturnsConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := domainmocks.NewMockCampaignRepository(ctrl)
	repo.EXPECT().GetCampaignByID(gomock.Any(), "c1").
		Return(&domain.Campaign{ID: "c1", Status: domain.CampaignStatusReady}, nil)
	repo.EXPECT().TransitionStatus(gomock.Any(), "c1", domain.CampaignStatusReady, domain.CampaignStatusRunning).
		Return(false, nil)

	dispatcher := &syncDispatcher{}
	r := newTriggerRouter(repo, dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/campaigns/c1/trigger", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	require.Empty(t, dispatcher.calls)
}
