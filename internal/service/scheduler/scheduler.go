// Package scheduler drives the READY -> RUNNING transition: a ticking sweep
// finds campaigns whose schedule_time has arrived and hands each one to a
// CampaignDispatcher, bounding how many run at once so a burst of scheduled
// campaigns can't overwhelm the provider or the database.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/Notifuse/notifuse/internal/domain"
	"github.com/Notifuse/notifuse/pkg/logger"
)

// CampaignDispatcher runs one campaign's compliance-gated dispatch pipeline
// to completion. internal/service/campaign.Orchestrator satisfies this.
type CampaignDispatcher interface {
	Process(ctx context.Context, campaignID string) (*domain.CampaignResult, error)
}

// Scheduler periodically claims READY campaigns that are due and dispatches
// them.
type Scheduler struct {
	campaignRepo domain.CampaignRepository
	dispatcher   CampaignDispatcher
	logger       logger.Logger
	config       *Config

	stopChan    chan struct{}
	stoppedChan chan struct{}
	mu          sync.Mutex
	running     bool
}

// New creates a new Scheduler.
func New(campaignRepo domain.CampaignRepository, dispatcher CampaignDispatcher, log logger.Logger, config *Config) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Scheduler{
		campaignRepo: campaignRepo,
		dispatcher:   dispatcher,
		logger:       log,
		config:       config,
		stopChan:     make(chan struct{}),
		stoppedChan:  make(chan struct{}),
	}
}

// Start begins the sweep loop in a background goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("campaign scheduler already running")
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.WithField("poll_interval", s.config.PollInterval).
		WithField("batch_size", s.config.BatchSize).
		Info("starting campaign scheduler")

	go s.run(ctx)
}

// Stop gracefully stops the sweep loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("stopping campaign scheduler...")
	close(s.stopChan)

	select {
	case <-s.stoppedChan:
		s.logger.Info("campaign scheduler stopped")
	case <-time.After(5 * time.Second):
		s.logger.Warn("campaign scheduler stop timeout exceeded")
	}
}

// IsRunning returns whether the scheduler's sweep loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.stoppedChan)
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep claims up to BatchSize due campaigns and dispatches each one
// concurrently, bounded by MaxConcurrent.
func (s *Scheduler) sweep(ctx context.Context) {
	due, err := s.campaignRepo.DueForScheduling(ctx, time.Now())
	if err != nil {
		s.logger.WithField("error", err.Error()).Error("failed to list due campaigns")
		return
	}
	if len(due) > s.config.BatchSize {
		due = due[:s.config.BatchSize]
	}
	if len(due) == 0 {
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, s.config.MaxConcurrent)

	for _, c := range due {
		select {
		case <-ctx.Done():
			return
		default:
		}

		semaphore <- struct{}{}
		wg.Add(1)
		go func(campaign *domain.Campaign) {
			defer wg.Done()
			defer func() { <-semaphore }()
			s.dispatch(ctx, campaign)
		}(c)
	}

	wg.Wait()
}

// dispatch transitions one campaign to RUNNING and hands it to the
// dispatcher. The transition is compare-and-swap (from=READY), so two
// scheduler instances racing on the same campaign will only have one of
// them win the dispatch.
func (s *Scheduler) dispatch(ctx context.Context, c *domain.Campaign) {
	applied, err := s.campaignRepo.TransitionStatus(ctx, c.ID, domain.CampaignStatusReady, domain.CampaignStatusRunning)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"campaign_id": c.ID,
			"error":       err.Error(),
		}).Error("failed to transition campaign to RUNNING")
		return
	}
	if !applied {
		s.logger.WithField("campaign_id", c.ID).Debug("campaign already claimed by another scheduler tick")
		return
	}

	s.logger.WithField("campaign_id", c.ID).Info("dispatching campaign")

	result, err := s.dispatcher.Process(ctx, c.ID)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"campaign_id": c.ID,
			"error":       err.Error(),
		}).Error("campaign dispatch failed")
		return
	}

	s.logger.WithFields(map[string]interface{}{
		"campaign_id": c.ID,
		"sent":        result.Sent,
		"failed":      result.Failed,
		"total":       result.TotalRecipients,
	}).Info("campaign dispatch completed")
}
