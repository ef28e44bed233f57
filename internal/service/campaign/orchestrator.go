// Package campaign implements the Campaign Orchestrator: the compliance
// gated per-recipient dispatch pipeline (spec §4.10) that turns a RUNNING
// Campaign into a stream of Messages.
//
//	consent -> quiet hours -> rate limit -> render -> materialize -> dispatch -> reconcile
//
// The first three gates live here; render/materialize/dispatch/reconcile
// are MessageSender's job. Recipients are never loaded into memory as a
// whole list: the Orchestrator drives a UserCursor one row at a time so a
// segment of any size has bounded memory cost.
package campaign

import (
	"context"
	"time"

	"github.com/Notifuse/notifuse/internal/domain"
	"github.com/Notifuse/notifuse/pkg/logger"
	"github.com/Notifuse/notifuse/pkg/ratelimiter"
)

//go:generate mockgen -destination=./mocks/mock_orchestrator.go -package=mocks github.com/Notifuse/notifuse/internal/service/campaign Orchestrator

// Orchestrator runs a single campaign to completion.
type Orchestrator interface {
	// Process drives campaignID's recipients through the compliance
	// pipeline. The campaign must already be RUNNING (the caller, the
	// scheduler or the trigger handler, owns the READY->RUNNING
	// transition so two dispatchers never race on the same campaign).
	Process(ctx context.Context, campaignID string) (*domain.CampaignResult, error)
}

type orchestrator struct {
	campaignRepo     domain.CampaignRepository
	recipientFetcher RecipientFetcher
	templateLoader   TemplateLoader
	messageSender    MessageSender
	progressTracker  ProgressTracker
	rateLimiter      ratelimiter.Limiter
	timeProvider     TimeProvider
	sleeper          Sleeper
	config           *Config
	logger           logger.Logger
}

// NewOrchestrator creates a new campaign Orchestrator. sleeper may be nil,
// in which case the rate-limit gate's retry backoff waits out a real
// wall-clock second.
func NewOrchestrator(
	campaignRepo domain.CampaignRepository,
	recipientFetcher RecipientFetcher,
	templateLoader TemplateLoader,
	messageSender MessageSender,
	progressTracker ProgressTracker,
	rateLimiter ratelimiter.Limiter,
	timeProvider TimeProvider,
	sleeper Sleeper,
	config *Config,
	log logger.Logger,
) Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	if timeProvider == nil {
		timeProvider = NewRealTimeProvider()
	}
	if sleeper == nil {
		sleeper = NewRealSleeper()
	}
	return &orchestrator{
		campaignRepo:     campaignRepo,
		recipientFetcher: recipientFetcher,
		templateLoader:   templateLoader,
		messageSender:    messageSender,
		progressTracker:  progressTracker,
		rateLimiter:      rateLimiter,
		timeProvider:     timeProvider,
		sleeper:          sleeper,
		config:           config,
		logger:           log,
	}
}

func (o *orchestrator) Process(ctx context.Context, campaignID string) (*domain.CampaignResult, error) {
	campaign, err := o.campaignRepo.GetCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, NewCampaignErrorWithID(ErrCodeCampaignNotFound, "campaign not found", campaignID, false, err)
	}
	if campaign.Status != domain.CampaignStatusRunning {
		return nil, NewCampaignErrorWithID(ErrCodeCampaignInvalid, "campaign is not RUNNING", campaignID, false, nil)
	}

	template, err := o.templateLoader.LoadTemplate(ctx, campaign.TemplateID)
	if err != nil {
		o.failCampaign(ctx, campaign.ID)
		return nil, err
	}
	if err := o.templateLoader.ValidateTemplate(template); err != nil {
		o.failCampaign(ctx, campaign.ID)
		return nil, err
	}

	total, err := o.recipientFetcher.CountRecipients(ctx, campaign.SegmentID)
	if err != nil {
		o.failCampaign(ctx, campaign.ID)
		return nil, err
	}
	o.progressTracker.Reset(campaign.ID, total)

	runCtx := ctx
	var cancel context.CancelFunc
	if o.config.MaxProcessTime > 0 {
		runCtx, cancel = context.WithTimeout(ctx, o.config.MaxProcessTime)
		defer cancel()
	}

	cursor, err := o.recipientFetcher.OpenStream(runCtx, campaign.SegmentID)
	if err != nil {
		o.failCampaign(ctx, campaign.ID)
		return nil, err
	}
	defer cursor.Close()

	for cursor.Next(runCtx) {
		o.processRecipient(runCtx, campaign, template, cursor.User())
		o.progressTracker.MaybeLogProgress()
	}

	if err := cursor.Err(); err != nil {
		o.logger.WithFields(map[string]interface{}{
			"campaign_id": campaign.ID,
			"error":       err.Error(),
		}).Error("recipient stream ended with an error")
		o.failCampaign(ctx, campaign.ID)
		return o.progressTracker.Result(), NewCampaignErrorWithID(ErrCodeRecipientStream, "recipient stream failed", campaign.ID, true, err)
	}
	if runCtx.Err() != nil {
		o.logger.WithField("campaign_id", campaign.ID).Warn("campaign exceeded its max process time")
		o.failCampaign(ctx, campaign.ID)
		return o.progressTracker.Result(), NewCampaignErrorWithID(ErrCodeTransitionFailed, "campaign exceeded max process time", campaign.ID, true, runCtx.Err())
	}

	applied, err := o.campaignRepo.TransitionStatus(ctx, campaign.ID, domain.CampaignStatusRunning, domain.CampaignStatusCompleted)
	if err != nil {
		return o.progressTracker.Result(), NewCampaignErrorWithID(ErrCodeTransitionFailed, "failed to mark campaign completed", campaign.ID, true, err)
	}
	if !applied {
		o.logger.WithField("campaign_id", campaign.ID).Warn("campaign was no longer RUNNING when completion was recorded")
	}

	return o.progressTracker.Result(), nil
}

// processRecipient runs one User through the consent, quiet-hours, and
// rate-limit gates, then hands off to MessageSender for the rest of the
// pipeline. It never returns an error: every outcome is folded into the
// ProgressTracker's counters instead, since one recipient's failure must
// never abort the run for the rest of the segment.
func (o *orchestrator) processRecipient(ctx context.Context, c *domain.Campaign, template *domain.Template, user *domain.User) {
	if user.ConsentState != domain.ConsentStateOptIn {
		o.progressTracker.RecordSkip(SkipReasonOptOut)
		return
	}

	if c.QuietHours != nil {
		loc := o.resolveLocation(user)
		if c.QuietHours.Contains(o.timeProvider.Now(), loc) {
			o.progressTracker.RecordSkip(SkipReasonQuietHours)
			return
		}
	}

	if !o.admitRateLimit(ctx, c) {
		o.progressTracker.RecordSkip(SkipReasonRateLimit)
		return
	}

	result := o.messageSender.SendToRecipient(ctx, c.ID, template.Channel, user, template)
	switch result.Outcome {
	case GateOk:
		o.progressTracker.RecordSent()
	case GateSkip:
		o.progressTracker.RecordSkip(result.Reason)
	case GateFail:
		o.progressTracker.RecordFailed()
		o.logger.WithFields(map[string]interface{}{
			"campaign_id": c.ID,
			"phone":       user.Phone,
			"error":       result.Err.Error(),
		}).Error("dispatch failed")
	}
}

// admitRateLimit calls the rate limiter's try_admit once; on denial it
// backs off until the next one-second wall-clock boundary and retries
// exactly once before giving up, per the rate-limit gate's retry policy.
func (o *orchestrator) admitRateLimit(ctx context.Context, c *domain.Campaign) bool {
	allowed, rlErr := o.rateLimiter.Allow(ctx, c.ID, c.RateLimitPerSec)
	if rlErr != nil {
		o.logger.WithFields(map[string]interface{}{
			"campaign_id": c.ID,
			"error":       rlErr.Error(),
		}).Error("rate limiter error, failing open")
	}
	if allowed {
		return true
	}

	o.sleeper.SleepUntilNextSecond(ctx, o.timeProvider.Now())

	allowed, rlErr = o.rateLimiter.Allow(ctx, c.ID, c.RateLimitPerSec)
	if rlErr != nil {
		o.logger.WithFields(map[string]interface{}{
			"campaign_id": c.ID,
			"error":       rlErr.Error(),
		}).Error("rate limiter error on retry, failing open")
	}
	return allowed
}

// resolveLocation picks the IANA zone to evaluate quiet hours in: the
// User's own "timezone" attribute when present and valid, else the
// orchestrator's configured default, else UTC (spec.md §9 Open Question
// decision, see DESIGN.md).
func (o *orchestrator) resolveLocation(user *domain.User) *time.Location {
	if tz, ok := user.Attribute("timezone"); ok {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	if o.config.DefaultTimezone != "" {
		if loc, err := time.LoadLocation(o.config.DefaultTimezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

func (o *orchestrator) failCampaign(ctx context.Context, campaignID string) {
	if _, err := o.campaignRepo.TransitionStatus(ctx, campaignID, domain.CampaignStatusRunning, domain.CampaignStatusFailed); err != nil {
		o.logger.WithFields(map[string]interface{}{
			"campaign_id": campaignID,
			"error":       err.Error(),
		}).Error("failed to mark campaign as FAILED")
	}
}
