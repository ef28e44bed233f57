package campaign

import (
	"fmt"
	"sync"
	"time"

	"github.com/Notifuse/notifuse/internal/domain"
	"github.com/Notifuse/notifuse/pkg/logger"
)

// ProgressTracker accumulates the per-reason skip counters, sent, and
// failed counts for one campaign run and periodically logs progress.
//
//go:generate mockgen -destination=./mocks/mock_progress_tracker.go -package=mocks github.com/Notifuse/notifuse/internal/service/campaign ProgressTracker
type ProgressTracker interface {
	// Reset (re)initializes the tracker for a new run against campaignID
	// with totalRecipients already known (0 if unknown up front).
	Reset(campaignID string, totalRecipients int)

	// RecordSkip increments the skip counter for reason.
	RecordSkip(reason SkipReason)

	// RecordSent increments the sent count.
	RecordSent()

	// RecordFailed increments the failed count.
	RecordFailed()

	// MaybeLogProgress logs a progress line if ProgressLogInterval has
	// elapsed since the last one.
	MaybeLogProgress()

	// Result returns the CampaignResult accumulated so far.
	Result() *domain.CampaignResult
}

type progressTracker struct {
	logger logger.Logger
	config *Config

	mu          sync.Mutex
	campaignID  string
	total       int
	skipped     domain.SkipCounters
	sent        int
	failed      int
	startTime   time.Time
	lastLogTime time.Time
}

// NewProgressTracker creates a new progress tracker.
func NewProgressTracker(log logger.Logger, config *Config) ProgressTracker {
	if config == nil {
		config = DefaultConfig()
	}
	return &progressTracker{logger: log, config: config}
}

func (t *progressTracker) Reset(campaignID string, totalRecipients int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.campaignID = campaignID
	t.total = totalRecipients
	t.skipped = domain.SkipCounters{}
	t.sent = 0
	t.failed = 0
	t.startTime = time.Now()
	t.lastLogTime = time.Now()
}

func (t *progressTracker) RecordSkip(reason SkipReason) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch reason {
	case SkipReasonOptOut:
		t.skipped.OptOut++
	case SkipReasonQuietHours:
		t.skipped.QuietHours++
	case SkipReasonRateLimit:
		t.skipped.RateLimit++
	case SkipReasonMissingTemplateData:
		t.skipped.MissingTemplateData++
	case SkipReasonDuplicate:
		t.skipped.Duplicate++
	}
}

func (t *progressTracker) RecordSent() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent++
}

func (t *progressTracker) RecordFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed++
}

func (t *progressTracker) MaybeLogProgress() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if time.Since(t.lastLogTime) < t.config.ProgressLogInterval {
		return
	}
	processed := t.sent + t.failed + t.skipped.OptOut + t.skipped.QuietHours +
		t.skipped.RateLimit + t.skipped.MissingTemplateData + t.skipped.Duplicate

	t.logger.WithFields(map[string]interface{}{
		"campaign_id": t.campaignID,
		"processed":   processed,
		"total":       t.total,
		"sent":        t.sent,
		"failed":      t.failed,
		"elapsed":     time.Since(t.startTime).String(),
	}).Info(fmt.Sprintf("campaign progress: %d/%d processed", processed, t.total))

	t.lastLogTime = time.Now()
}

func (t *progressTracker) Result() *domain.CampaignResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	return &domain.CampaignResult{
		CampaignID:      t.campaignID,
		TotalRecipients: t.total,
		Skipped:         t.skipped,
		Sent:            t.sent,
		Failed:          t.failed,
	}
}
