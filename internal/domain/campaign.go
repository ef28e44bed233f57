package domain

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_campaign_repository.go -package mocks github.com/Notifuse/notifuse/internal/domain CampaignRepository

// CampaignStatus is a node in the campaign state machine (spec §4.9):
//
//	DRAFT -> READY -> RUNNING -> COMPLETED
//	          ^          v
//	          +-- PAUSED -+
//	          ^          v
//	          +-- FAILED (terminal)
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "DRAFT"
	CampaignStatusReady     CampaignStatus = "READY"
	CampaignStatusRunning   CampaignStatus = "RUNNING"
	CampaignStatusCompleted CampaignStatus = "COMPLETED"
	CampaignStatusPaused    CampaignStatus = "PAUSED"
	CampaignStatusFailed    CampaignStatus = "FAILED"
)

// Validate checks that the status is one of the known values.
func (s CampaignStatus) Validate() error {
	switch s {
	case CampaignStatusDraft, CampaignStatusReady, CampaignStatusRunning,
		CampaignStatusCompleted, CampaignStatusPaused, CampaignStatusFailed:
		return nil
	}
	return fmt.Errorf("invalid campaign status: %s", s)
}

// campaignTransitions enumerates the allowed directed edges of the state
// machine. Any mutation not present here is rejected.
var campaignTransitions = map[CampaignStatus]map[CampaignStatus]bool{
	CampaignStatusDraft:     {CampaignStatusReady: true},
	CampaignStatusReady:     {CampaignStatusRunning: true, CampaignStatusFailed: true},
	CampaignStatusRunning:   {CampaignStatusCompleted: true, CampaignStatusPaused: true, CampaignStatusFailed: true},
	CampaignStatusPaused:    {CampaignStatusRunning: true, CampaignStatusFailed: true},
	CampaignStatusCompleted: {},
	CampaignStatusFailed:    {CampaignStatusReady: true}, // operator-triggered retry
}

// CanTransition reports whether moving from 'from' to 'to' follows an
// allowed edge of the campaign state machine.
func CanTransition(from, to CampaignStatus) bool {
	edges, ok := campaignTransitions[from]
	if !ok {
		return false
	}
	return edges[to]
}

// QuietHours is a wall-clock interval (HH:MM) during which a campaign must
// not dispatch to a recipient. Start > End means the window wraps midnight.
type QuietHours struct {
	Start string `json:"start"` // "HH:MM"
	End   string `json:"end"`   // "HH:MM"
}

// Contains reports whether now, expressed in loc, falls inside the quiet
// hours window. A wrapping window (e.g. 22:00-07:00) is handled by
// checking "at or after start OR before end" instead of a plain range.
func (q *QuietHours) Contains(now time.Time, loc *time.Location) bool {
	start, err := time.ParseInLocation("15:04", q.Start, loc)
	if err != nil {
		return false
	}
	end, err := time.ParseInLocation("15:04", q.End, loc)
	if err != nil {
		return false
	}
	local := now.In(loc)
	wallClock := time.Date(0, 1, 1, local.Hour(), local.Minute(), 0, 0, loc)
	startClock := time.Date(0, 1, 1, start.Hour(), start.Minute(), 0, 0, loc)
	endClock := time.Date(0, 1, 1, end.Hour(), end.Minute(), 0, 0, loc)

	if startClock.Equal(endClock) {
		return false
	}
	if startClock.Before(endClock) {
		return !wallClock.Before(startClock) && wallClock.Before(endClock)
	}
	// wraps midnight
	return !wallClock.Before(startClock) || wallClock.Before(endClock)
}

// Campaign is the unit of scheduling, throttling, and dispatch.
type Campaign struct {
	ID                string         `json:"id"`
	Topic             string         `json:"topic"`
	TemplateID        string         `json:"template_id"`
	SegmentID         *string        `json:"segment_id,omitempty"`
	Status            CampaignStatus `json:"status"`
	RateLimitPerSec   int            `json:"rate_limit_per_second"`
	QuietHours        *QuietHours    `json:"quiet_hours,omitempty"`
	ScheduleTime      *time.Time     `json:"schedule_time,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Validate ensures the campaign satisfies its invariants.
func (c *Campaign) Validate() error {
	if c.Topic == "" {
		return fmt.Errorf("campaign topic is required")
	}
	if c.TemplateID == "" {
		return fmt.Errorf("campaign template_id is required")
	}
	if err := c.Status.Validate(); err != nil {
		return fmt.Errorf("invalid campaign: %w", err)
	}
	if c.RateLimitPerSec < 1 {
		return fmt.Errorf("rate_limit_per_second must be >= 1")
	}
	if c.QuietHours != nil {
		if _, err := parseHHMM(c.QuietHours.Start); err != nil {
			return fmt.Errorf("invalid quiet_hours_start: %w", err)
		}
		if _, err := parseHHMM(c.QuietHours.End); err != nil {
			return fmt.Errorf("invalid quiet_hours_end: %w", err)
		}
	}
	return nil
}

func parseHHMM(s string) (time.Time, error) {
	return time.Parse("15:04", s)
}

// dbCampaign is the database scanning shape for Campaign.
type dbCampaign struct {
	ID              string
	Topic           string
	TemplateID      string
	SegmentID       *string
	Status          string
	RateLimitPerSec int
	QuietHoursStart *string
	QuietHoursEnd   *string
	ScheduleTime    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ScanCampaign scans a campaign row from a database/sql Scanner.
func ScanCampaign(scanner interface {
	Scan(dest ...interface{}) error
}) (*Campaign, error) {
	var dbc dbCampaign
	if err := scanner.Scan(
		&dbc.ID,
		&dbc.Topic,
		&dbc.TemplateID,
		&dbc.SegmentID,
		&dbc.Status,
		&dbc.RateLimitPerSec,
		&dbc.QuietHoursStart,
		&dbc.QuietHoursEnd,
		&dbc.ScheduleTime,
		&dbc.CreatedAt,
		&dbc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	c := &Campaign{
		ID:              dbc.ID,
		Topic:           dbc.Topic,
		TemplateID:      dbc.TemplateID,
		SegmentID:       dbc.SegmentID,
		Status:          CampaignStatus(dbc.Status),
		RateLimitPerSec: dbc.RateLimitPerSec,
		ScheduleTime:    dbc.ScheduleTime,
		CreatedAt:       dbc.CreatedAt,
		UpdatedAt:       dbc.UpdatedAt,
	}
	if dbc.QuietHoursStart != nil && dbc.QuietHoursEnd != nil {
		c.QuietHours = &QuietHours{Start: *dbc.QuietHoursStart, End: *dbc.QuietHoursEnd}
	}
	return c, nil
}

// SkipCounters tracks per-reason compliance skips for a campaign run.
type SkipCounters struct {
	OptOut               int `json:"opt_out"`
	QuietHours           int `json:"quiet_hours"`
	RateLimit            int `json:"rate_limit"`
	MissingTemplateData  int `json:"missing_template_data"`
	Duplicate            int `json:"duplicate"`
}

// CampaignResult is the per-campaign report surfaced to operators (spec §7).
type CampaignResult struct {
	CampaignID      string       `json:"campaign_id"`
	TotalRecipients int          `json:"total_recipients"`
	Skipped         SkipCounters `json:"skipped"`
	Sent            int          `json:"sent"`
	Failed          int          `json:"failed"`
	TopErrorCodes   map[string]int `json:"top_error_codes,omitempty"`
}

// DeliveryRate returns delivered/sent, or 0 when nothing was sent.
func (r *CampaignResult) DeliveryRate(delivered int) float64 {
	if r.Sent == 0 {
		return 0
	}
	return float64(delivered) / float64(r.Sent)
}

// CampaignRepository persists and retrieves Campaigns.
type CampaignRepository interface {
	GetCampaignByID(ctx context.Context, id string) (*Campaign, error)

	// TransitionStatus performs a conditional update: it applies only if
	// the row's current status equals from, returning (applied=false, nil)
	// on a no-op so that concurrent schedulers never double-dispatch.
	TransitionStatus(ctx context.Context, id string, from, to CampaignStatus) (applied bool, err error)

	// DueForScheduling returns READY campaigns whose schedule_time is null
	// or has elapsed, for the scheduler's periodic sweep.
	DueForScheduling(ctx context.Context, now time.Time) ([]*Campaign, error)
}
