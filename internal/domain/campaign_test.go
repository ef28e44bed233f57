package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from CampaignStatus
		to   CampaignStatus
		want bool
	}{
		{"draft to ready", CampaignStatusDraft, CampaignStatusReady, true},
		{"ready to running", CampaignStatusReady, CampaignStatusRunning, true},
		{"running to completed", CampaignStatusRunning, CampaignStatusCompleted, true},
		{"running to paused", CampaignStatusRunning, CampaignStatusPaused, true},
		{"paused to running", CampaignStatusPaused, CampaignStatusRunning, true},
		{"running to failed", CampaignStatusRunning, CampaignStatusFailed, true},
		{"failed to ready retry", CampaignStatusFailed, CampaignStatusReady, true},
		{"draft to running skips ready", CampaignStatusDraft, CampaignStatusRunning, false},
		{"completed to anything", CampaignStatusCompleted, CampaignStatusRunning, false},
		{"paused to completed direct", CampaignStatusPaused, CampaignStatusCompleted, false},
		{"unknown from state", CampaignStatus("BOGUS"), CampaignStatusReady, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCampaign_Validate(t *testing.T) {
	tests := []struct {
		name     string
		campaign Campaign
		wantErr  bool
	}{
		{
			name: "valid campaign",
			campaign: Campaign{
				Topic:           "spring_sale",
				TemplateID:      "tmpl_1",
				Status:          CampaignStatusDraft,
				RateLimitPerSec: 10,
			},
		},
		{
			name:     "missing topic",
			campaign: Campaign{TemplateID: "tmpl_1", Status: CampaignStatusDraft, RateLimitPerSec: 10},
			wantErr:  true,
		},
		{
			name:     "missing template id",
			campaign: Campaign{Topic: "spring_sale", Status: CampaignStatusDraft, RateLimitPerSec: 10},
			wantErr:  true,
		},
		{
			name:     "invalid status",
			campaign: Campaign{Topic: "spring_sale", TemplateID: "tmpl_1", Status: "BOGUS", RateLimitPerSec: 10},
			wantErr:  true,
		},
		{
			name:     "rate limit zero",
			campaign: Campaign{Topic: "spring_sale", TemplateID: "tmpl_1", Status: CampaignStatusDraft, RateLimitPerSec: 0},
			wantErr:  true,
		},
		{
			name: "invalid quiet hours",
			campaign: Campaign{
				Topic: "spring_sale", TemplateID: "tmpl_1", Status: CampaignStatusDraft, RateLimitPerSec: 10,
				QuietHours: &QuietHours{Start: "25:99", End: "08:00"},
			},
			wantErr: true,
		},
		{
			name: "valid quiet hours",
			campaign: Campaign{
				Topic: "spring_sale", TemplateID: "tmpl_1", Status: CampaignStatusDraft, RateLimitPerSec: 10,
				QuietHours: &QuietHours{Start: "21:00", End: "08:00"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.campaign.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCampaignResult_DeliveryRate(t *testing.T) {
	r := &CampaignResult{Sent: 0}
	assert.Equal(t, 0.0, r.DeliveryRate(5))

	r = &CampaignResult{Sent: 100}
	assert.Equal(t, 0.8, r.DeliveryRate(80))
}
