package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_RecordsCounters(t *testing.T) {
	tr := NewProgressTracker(testLogger(), DefaultConfig())
	tr.Reset("camp_1", 5)

	tr.RecordSent()
	tr.RecordSent()
	tr.RecordFailed()
	tr.RecordSkip(SkipReasonOptOut)
	tr.RecordSkip(SkipReasonQuietHours)

	result := tr.Result()
	assert.Equal(t, "camp_1", result.CampaignID)
	assert.Equal(t, 5, result.TotalRecipients)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Skipped.OptOut)
	assert.Equal(t, 1, result.Skipped.QuietHours)
}

func TestProgressTracker_ResetClearsPreviousRun(t *testing.T) {
	tr := NewProgressTracker(testLogger(), DefaultConfig())
	tr.Reset("camp_1", 1)
	tr.RecordSent()

	tr.Reset("camp_2", 9)
	result := tr.Result()
	assert.Equal(t, "camp_2", result.CampaignID)
	assert.Equal(t, 9, result.TotalRecipients)
	assert.Equal(t, 0, result.Sent)
}
