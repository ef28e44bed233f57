package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderStatusToMessageStatus(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    MessageStatus
		wantOK  bool
	}{
		{"queued", "queued", MessageStatusQueued, true},
		{"accepted maps to queued", "accepted", MessageStatusQueued, true},
		{"sent", "sent", MessageStatusSent, true},
		{"delivered", "delivered", MessageStatusDelivered, true},
		{"read", "read", MessageStatusRead, true},
		{"failed", "failed", MessageStatusFailed, true},
		{"undelivered", "undelivered", MessageStatusUndelivered, true},
		{"unknown provider status", "bounced", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ProviderStatusToMessageStatus(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
