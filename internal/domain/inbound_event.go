package domain

import (
	"context"
	"time"
)

// InboundEvent is an immutable record of a single inbound webhook delivery
// from a provider (an incoming SMS/WhatsApp message). The row, with the
// full raw payload, is committed before the webhook is acknowledged; a
// delivery whose sender does not normalize to E.164 is dropped and never
// becomes an InboundEvent.
type InboundEvent struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Body      string    `json:"body"`
	RawPayload MapOfAny `json:"raw_payload"`
	Processed bool      `json:"processed"`
	CreatedAt time.Time `json:"created_at"`
}

// dbInboundEvent is the database scanning shape for InboundEvent.
type dbInboundEvent struct {
	ID         string
	Phone      string
	Body       string
	RawPayload MapOfAny
	Processed  bool
	CreatedAt  time.Time
}

// ScanInboundEvent scans an inbound event row from a database/sql Scanner.
func ScanInboundEvent(scanner interface {
	Scan(dest ...interface{}) error
}) (*InboundEvent, error) {
	var dbe dbInboundEvent
	if err := scanner.Scan(
		&dbe.ID,
		&dbe.Phone,
		&dbe.Body,
		&dbe.RawPayload,
		&dbe.Processed,
		&dbe.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &InboundEvent{
		ID:         dbe.ID,
		Phone:      dbe.Phone,
		Body:       dbe.Body,
		RawPayload: dbe.RawPayload,
		Processed:  dbe.Processed,
		CreatedAt:  dbe.CreatedAt,
	}, nil
}

// InboundEventRepository persists the raw inbound webhook audit trail.
type InboundEventRepository interface {
	// InsertRaw commits the raw payload row on its own, unprocessed. The
	// webhook handler does not use it; it writes inbound events through
	// WebhookCommitter.CommitInbound.
	InsertRaw(ctx context.Context, e *InboundEvent) error

	// MarkProcessed flags a previously inserted event once the Consent
	// Engine has classified and applied it.
	MarkProcessed(ctx context.Context, id string) error
}

//go:generate mockgen -destination mocks/mock_webhook_committer.go -package mocks github.com/Notifuse/notifuse/internal/domain WebhookCommitter

// WebhookCommitter persists one inbound webhook atomically: the raw
// InboundEvent row and, when the body carried a recognized consent intent or
// enrichment attributes, the resulting User changes commit together in a
// single transaction (spec §4.6/§4.7) so a crash between the two never
// leaves an acknowledged webhook with a silently dropped change.
type WebhookCommitter interface {
	// CommitInbound inserts event, marks it processed, and applies
	// newConsent and attrs to the User at event.Phone, all in one
	// transaction. newConsent is nil when the body carried no recognized
	// consent intent; attrs is nil/empty when the body carried no
	// recognized enrichment (e.g. a language-preference keyword). When
	// both are nil/empty, only the event row (marked processed) is
	// written. attrs keys are merged into the User's existing attributes
	// rather than replacing the map outright.
	CommitInbound(ctx context.Context, event *InboundEvent, newConsent *ConsentState, attrs MapOfAny) error
}
