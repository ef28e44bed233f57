package domain

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_message_repository.go -package mocks github.com/Notifuse/notifuse/internal/domain MessageRepository

// MessageStatus is a node in the message delivery state machine (spec §4.8).
// Transitions only ever move forward; FAILED and UNDELIVERED are absorbing.
type MessageStatus string

const (
	MessageStatusQueued      MessageStatus = "QUEUED"
	MessageStatusSending     MessageStatus = "SENDING"
	MessageStatusSent        MessageStatus = "SENT"
	MessageStatusDelivered   MessageStatus = "DELIVERED"
	MessageStatusRead        MessageStatus = "READ"
	MessageStatusFailed      MessageStatus = "FAILED"
	MessageStatusUndelivered MessageStatus = "UNDELIVERED"
)

// Validate checks that the status is one of the known values.
func (s MessageStatus) Validate() error {
	switch s {
	case MessageStatusQueued, MessageStatusSending, MessageStatusSent,
		MessageStatusDelivered, MessageStatusRead, MessageStatusFailed, MessageStatusUndelivered:
		return nil
	}
	return fmt.Errorf("invalid message status: %s", s)
}

// messageRank orders statuses along the forward path so a proposed
// transition can be checked as monotonic. FAILED/UNDELIVERED are absorbing
// and are handled outside of the rank comparison.
var messageRank = map[MessageStatus]int{
	MessageStatusQueued:    0,
	MessageStatusSending:   1,
	MessageStatusSent:      2,
	MessageStatusDelivered: 3,
	MessageStatusRead:      4,
}

func isAbsorbing(s MessageStatus) bool {
	return s == MessageStatusFailed || s == MessageStatusUndelivered
}

// CanAdvance reports whether moving from 'from' to 'to' is a legal
// monotonic transition: absorbing states never move again, and forward
// progress along the rank order (or into an absorbing state) is allowed;
// regressions and same-state repeats are rejected.
func CanAdvance(from, to MessageStatus) bool {
	if isAbsorbing(from) {
		return false
	}
	if isAbsorbing(to) {
		return true
	}
	fromRank, fromOK := messageRank[from]
	toRank, toOK := messageRank[to]
	if !fromOK || !toOK {
		return false
	}
	return toRank > fromRank
}

// Message is a single dispatch attempt to one User within one Campaign.
// The (campaign_id, phone) pair is unique: materialization is the
// dedup boundary that prevents a recipient from being messaged twice by the
// same campaign run (spec §4.7/§6).
type Message struct {
	ID           string        `json:"id"`
	CampaignID   string        `json:"campaign_id"`
	Phone        string        `json:"phone"`
	Channel      Channel       `json:"channel"`
	RenderedBody string        `json:"rendered_body"`
	Status       MessageStatus `json:"status"`
	ProviderSID  *string       `json:"provider_sid,omitempty"`
	ErrorCode    *string       `json:"error_code,omitempty"`
	SentAt       *time.Time    `json:"sent_at,omitempty"`
	DeliveredAt  *time.Time    `json:"delivered_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Validate ensures the message satisfies its invariants.
func (m *Message) Validate() error {
	if m.CampaignID == "" {
		return fmt.Errorf("message campaign_id is required")
	}
	if !IsValidE164(m.Phone) {
		return fmt.Errorf("invalid message phone: must be E.164")
	}
	if err := m.Channel.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	if err := m.Status.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	return nil
}

// AdvanceStatus applies a monotonic status transition in memory. It returns
// an *InvalidTransitionError when the move is not allowed; callers that
// reconcile out-of-order provider receipts should treat that error as
// "ignore, keep current status" rather than a failure (spec §4.8 edge case).
func (m *Message) AdvanceStatus(to MessageStatus) error {
	if err := to.Validate(); err != nil {
		return err
	}
	if !CanAdvance(m.Status, to) {
		return &InvalidTransitionError{Entity: "Message", From: string(m.Status), To: string(to)}
	}
	m.Status = to
	return nil
}

// dbMessage is the database scanning shape for Message.
type dbMessage struct {
	ID           string
	CampaignID   string
	Phone        string
	Channel      string
	RenderedBody string
	Status       string
	ProviderSID  *string
	ErrorCode    *string
	SentAt       *time.Time
	DeliveredAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ScanMessage scans a message row from a database/sql Scanner.
func ScanMessage(scanner interface {
	Scan(dest ...interface{}) error
}) (*Message, error) {
	var dbm dbMessage
	if err := scanner.Scan(
		&dbm.ID,
		&dbm.CampaignID,
		&dbm.Phone,
		&dbm.Channel,
		&dbm.RenderedBody,
		&dbm.Status,
		&dbm.ProviderSID,
		&dbm.ErrorCode,
		&dbm.SentAt,
		&dbm.DeliveredAt,
		&dbm.CreatedAt,
		&dbm.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &Message{
		ID:           dbm.ID,
		CampaignID:   dbm.CampaignID,
		Phone:        dbm.Phone,
		Channel:      Channel(dbm.Channel),
		RenderedBody: dbm.RenderedBody,
		Status:       MessageStatus(dbm.Status),
		ProviderSID:  dbm.ProviderSID,
		ErrorCode:    dbm.ErrorCode,
		SentAt:       dbm.SentAt,
		DeliveredAt:  dbm.DeliveredAt,
		CreatedAt:    dbm.CreatedAt,
		UpdatedAt:    dbm.UpdatedAt,
	}, nil
}

// MessageRepository persists and retrieves Messages.
type MessageRepository interface {
	// Materialize inserts a QUEUED message for (campaign_id, phone). It
	// returns a *ConflictError when the pair already exists for this
	// campaign, which the Orchestrator treats as a duplicate skip.
	Materialize(ctx context.Context, m *Message) error

	// GetByProviderSID retrieves the message a delivery receipt's
	// provider-assigned identifier refers to.
	GetByProviderSID(ctx context.Context, providerSID string) (*Message, error)

	// UpdateStatus persists a status transition plus optional provider SID
	// and error code. occurredAt is recorded as sent_at when status is SENT
	// and as delivered_at when status is DELIVERED, but only if that column
	// is still unset (spec §4.8: the first receipt wins, a later duplicate
	// or out-of-order receipt must not overwrite it).
	UpdateStatus(ctx context.Context, id string, status MessageStatus, providerSID, errorCode *string, occurredAt time.Time) error
}
