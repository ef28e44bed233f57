package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination mocks/mock_delivery_receipt_repository.go -package mocks github.com/Notifuse/notifuse/internal/domain DeliveryReceiptRepository

// DeliveryReceipt is an immutable record of a single delivery-status
// webhook from a provider. The Reconciler joins it to a Message via
// ProviderSID and advances that message's status monotonically; the raw
// row is retained even when the status it reports is a regression or the
// provider_sid is unknown (spec §4.12), so nothing is ever silently lost.
type DeliveryReceipt struct {
	ID           string    `json:"id"`
	ProviderSID  string    `json:"provider_sid"`
	Status       string    `json:"status"` // raw provider status string, pre-mapping
	RawPayload   MapOfAny  `json:"raw_payload"`
	Reconciled   bool      `json:"reconciled"`
	CreatedAt    time.Time `json:"created_at"`
}

// dbDeliveryReceipt is the database scanning shape for DeliveryReceipt.
type dbDeliveryReceipt struct {
	ID          string
	ProviderSID string
	Status      string
	RawPayload  MapOfAny
	Reconciled  bool
	CreatedAt   time.Time
}

// ScanDeliveryReceipt scans a delivery receipt row from a database/sql Scanner.
func ScanDeliveryReceipt(scanner interface {
	Scan(dest ...interface{}) error
}) (*DeliveryReceipt, error) {
	var dbr dbDeliveryReceipt
	if err := scanner.Scan(
		&dbr.ID,
		&dbr.ProviderSID,
		&dbr.Status,
		&dbr.RawPayload,
		&dbr.Reconciled,
		&dbr.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &DeliveryReceipt{
		ID:          dbr.ID,
		ProviderSID: dbr.ProviderSID,
		Status:      dbr.Status,
		RawPayload:  dbr.RawPayload,
		Reconciled:  dbr.Reconciled,
		CreatedAt:   dbr.CreatedAt,
	}, nil
}

// ProviderStatusToMessageStatus maps a provider's raw delivery-status
// string to our internal MessageStatus. Unknown provider strings map to
// ("", false) and the receipt is retained unreconciled for inspection.
func ProviderStatusToMessageStatus(providerStatus string) (MessageStatus, bool) {
	switch providerStatus {
	case "queued", "accepted":
		return MessageStatusQueued, true
	case "sending":
		return MessageStatusSending, true
	case "sent":
		return MessageStatusSent, true
	case "delivered":
		return MessageStatusDelivered, true
	case "read":
		return MessageStatusRead, true
	case "failed":
		return MessageStatusFailed, true
	case "undelivered":
		return MessageStatusUndelivered, true
	default:
		return "", false
	}
}

// DeliveryReceiptRepository persists the raw delivery-status audit trail.
type DeliveryReceiptRepository interface {
	// InsertRaw commits the raw receipt row before the webhook handler
	// acknowledges 200.
	InsertRaw(ctx context.Context, r *DeliveryReceipt) error

	// MarkReconciled flags a receipt once the Reconciler has applied (or
	// deliberately ignored, as a regression) its status to a Message.
	MarkReconciled(ctx context.Context, id string) error

	// Unreconciled returns receipts not yet applied, for the Reconciler's
	// periodic orphan sweep (provider_sid arrived before the SEND response
	// recorded it, or a transient failure left it pending).
	Unreconciled(ctx context.Context, limit int) ([]*DeliveryReceipt, error)
}
