// Package reconciler applies delivery-status receipts to the Messages they
// describe, advancing each Message's status monotonically (spec §4.8). Most
// receipts are reconciled synchronously, right after the webhook handler
// writes the raw audit row; Reconciler also runs a periodic sweep over
// whatever a synchronous call couldn't resolve yet (the SEND response hadn't
// been recorded with its provider_sid when the receipt arrived).
package reconciler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Notifuse/notifuse/internal/domain"
	"github.com/Notifuse/notifuse/pkg/logger"
)

// Reconciler advances Message state from DeliveryReceipts.
type Reconciler struct {
	messageRepo domain.MessageRepository
	receiptRepo domain.DeliveryReceiptRepository
	logger      logger.Logger
	config      *Config

	stopChan    chan struct{}
	stoppedChan chan struct{}
	mu          sync.Mutex
	running     bool
}

// New creates a new Reconciler.
func New(messageRepo domain.MessageRepository, receiptRepo domain.DeliveryReceiptRepository, log logger.Logger, config *Config) *Reconciler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Reconciler{
		messageRepo: messageRepo,
		receiptRepo: receiptRepo,
		logger:      log,
		config:      config,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// ReconcileOne applies a single receipt to its Message, and marks the
// receipt reconciled once it has been applied or ignored as a regression. A
// receipt whose message isn't known yet is left unreconciled for a later
// sweep.
//
// A receipt whose raw status string doesn't map to a known MessageStatus is
// left unreconciled for manual inspection rather than silently dropped.
func (r *Reconciler) ReconcileOne(ctx context.Context, receipt *domain.DeliveryReceipt) error {
	status, ok := domain.ProviderStatusToMessageStatus(receipt.Status)
	if !ok {
		r.logger.WithFields(map[string]interface{}{
			"receipt_id": receipt.ID,
			"status":     receipt.Status,
		}).Warn("unrecognized provider status, leaving receipt unreconciled")
		return nil
	}

	message, err := r.messageRepo.GetByProviderSID(ctx, receipt.ProviderSID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			r.logger.WithFields(map[string]interface{}{
				"receipt_id":   receipt.ID,
				"provider_sid": receipt.ProviderSID,
			}).Debug("no message for provider_sid yet, leaving receipt for a later sweep")
			return nil
		}
		return err
	}

	if advanceErr := message.AdvanceStatus(status); advanceErr != nil {
		var invalid *domain.InvalidTransitionError
		if errors.As(advanceErr, &invalid) {
			r.logger.WithFields(map[string]interface{}{
				"receipt_id": receipt.ID,
				"message_id": message.ID,
				"from":       invalid.From,
				"to":         invalid.To,
			}).Debug("ignoring out-of-order or regressive delivery status")
			return r.receiptRepo.MarkReconciled(ctx, receipt.ID)
		}
		return advanceErr
	}

	errorCode := errorCodeFromPayload(receipt.RawPayload)
	if err := r.messageRepo.UpdateStatus(ctx, message.ID, status, nil, errorCode, receipt.CreatedAt); err != nil {
		return err
	}

	return r.receiptRepo.MarkReconciled(ctx, receipt.ID)
}

// errorCodeFromPayload pulls a provider error code out of a receipt's raw
// payload, when the provider included one (typically only set on
// failed/undelivered statuses).
func errorCodeFromPayload(raw domain.MapOfAny) *string {
	for _, key := range []string{"ErrorCode", "error_code"} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			return &s
		}
	}
	return nil
}

// Start begins the periodic orphan-sweep loop in a background goroutine.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		r.logger.Warn("reconciler already running")
		return
	}
	r.running = true
	r.mu.Unlock()

	r.logger.WithField("poll_interval", r.config.PollInterval).Info("starting delivery receipt reconciler")

	go r.run(ctx)
}

// Stop gracefully stops the sweep loop.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	r.logger.Info("stopping reconciler...")
	close(r.stopChan)

	select {
	case <-r.stoppedChan:
		r.logger.Info("reconciler stopped")
	case <-time.After(5 * time.Second):
		r.logger.Warn("reconciler stop timeout exceeded")
	}
}

// IsRunning returns whether the sweep loop is active.
func (r *Reconciler) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.stoppedChan)
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	r.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// sweep reconciles whatever orphan receipts are currently pending.
func (r *Reconciler) sweep(ctx context.Context) {
	receipts, err := r.receiptRepo.Unreconciled(ctx, r.config.BatchSize)
	if err != nil {
		r.logger.WithField("error", err.Error()).Error("failed to list unreconciled receipts")
		return
	}
	if len(receipts) == 0 {
		return
	}

	r.logger.WithField("count", len(receipts)).Debug("reconciling orphaned delivery receipts")

	for _, receipt := range receipts {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := r.ReconcileOne(ctx, receipt); err != nil {
			r.logger.WithFields(map[string]interface{}{
				"receipt_id": receipt.ID,
				"error":      err.Error(),
			}).Error("failed to reconcile delivery receipt")
		}
	}
}
