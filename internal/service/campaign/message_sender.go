package campaign

import (
	"context"
	"errors"
	"time"

	"github.com/Notifuse/notifuse/internal/domain"
	"github.com/Notifuse/notifuse/internal/provider"
	"github.com/Notifuse/notifuse/internal/service/queue"
	"github.com/Notifuse/notifuse/pkg/logger"
	"github.com/Notifuse/notifuse/pkg/renderer"
	"github.com/google/uuid"
)

//go:generate mockgen -destination=./mocks/mock_message_sender.go -package=mocks github.com/Notifuse/notifuse/internal/service/campaign MessageSender

// MessageSender renders, materializes, and dispatches a single message to
// one recipient, then reconciles its immediate send outcome. It is the
// render -> materialize -> dispatch -> reconcile tail of the compliance
// pipeline (spec §4.10); the gates ahead of it (consent, quiet hours, rate
// limit) are the Orchestrator's own responsibility.
type MessageSender interface {
	SendToRecipient(ctx context.Context, campaignID string, channel domain.Channel, user *domain.User, template *domain.Template) GateResult
}

type messageSender struct {
	messageRepo domain.MessageRepository
	adapter     provider.Adapter
	breaker     *queue.IntegrationCircuitBreaker
	logger      logger.Logger
}

// NewMessageSender creates a new message sender. breaker may be nil, which
// disables circuit breaking (equivalent to config.EnableCircuitBreaker = false).
func NewMessageSender(messageRepo domain.MessageRepository, adapter provider.Adapter, breaker *queue.IntegrationCircuitBreaker, log logger.Logger) MessageSender {
	return &messageSender{messageRepo: messageRepo, adapter: adapter, breaker: breaker, logger: log}
}

// circuitKey is the breaker's per-integration key. A single provider
// adapter is in play (spec §5's narrow adapter contract), so one constant
// key is enough; a multi-provider future would key this by provider name.
const circuitKey = "provider"

// SendToRecipient renders the template, materializes a QUEUED Message row,
// dispatches it through the provider adapter, and immediately advances the
// Message's status from the dispatch outcome.
func (s *messageSender) SendToRecipient(ctx context.Context, campaignID string, channel domain.Channel, user *domain.User, template *domain.Template) GateResult {
	startTime := time.Now()
	defer func() {
		s.logger.WithFields(map[string]interface{}{
			"duration_ms":  time.Since(startTime).Milliseconds(),
			"campaign_id":  campaignID,
			"phone":        user.Phone,
		}).Debug("recipient send completed")
	}()

	if s.breaker != nil && s.breaker.IsOpen(circuitKey) {
		s.logger.WithField("campaign_id", campaignID).Warn("circuit breaker open, skipping send")
		return Fail(NewCampaignErrorWithID(ErrCodeCircuitOpen, "circuit breaker is open", campaignID, true, nil))
	}

	rendered, err := renderer.Render(template.Content, user.Attributes)
	if err != nil {
		var missingErr *domain.MissingAttributeError
		if errors.As(err, &missingErr) {
			return Skip(SkipReasonMissingTemplateData)
		}
		return Fail(NewCampaignErrorWithID(ErrCodeTemplateInvalid, "render failed", campaignID, false, err))
	}

	message := &domain.Message{
		ID:           uuid.New().String(),
		CampaignID:   campaignID,
		Phone:        user.Phone,
		Channel:      channel,
		RenderedBody: rendered,
		Status:       domain.MessageStatusQueued,
	}
	if err := s.messageRepo.Materialize(ctx, message); err != nil {
		var conflictErr *domain.ConflictError
		if errors.As(err, &conflictErr) {
			return Skip(SkipReasonDuplicate)
		}
		return Fail(NewCampaignErrorWithID(ErrCodeSendFailed, "materialize failed", campaignID, true, err))
	}

	result, sendErr := s.adapter.Send(ctx, user.Phone, rendered, channel)
	if sendErr != nil {
		classified := provider.Classify(sendErr)
		if s.breaker != nil {
			s.breaker.RecordFailure(circuitKey, classified)
		}
		errCode := classified.Code
		_ = s.messageRepo.UpdateStatus(ctx, message.ID, domain.MessageStatusFailed, nil, &errCode, time.Now())
		s.logger.WithFields(map[string]interface{}{
			"campaign_id": campaignID,
			"phone":       user.Phone,
			"error":       sendErr.Error(),
		}).Error("provider send failed")
		return Fail(NewCampaignErrorWithID(ErrCodeSendFailed, "provider send failed", campaignID, classified.Retryable, sendErr))
	}

	if s.breaker != nil {
		s.breaker.RecordSuccess(circuitKey)
	}

	if err := s.messageRepo.UpdateStatus(ctx, message.ID, domain.MessageStatusSent, &result.ProviderSID, nil, time.Now()); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"campaign_id": campaignID,
			"message_id":  message.ID,
			"error":       err.Error(),
		}).Warn("failed to persist SENT status, but the message was dispatched")
	}

	return Ok()
}
