package http

import (
	"net/http"
	"strings"

	"github.com/Notifuse/notifuse/internal/domain"
	"github.com/Notifuse/notifuse/internal/service/consent"
	"github.com/Notifuse/notifuse/internal/service/reconciler"
	"github.com/Notifuse/notifuse/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// WebhookHandler receives provider callbacks: inbound SMS/WhatsApp messages
// and delivery-status updates. Both endpoints always acknowledge 200 so the
// provider does not retry. A well-formed payload is committed before the
// acknowledgement; a body that cannot be parsed, an inbound sender that does
// not normalize to E.164, or a status callback missing its required fields is
// logged and dropped without being persisted.
type WebhookHandler struct {
	committer  domain.WebhookCommitter
	users      domain.UserRepository
	receipts   domain.DeliveryReceiptRepository
	reconciler *reconciler.Reconciler
	logger     logger.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(
	committer domain.WebhookCommitter,
	users domain.UserRepository,
	receipts domain.DeliveryReceiptRepository,
	rec *reconciler.Reconciler,
	log logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		committer:  committer,
		users:      users,
		receipts:   receipts,
		reconciler: rec,
		logger:     log,
	}
}

// RegisterRoutes mounts the webhook endpoints on r.
func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/inbound", h.handleInbound)
	r.Post("/webhooks/status", h.handleStatus)
}

// normalizeSenderPhone strips a provider channel prefix (e.g. "whatsapp:")
// from a From address, leaving the bare E.164 phone.
func normalizeSenderPhone(from string) string {
	if idx := strings.Index(from, ":"); idx != -1 {
		return from[idx+1:]
	}
	return from
}

// handleInbound ingests an inbound SMS/WhatsApp message. The raw event and,
// if its body carries a recognized consent keyword, the resulting consent
// change are committed together in one transaction (spec §4.6/§4.7).
func (h *WebhookHandler) handleInbound(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.WithField("error", err.Error()).Warn("failed to parse inbound webhook form body, dropping")
		w.WriteHeader(http.StatusOK)
		return
	}

	messageSid := r.FormValue("MessageSid")
	from := r.FormValue("From")
	to := r.FormValue("To")
	body := r.FormValue("Body")

	phone := normalizeSenderPhone(from)
	if !domain.IsValidE164(phone) {
		h.logger.WithFields(map[string]interface{}{
			"message_sid": messageSid,
			"from":        from,
		}).Warn("inbound webhook From did not normalize to a valid phone, dropping")
		w.WriteHeader(http.StatusOK)
		return
	}

	event := &domain.InboundEvent{
		ID:    uuid.New().String(),
		Phone: phone,
		Body:  body,
		RawPayload: domain.MapOfAny{
			"MessageSid": messageSid,
			"From":       from,
			"To":         to,
			"Body":       body,
		},
	}

	var newConsent *domain.ConsentState
	intent := consent.Classify(consent.Normalize(body))
	if intent != consent.IntentNone {
		current := domain.ConsentStateOptIn
		if user, err := h.users.GetUserByPhone(r.Context(), phone); err == nil {
			current = user.ConsentState
		} else if _, ok := err.(*domain.NotFoundError); !ok {
			h.logger.WithField("error", err.Error()).Warn("failed to look up user for consent classification, treating as opted-in")
		}

		if next, changed := consent.Apply(current, intent); changed {
			newConsent = &next
		}
	}

	var attrs domain.MapOfAny
	if lang, ok := consent.DetectLanguage(body); ok {
		attrs = domain.MapOfAny{"language": lang}
	}

	if err := h.committer.CommitInbound(r.Context(), event, newConsent, attrs); err != nil {
		h.logger.WithFields(map[string]interface{}{
			"message_sid": messageSid,
			"error":       err.Error(),
		}).Error("failed to commit inbound webhook event")
	}

	w.WriteHeader(http.StatusOK)
}

// handleStatus ingests a delivery-status callback. The raw receipt is
// persisted first, then reconciled synchronously against the Message it
// describes; a receipt the Reconciler can't resolve yet is picked up by its
// periodic orphan sweep instead (spec §4.8/§4.12).
func (h *WebhookHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.WithField("error", err.Error()).Warn("failed to parse status webhook form body, dropping")
		w.WriteHeader(http.StatusOK)
		return
	}

	messageSid := r.FormValue("MessageSid")
	status := r.FormValue("MessageStatus")
	errorCode := r.FormValue("ErrorCode")

	if messageSid == "" || status == "" {
		h.logger.WithFields(map[string]interface{}{
			"message_sid": messageSid,
			"status":      status,
		}).Warn("status webhook missing required fields, dropping")
		w.WriteHeader(http.StatusOK)
		return
	}

	raw := domain.MapOfAny{
		"MessageSid":    messageSid,
		"MessageStatus": status,
	}
	if errorCode != "" {
		raw["ErrorCode"] = errorCode
	}

	receipt := &domain.DeliveryReceipt{
		ID:          uuid.New().String(),
		ProviderSID: messageSid,
		Status:      status,
		RawPayload:  raw,
	}

	if err := h.receipts.InsertRaw(r.Context(), receipt); err != nil {
		h.logger.WithFields(map[string]interface{}{
			"message_sid": messageSid,
			"error":       err.Error(),
		}).Error("failed to persist delivery receipt")
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.reconciler.ReconcileOne(r.Context(), receipt); err != nil {
		h.logger.WithFields(map[string]interface{}{
			"message_sid": messageSid,
			"error":       err.Error(),
		}).Error("failed to reconcile delivery receipt synchronously, leaving for the periodic sweep")
	}

	w.WriteHeader(http.StatusOK)
}
