package http

import (
	"context"
	"net/http"

	"github.com/Notifuse/notifuse/internal/domain"
	"github.com/Notifuse/notifuse/internal/service/scheduler"
	"github.com/Notifuse/notifuse/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// TriggerHandler lets an operator force a campaign to dispatch immediately,
// bypassing the scheduler's schedule_time sweep (spec §6). It reuses the
// same compare-and-swap READY->RUNNING transition as the scheduler, so a
// manual trigger and a scheduled sweep racing on the same campaign can
// never double-dispatch it.
type TriggerHandler struct {
	campaignRepo domain.CampaignRepository
	dispatcher   scheduler.CampaignDispatcher
	logger       logger.Logger
}

// NewTriggerHandler creates a new TriggerHandler.
func NewTriggerHandler(campaignRepo domain.CampaignRepository, dispatcher scheduler.CampaignDispatcher, log logger.Logger) *TriggerHandler {
	return &TriggerHandler{
		campaignRepo: campaignRepo,
		dispatcher:   dispatcher,
		logger:       log,
	}
}

// RegisterRoutes mounts the trigger endpoint on r.
func (h *TriggerHandler) RegisterRoutes(r chi.Router) {
	r.Post("/campaigns/{id}/trigger", h.handleTrigger)
}

// handleTrigger claims the named campaign and runs it to completion in the
// background, returning 202 once the claim succeeds rather than blocking
// the request on a dispatch that may process thousands of recipients.
func (h *TriggerHandler) handleTrigger(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")
	if campaignID == "" {
		WriteJSONError(w, "campaign id is required", http.StatusBadRequest)
		return
	}

	campaign, err := h.campaignRepo.GetCampaignByID(r.Context(), campaignID)
	if err != nil {
		var notFound *domain.NotFoundError
		if isNotFound(err, &notFound) {
			WriteJSONError(w, "campaign not found", http.StatusNotFound)
			return
		}
		h.logger.WithField("error", err.Error()).Error("failed to load campaign for trigger")
		WriteJSONError(w, "failed to load campaign", http.StatusInternalServerError)
		return
	}

	if campaign.Status != domain.CampaignStatusReady {
		WriteJSONError(w, "campaign must be READY to trigger, current status: "+string(campaign.Status), http.StatusConflict)
		return
	}

	applied, err := h.campaignRepo.TransitionStatus(r.Context(), campaignID, domain.CampaignStatusReady, domain.CampaignStatusRunning)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("failed to transition campaign to RUNNING")
		WriteJSONError(w, "failed to trigger campaign", http.StatusInternalServerError)
		return
	}
	if !applied {
		WriteJSONError(w, "campaign was claimed by a concurrent trigger or scheduler sweep", http.StatusConflict)
		return
	}

	h.logger.WithField("campaign_id", campaignID).Info("campaign triggered manually")

	go h.dispatchInBackground(campaignID)

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"campaign_id": campaignID,
		"status":      string(domain.CampaignStatusRunning),
	})
}

func (h *TriggerHandler) dispatchInBackground(campaignID string) {
	result, err := h.dispatcher.Process(context.Background(), campaignID)
	if err != nil {
		h.logger.WithFields(map[string]interface{}{
			"campaign_id": campaignID,
			"error":       err.Error(),
		}).Error("triggered campaign dispatch failed")
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"campaign_id": campaignID,
		"sent":        result.Sent,
		"failed":      result.Failed,
		"total":       result.TotalRecipients,
	}).Info("triggered campaign dispatch completed")
}

// isNotFound reports whether err is a *domain.NotFoundError, also binding
// it into target for callers that want the typed value.
func isNotFound(err error, target **domain.NotFoundError) bool {
	nf, ok := err.(*domain.NotFoundError)
	if ok {
		*target = nf
	}
	return ok
}
