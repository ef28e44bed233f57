package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the complete chi router: the two webhook endpoints,
// the Trigger API, and a 501 stub for everything else (spec §6).
func NewRouter(webhooks *WebhookHandler, trigger *TriggerHandler, admin *AdminStub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	webhooks.RegisterRoutes(r)
	trigger.RegisterRoutes(r)
	admin.RegisterRoutes(r)

	return r
}
