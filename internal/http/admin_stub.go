package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AdminStub answers every CRUD route outside the Trigger API with 501, so
// the router exposes a complete surface the way the teacher's app.go does
// without implementing the REST console, CSV/JSON bulk loader, or any of
// the other collaborators spec.md marks out of scope.
type AdminStub struct{}

// NewAdminStub creates a new AdminStub.
func NewAdminStub() *AdminStub {
	return &AdminStub{}
}

// RegisterRoutes mounts the stubbed admin surface on r.
func (h *AdminStub) RegisterRoutes(r chi.Router) {
	for _, route := range []string{
		"/users", "/users/{id}",
		"/templates", "/templates/{id}",
		"/segments", "/segments/{id}",
		"/campaigns", "/campaigns/{id}",
	} {
		r.Method(http.MethodGet, route, http.HandlerFunc(h.notImplemented))
		r.Method(http.MethodPost, route, http.HandlerFunc(h.notImplemented))
		r.Method(http.MethodPut, route, http.HandlerFunc(h.notImplemented))
		r.Method(http.MethodDelete, route, http.HandlerFunc(h.notImplemented))
	}
}

func (h *AdminStub) notImplemented(w http.ResponseWriter, r *http.Request) {
	WriteJSONError(w, "not implemented: CRUD surface is out of scope", http.StatusNotImplemented)
}
