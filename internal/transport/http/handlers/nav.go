package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/event-hub/internal/application/navigation"
	"github.com/baechuer/event-hub/internal/transport/http/response"
)

type NavHandler struct{}

func NewNavHandler() *NavHandler { return &NavHandler{} }

// Navigate renders a route for the caller's context. A failed view is still
// a 200: the outcome carries status "error" and a notification.
func (h *NavHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}

	params := navigation.Params{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	name := navigation.RouteName(chi.URLParam(r, "route"))
	response.Data(w, r, http.StatusOK, ws.Router.Navigate(r.Context(), name, params))
}
