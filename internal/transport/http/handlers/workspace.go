package handlers

import (
	"errors"
	"net/http"

	"github.com/baechuer/event-hub/internal/application/hub"
	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/transport/http/middleware"
	"github.com/baechuer/event-hub/internal/transport/http/response"
)

var errNoWorkspace = errors.New("workspace middleware not installed")

// workspace fetches the request's workspace, writing a 500 when it is missing.
func workspace(w http.ResponseWriter, r *http.Request) (*hub.Workspace, bool) {
	ws, ok := middleware.WorkspaceFrom(r.Context())
	if !ok {
		response.Err(w, r, domain.ErrInternal(errNoWorkspace))
		return nil, false
	}
	return ws, true
}

// authenticated is workspace plus a logged-in actor.
func authenticated(w http.ResponseWriter, r *http.Request) (*hub.Workspace, domain.Actor, bool) {
	ws, ok := workspace(w, r)
	if !ok {
		return nil, domain.Actor{}, false
	}
	actor := ws.Auth.Actor()
	if !actor.Authenticated() {
		response.Err(w, r, domain.ErrNotAuthenticated())
		return nil, domain.Actor{}, false
	}
	return ws, actor, true
}
