package hub

import (
	"context"

	"github.com/baechuer/event-hub/internal/application/auth"
	"github.com/baechuer/event-hub/internal/application/event"
	"github.com/baechuer/event-hub/internal/application/navigation"
	"github.com/baechuer/event-hub/internal/domain"
)

// Counter counts interactions of one browser context.
type Counter interface {
	Incr(ctx context.Context) (int64, error)
	Get(ctx context.Context) (int64, error)
}

type Counters interface {
	For(contextID string) Counter
}

// NavStates hands out the navigation state store of each browser context.
type NavStates interface {
	For(contextID string) navigation.StateStore
}

type Deps struct {
	Users     auth.UserRepo
	Sessions  auth.SessionStores
	Counters  Counters
	NavStates NavStates
	Hasher    auth.PasswordHasher
	Validator *domain.Validator
	Clock     auth.Clock
	Routes    *navigation.Table
	Events    *event.Service
	Auth      auth.Config
}

// Hub builds the per-context services around the process-wide ones.
type Hub struct {
	deps Deps
}

func New(deps Deps) *Hub {
	return &Hub{deps: deps}
}

// Workspace is everything one browser context works with.
type Workspace struct {
	ContextID string
	Auth      *auth.Service
	Router    *navigation.Router
	Counter   Counter
}

// Open restores the context's session and navigation state and wires a
// router to them.
func (h *Hub) Open(ctx context.Context, contextID string) (*Workspace, error) {
	authSvc := auth.NewService(
		h.deps.Users,
		h.deps.Sessions.For(contextID),
		h.deps.Hasher,
		h.deps.Validator,
		h.deps.Clock,
		h.deps.Auth,
	)
	if err := authSvc.Restore(ctx); err != nil {
		return nil, err
	}

	router := navigation.NewRouter(h.deps.Routes, navigation.Services{Auth: authSvc, Events: h.deps.Events})
	if err := router.Restore(ctx, h.deps.NavStates.For(contextID)); err != nil {
		return nil, err
	}

	return &Workspace{
		ContextID: contextID,
		Auth:      authSvc,
		Router:    router,
		Counter:   h.deps.Counters.For(contextID),
	}, nil
}

func (h *Hub) Events() *event.Service { return h.deps.Events }
