package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/baechuer/event-hub/internal/application/event"
	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/logger"
	"github.com/baechuer/event-hub/internal/metrics"
)

const (
	maxHops    = 8
	maxHistory = 50
)

// AuthState is the part of the auth service views and guards read.
type AuthState interface {
	CurrentUser() (domain.PublicUser, bool)
}

// EventReader is the read side of the event service.
type EventReader interface {
	Events(f event.Filter) ([]domain.Event, error)
	UserRegistrations(userID domain.ID) []domain.RegistrationView
	UserCreatedEvents(userID domain.ID) []domain.Event
	Statistics() domain.Stats
	Categories() []domain.Category
}

// Services are injected into every view factory.
type Services struct {
	Auth   AuthState
	Events EventReader
}

type Action string

const (
	ActionRender   Action = "render"
	ActionRedirect Action = "redirect"
)

const (
	ReasonUnknownRoute         = "unknown_route"
	ReasonStatic               = "static"
	ReasonAuthRequired         = "auth_required"
	ReasonAlreadyAuthenticated = "already_authenticated"
	ReasonRoleRequired         = "role_required"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type Decision struct {
	Action Action
	Target RouteName
	Reason string
	Notice *Notification
}

// Hop is one redirect taken during a navigation.
type Hop struct {
	From   RouteName `json:"from"`
	To     RouteName `json:"to"`
	Reason string    `json:"reason"`
}

type Status string

const (
	StatusRendered Status = "rendered"
	StatusError    Status = "error"
)

type Outcome struct {
	Requested     RouteName      `json:"requested"`
	Route         RouteName      `json:"route"`
	Path          string         `json:"path,omitempty"`
	Title         string         `json:"title,omitempty"`
	Status        Status         `json:"status"`
	Redirects     []Hop          `json:"redirects,omitempty"`
	Notifications []Notification `json:"notifications,omitempty"`
	View          any            `json:"view,omitempty"`
}

var errTooManyRedirects = errors.New("too many redirects")

// State is the part of a router that outlives one request.
type State struct {
	Current RouteName   `json:"current"`
	History []RouteName `json:"history"`
}

// StateStore keeps one browser context's State between requests.
type StateStore interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, st State) error
}

// Router resolves and renders routes for one browser context.
type Router struct {
	table *Table
	svc   Services
	store StateStore

	mu      sync.RWMutex
	current RouteName
	history []RouteName
}

func NewRouter(table *Table, svc Services) *Router {
	return &Router{table: table, svc: svc}
}

// Restore loads the context's state from store. Later navigations are saved
// back to it.
func (r *Router) Restore(ctx context.Context, store StateStore) error {
	st, err := store.Load(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.store = store
	r.current = st.Current
	r.history = append([]RouteName(nil), st.History...)
	r.mu.Unlock()
	return nil
}

// Resolve applies the guards to name; the first matching rule wins.
func (r *Router) Resolve(name RouteName) Decision {
	d, ok := r.table.Get(name)
	if !ok {
		return Decision{Action: ActionRedirect, Target: r.table.Fallback(), Reason: ReasonUnknownRoute}
	}
	if d.Redirect != "" {
		return Decision{Action: ActionRedirect, Target: d.Redirect, Reason: ReasonStatic}
	}

	user, authed := r.svc.Auth.CurrentUser()
	if d.RequiresAuth && !authed {
		return Decision{
			Action: ActionRedirect, Target: RouteLogin, Reason: ReasonAuthRequired,
			Notice: &Notification{Level: LevelWarning, Message: "Please log in to access this page"},
		}
	}
	if d.RedirectIfAuth != "" && authed {
		return Decision{Action: ActionRedirect, Target: d.RedirectIfAuth, Reason: ReasonAlreadyAuthenticated}
	}
	if d.RequiresRole != "" && (!authed || user.Role != d.RequiresRole) {
		target := RouteLogin
		if authed {
			target = RouteDashboard
		}
		return Decision{
			Action: ActionRedirect, Target: target, Reason: ReasonRoleRequired,
			Notice: &Notification{Level: LevelError, Message: "Access denied. You do not have permission to view this page"},
		}
	}
	return Decision{Action: ActionRender, Target: name}
}

// Navigate follows redirects from name and renders the final route. A failing
// view yields an error outcome and leaves the current route alone.
func (r *Router) Navigate(ctx context.Context, name RouteName, params Params) Outcome {
	out := Outcome{Requested: name}

	cur := name
	for hop := 0; ; hop++ {
		if hop >= maxHops {
			return r.fail(ctx, out, errTooManyRedirects)
		}
		d := r.Resolve(cur)
		if d.Notice != nil {
			out.Notifications = append(out.Notifications, *d.Notice)
		}
		if d.Action == ActionRender {
			break
		}
		out.Redirects = append(out.Redirects, Hop{From: cur, To: d.Target, Reason: d.Reason})
		cur = d.Target
	}

	desc, _ := r.table.Get(cur)
	view, err := r.render(ctx, desc, params)
	if err != nil {
		return r.fail(ctx, out, err)
	}

	r.mu.Lock()
	r.current = cur
	r.history = append(r.history, cur)
	if len(r.history) > maxHistory {
		r.history = r.history[len(r.history)-maxHistory:]
	}
	st, store := r.snapshot(), r.store
	r.mu.Unlock()

	// the page already rendered; a lost history entry is only logged
	if store != nil {
		if err := store.Save(ctx, st); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("route", string(cur)).Msg("navigation state save failed")
		}
	}
	metrics.RecordNavigation(string(cur))

	out.Route = cur
	out.Path = desc.Path
	out.Title = desc.Title
	out.Status = StatusRendered
	out.View = view
	return out
}

func (r *Router) render(ctx context.Context, d Descriptor, p Params) (view any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("view %q panicked: %v", d.Name, rec)
		}
	}()
	if p == nil {
		p = Params{}
	}
	return d.View(ctx, r.svc, p)
}

func (r *Router) fail(ctx context.Context, out Outcome, err error) Outcome {
	logger.Ctx(ctx).Error().Err(err).Str("route", string(out.Requested)).Msg("navigation failed")
	metrics.RecordNavigation(string(RouteError))

	out.Route = RouteError
	out.Status = StatusError
	out.Title = "Error"
	out.Notifications = append(out.Notifications, Notification{Level: LevelError, Message: "Navigation failed"})
	return out
}

func (r *Router) Current() RouteName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Router) History() []RouteName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RouteName(nil), r.history...)
}

// State returns a copy of the current route and history.
func (r *Router) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot()
}

// snapshot copies the state; callers hold mu.
func (r *Router) snapshot() State {
	return State{Current: r.current, History: append([]RouteName(nil), r.history...)}
}
