package navigation

import (
	"context"
	"fmt"

	"github.com/baechuer/event-hub/internal/domain"
)

type RouteName string

const (
	RouteIndex     RouteName = ""
	RouteHome      RouteName = "home"
	RouteEvents    RouteName = "events"
	RouteLogin     RouteName = "login"
	RouteRegister  RouteName = "register"
	RouteDashboard RouteName = "dashboard"
	RouteProfile   RouteName = "profile"
	RouteSettings  RouteName = "settings"
	RouteAdmin     RouteName = "admin"
	RouteNotFound  RouteName = "404"

	// RouteError is never registered; Navigate reports it when a view fails.
	RouteError RouteName = "error"
)

// Params are the query parameters of a navigation.
type Params map[string]string

// ViewFactory builds the view model of a route.
type ViewFactory func(ctx context.Context, svc Services, p Params) (any, error)

// Descriptor describes one route. A route either redirects statically or
// has a View, never both. Redirect "" means no static redirect, so the
// index route cannot be a redirect target.
type Descriptor struct {
	Name           RouteName
	Path           string
	Title          string
	RequiresAuth   bool
	RequiresRole   domain.Role
	RedirectIfAuth RouteName
	Redirect       RouteName
	View           ViewFactory
}

// Table is the immutable route registry.
type Table struct {
	routes   map[RouteName]Descriptor
	order    []RouteName
	fallback RouteName
}

// NewTable validates descs and freezes them.
func NewTable(fallback RouteName, descs ...Descriptor) (*Table, error) {
	t := &Table{routes: make(map[RouteName]Descriptor, len(descs)), fallback: fallback}

	guarded := false
	for _, d := range descs {
		if _, dup := t.routes[d.Name]; dup {
			return nil, fmt.Errorf("route %q registered twice", d.Name)
		}
		if (d.Redirect == "") == (d.View == nil) {
			return nil, fmt.Errorf("route %q needs exactly one of Redirect or View", d.Name)
		}
		if d.RequiresRole != "" && !domain.IsValidRole(string(d.RequiresRole)) {
			return nil, fmt.Errorf("route %q requires unknown role %q", d.Name, d.RequiresRole)
		}
		if d.RequiresAuth || d.RequiresRole != "" {
			guarded = true
		}
		t.routes[d.Name] = d
		t.order = append(t.order, d.Name)
	}

	for _, d := range descs {
		for _, target := range []RouteName{d.Redirect, d.RedirectIfAuth} {
			if target == "" {
				continue
			}
			if _, ok := t.routes[target]; !ok {
				return nil, fmt.Errorf("route %q points at unknown route %q", d.Name, target)
			}
		}
	}
	if guarded {
		for _, need := range []RouteName{RouteLogin, RouteDashboard} {
			if _, ok := t.routes[need]; !ok {
				return nil, fmt.Errorf("guarded routes need %q registered", need)
			}
		}
	}
	if _, ok := t.routes[fallback]; !ok {
		return nil, fmt.Errorf("fallback route %q is not registered", fallback)
	}

	for _, d := range descs {
		seen := map[RouteName]bool{d.Name: true}
		for cur := d; cur.Redirect != ""; cur = t.routes[cur.Redirect] {
			if seen[cur.Redirect] {
				return nil, fmt.Errorf("redirect cycle through %q", cur.Redirect)
			}
			seen[cur.Redirect] = true
		}
	}
	return t, nil
}

func (t *Table) Get(name RouteName) (Descriptor, bool) {
	d, ok := t.routes[name]
	return d, ok
}

func (t *Table) Fallback() RouteName { return t.fallback }

// Names lists routes in registration order.
func (t *Table) Names() []RouteName {
	return append([]RouteName(nil), t.order...)
}

// DefaultTable registers the full Event Hub route set.
func DefaultTable(fallback RouteName) (*Table, error) {
	return NewTable(fallback,
		Descriptor{Name: RouteIndex, Path: "/", Redirect: RouteDashboard},
		Descriptor{Name: RouteHome, Path: "/home", Title: "Home", View: homeView},
		Descriptor{Name: RouteEvents, Path: "/events", Title: "Events", View: eventsView},
		Descriptor{Name: RouteLogin, Path: "/login", Title: "Login", RedirectIfAuth: RouteDashboard, View: loginView},
		Descriptor{Name: RouteRegister, Path: "/register", Title: "Register", RedirectIfAuth: RouteDashboard, View: registerView},
		Descriptor{Name: RouteDashboard, Path: "/dashboard", Title: "Dashboard", RequiresAuth: true, View: dashboardView},
		Descriptor{Name: RouteProfile, Path: "/profile", Title: "Profile", RequiresAuth: true, View: profileView},
		Descriptor{Name: RouteSettings, Path: "/settings", Title: "Settings", RequiresAuth: true, View: settingsView},
		Descriptor{Name: RouteAdmin, Path: "/admin", Title: "Admin", RequiresAuth: true, RequiresRole: domain.RoleAdmin, View: adminView},
		Descriptor{Name: RouteNotFound, Path: "/404", Title: "Page Not Found", View: notFoundView},
	)
}
