package navigation

import (
	"context"
	"strconv"

	"github.com/baechuer/event-hub/internal/application/event"
	"github.com/baechuer/event-hub/internal/domain"
)

const featuredCount = 3

type HomeView struct {
	User     *domain.PublicUser `json:"user,omitempty"`
	Featured []domain.Event     `json:"featured"`
	Stats    domain.Stats       `json:"stats"`
}

type EventsView struct {
	Events     []domain.Event     `json:"events"`
	Categories []domain.Category  `json:"categories"`
	Filter     event.Filter       `json:"filter"`
	Registered map[domain.ID]bool `json:"registered,omitempty"`
}

type FormView struct {
	Form   string   `json:"form"`
	Fields []string `json:"fields"`
}

type DashboardView struct {
	User          domain.PublicUser         `json:"user"`
	Registrations []domain.RegistrationView `json:"registrations"`
	CreatedEvents []domain.Event            `json:"createdEvents,omitempty"`
	Stats         domain.Stats              `json:"stats"`
}

type ProfileView struct {
	User              domain.PublicUser `json:"user"`
	RegistrationCount int               `json:"registrationCount"`
}

type SettingsView struct {
	User        domain.PublicUser   `json:"user"`
	Permissions []domain.Permission `json:"permissions"`
}

type AdminView struct {
	Stats      domain.Stats      `json:"stats"`
	Events     []domain.Event    `json:"events"`
	Categories []domain.Category `json:"categories"`
}

type NotFoundView struct {
	Message string `json:"message"`
}

func currentUser(svc Services) (*domain.PublicUser, bool) {
	u, ok := svc.Auth.CurrentUser()
	if !ok {
		return nil, false
	}
	return &u, true
}

func homeView(ctx context.Context, svc Services, p Params) (any, error) {
	upcoming, err := svc.Events.Events(event.Filter{Status: domain.StatusActive, AvailableOnly: true})
	if err != nil {
		return nil, err
	}
	if len(upcoming) > featuredCount {
		upcoming = upcoming[:featuredCount]
	}
	u, _ := currentUser(svc)
	return HomeView{User: u, Featured: upcoming, Stats: svc.Events.Statistics()}, nil
}

func filterFromParams(p Params) event.Filter {
	available, _ := strconv.ParseBool(p["available"])
	return event.Filter{
		Status:        domain.EventStatus(p["status"]),
		Category:      domain.Category(p["category"]),
		From:          p["from"],
		To:            p["to"],
		Search:        p["search"],
		AvailableOnly: available,
		SortBy:        p["sortBy"],
		SortOrder:     p["sortOrder"],
	}
}

func eventsView(ctx context.Context, svc Services, p Params) (any, error) {
	f := filterFromParams(p)
	events, err := svc.Events.Events(f)
	if err != nil {
		return nil, err
	}
	v := EventsView{Events: events, Categories: svc.Events.Categories(), Filter: f}
	if u, ok := currentUser(svc); ok {
		v.Registered = make(map[domain.ID]bool)
		for _, r := range svc.Events.UserRegistrations(u.ID) {
			v.Registered[r.EventID] = true
		}
	}
	return v, nil
}

func loginView(ctx context.Context, svc Services, p Params) (any, error) {
	return FormView{Form: "login", Fields: []string{"username", "password"}}, nil
}

func registerView(ctx context.Context, svc Services, p Params) (any, error) {
	return FormView{
		Form:   "register",
		Fields: []string{"firstName", "lastName", "username", "email", "password", "confirmPassword"},
	}, nil
}

func dashboardView(ctx context.Context, svc Services, p Params) (any, error) {
	u, ok := currentUser(svc)
	if !ok {
		return nil, domain.ErrNotAuthenticated()
	}
	v := DashboardView{
		User:          *u,
		Registrations: svc.Events.UserRegistrations(u.ID),
		Stats:         svc.Events.Statistics(),
	}
	if domain.HasPermission(u.Role, domain.PermCreateEvent) {
		v.CreatedEvents = svc.Events.UserCreatedEvents(u.ID)
	}
	return v, nil
}

func profileView(ctx context.Context, svc Services, p Params) (any, error) {
	u, ok := currentUser(svc)
	if !ok {
		return nil, domain.ErrNotAuthenticated()
	}
	return ProfileView{User: *u, RegistrationCount: len(svc.Events.UserRegistrations(u.ID))}, nil
}

func settingsView(ctx context.Context, svc Services, p Params) (any, error) {
	u, ok := currentUser(svc)
	if !ok {
		return nil, domain.ErrNotAuthenticated()
	}
	return SettingsView{User: *u, Permissions: domain.Permissions(u.Role)}, nil
}

func adminView(ctx context.Context, svc Services, p Params) (any, error) {
	events, err := svc.Events.Events(event.Filter{})
	if err != nil {
		return nil, err
	}
	return AdminView{Stats: svc.Events.Statistics(), Events: events, Categories: svc.Events.Categories()}, nil
}

func notFoundView(ctx context.Context, svc Services, p Params) (any, error) {
	return NotFoundView{Message: "The page you are looking for does not exist."}, nil
}
