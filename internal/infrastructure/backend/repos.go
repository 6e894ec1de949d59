package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/baechuer/event-hub/internal/domain"
)

func itemPath(collection string, id domain.ID) string {
	return "/" + collection + "/" + url.PathEscape(id.String())
}

// mapStatus turns a backend 4xx into a domain error. 404 is NotFound for
// resource; 400, 409 and 422 mean the backend refused the payload. Any other
// 4xx means the backend is not the json-server we expect.
func mapStatus(err error, resource string) error {
	var se *StatusError
	if !errors.As(err, &se) || !se.ClientError() {
		return err
	}
	switch se.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound(resource)
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return domain.ErrBackendRejected(err)
	default:
		return domain.ErrBackendUnavailable(err)
	}
}

// UserRepo reads and writes /users.
type UserRepo struct{ c *Client }

func NewUserRepo(c *Client) *UserRepo { return &UserRepo{c: c} }

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := r.c.Get(ctx, "/users", &out); err != nil {
		return nil, mapStatus(err, "user")
	}
	return out, nil
}

func (r *UserRepo) Get(ctx context.Context, id domain.ID) (domain.User, error) {
	var out domain.User
	if err := r.c.Get(ctx, itemPath("users", id), &out); err != nil {
		return domain.User{}, mapStatus(err, "user")
	}
	return out, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	var out domain.User
	if err := r.c.Post(ctx, "/users", u, &out); err != nil {
		return domain.User{}, mapStatus(err, "user")
	}
	return out, nil
}

// UpdateProfile patches only the profile fields so the stored password survives.
func (r *UserRepo) UpdateProfile(ctx context.Context, id domain.ID, in domain.ProfileInput) (domain.User, error) {
	var out domain.User
	if err := r.c.Patch(ctx, itemPath("users", id), in, &out); err != nil {
		return domain.User{}, mapStatus(err, "user")
	}
	return out, nil
}

// EventRepo reads and writes /events.
type EventRepo struct{ c *Client }

func NewEventRepo(c *Client) *EventRepo { return &EventRepo{c: c} }

func (r *EventRepo) List(ctx context.Context) ([]domain.Event, error) {
	var out []domain.Event
	if err := r.c.Get(ctx, "/events", &out); err != nil {
		return nil, mapStatus(err, "event")
	}
	return out, nil
}

func (r *EventRepo) Get(ctx context.Context, id domain.ID) (domain.Event, error) {
	var out domain.Event
	if err := r.c.Get(ctx, itemPath("events", id), &out); err != nil {
		return domain.Event{}, mapStatus(err, "event")
	}
	return out, nil
}

func (r *EventRepo) Create(ctx context.Context, e domain.Event) (domain.Event, error) {
	var out domain.Event
	if err := r.c.Post(ctx, "/events", e, &out); err != nil {
		return domain.Event{}, mapStatus(err, "event")
	}
	return out, nil
}

// Update replaces the whole record.
func (r *EventRepo) Update(ctx context.Context, e domain.Event) (domain.Event, error) {
	var out domain.Event
	if err := r.c.Put(ctx, itemPath("events", e.ID), e, &out); err != nil {
		return domain.Event{}, mapStatus(err, "event")
	}
	return out, nil
}

func (r *EventRepo) Delete(ctx context.Context, id domain.ID) error {
	return mapStatus(r.c.Delete(ctx, itemPath("events", id)), "event")
}

// SetAttendees writes the denormalized registration counter.
func (r *EventRepo) SetAttendees(ctx context.Context, id domain.ID, n int) (domain.Event, error) {
	var out domain.Event
	body := map[string]int{"registeredAttendees": n}
	if err := r.c.Patch(ctx, itemPath("events", id), body, &out); err != nil {
		return domain.Event{}, mapStatus(err, "event")
	}
	return out, nil
}

// RegistrationRepo reads and writes /registrations.
type RegistrationRepo struct{ c *Client }

func NewRegistrationRepo(c *Client) *RegistrationRepo { return &RegistrationRepo{c: c} }

func (r *RegistrationRepo) List(ctx context.Context) ([]domain.Registration, error) {
	var out []domain.Registration
	if err := r.c.Get(ctx, "/registrations", &out); err != nil {
		return nil, mapStatus(err, "registration")
	}
	return out, nil
}

// ListByEvent filters server side with json-server's field query.
func (r *RegistrationRepo) ListByEvent(ctx context.Context, eventID domain.ID) ([]domain.Registration, error) {
	q := url.Values{"eventId": {eventID.String()}}
	var out []domain.Registration
	if err := r.c.Get(ctx, "/registrations?"+q.Encode(), &out); err != nil {
		return nil, mapStatus(err, "registration")
	}
	// a backend that ignores the query returns every registration
	kept := out[:0]
	for _, reg := range out {
		if reg.EventID == eventID {
			kept = append(kept, reg)
		}
	}
	return kept, nil
}

func (r *RegistrationRepo) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	var out domain.Registration
	if err := r.c.Post(ctx, "/registrations", reg, &out); err != nil {
		return domain.Registration{}, mapStatus(err, "registration")
	}
	return out, nil
}

func (r *RegistrationRepo) Delete(ctx context.Context, id domain.ID) error {
	return mapStatus(r.c.Delete(ctx, itemPath("registrations", id)), "registration")
}
