package event

import (
	"context"
	"time"

	"github.com/baechuer/event-hub/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type EventRepo interface {
	List(ctx context.Context) ([]domain.Event, error)
	Get(ctx context.Context, id domain.ID) (domain.Event, error)
	Create(ctx context.Context, e domain.Event) (domain.Event, error)
	Update(ctx context.Context, e domain.Event) (domain.Event, error)
	Delete(ctx context.Context, id domain.ID) error
}

type RegistrationRepo interface {
	List(ctx context.Context) ([]domain.Registration, error)
	// ListByEvent reads the stored registrations of one event. Callers
	// holding the event lock use it instead of the cache.
	ListByEvent(ctx context.Context, eventID domain.ID) ([]domain.Registration, error)
}

// Seats writes a registration together with the attendee count of its event.
// Reserve returns the stored registration and the updated event.
type Seats interface {
	Reserve(ctx context.Context, ev domain.Event, reg domain.Registration) (domain.Registration, domain.Event, error)
	Release(ctx context.Context, ev domain.Event, reg domain.Registration) (domain.Event, error)
}

// Locker serializes work on one key. The returned unlock func must be
// called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

const (
	RKEventCreated          = "event.created"
	RKEventUpdated          = "event.updated"
	RKEventDeleted          = "event.deleted"
	RKRegistrationCreated   = "registration.created"
	RKRegistrationCancelled = "registration.cancelled"
)
