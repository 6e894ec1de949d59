package backend

import (
	"context"
	"fmt"

	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/logger"
)

// Seats books seats against the REST backend. The backend has no
// transactions, so a reservation is two writes: the registration, then the
// counter. A failed counter write deletes the registration again. Callers
// serialize per event (see event.Locker) so the capacity check they made
// still holds when these writes land.
type Seats struct {
	events *EventRepo
	regs   *RegistrationRepo
}

func NewSeats(events *EventRepo, regs *RegistrationRepo) *Seats {
	return &Seats{events: events, regs: regs}
}

func (s *Seats) Reserve(ctx context.Context, ev domain.Event, reg domain.Registration) (domain.Registration, domain.Event, error) {
	created, err := s.regs.Create(ctx, reg)
	if err != nil {
		return domain.Registration{}, domain.Event{}, err
	}

	updated, err := s.events.SetAttendees(ctx, ev.ID, ev.RegisteredAttendees+1)
	if err != nil {
		if cerr := s.regs.Delete(context.WithoutCancel(ctx), created.ID); cerr != nil {
			logger.Ctx(ctx).Error().Err(cerr).
				Str("event_id", ev.ID.String()).
				Str("registration_id", created.ID.String()).
				Msg("compensating registration delete failed")
		}
		return domain.Registration{}, domain.Event{}, fmt.Errorf("update attendee count: %w", err)
	}
	return created, updated, nil
}

func (s *Seats) Release(ctx context.Context, ev domain.Event, reg domain.Registration) (domain.Event, error) {
	if err := s.regs.Delete(ctx, reg.ID); err != nil {
		return domain.Event{}, err
	}

	n := ev.RegisteredAttendees - 1
	if n < 0 {
		n = 0
	}
	updated, err := s.events.SetAttendees(ctx, ev.ID, n)
	if err != nil {
		// The registration is gone; report the stale counter but keep going.
		logger.Ctx(ctx).Error().Err(err).
			Str("event_id", ev.ID.String()).
			Int("want_attendees", n).
			Msg("attendee count update after unregister failed")
		ev.RegisteredAttendees = n
		return ev, nil
	}
	return updated, nil
}
