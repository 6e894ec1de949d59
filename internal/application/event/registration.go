package event

import (
	"context"
	"errors"

	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/logger"
	"github.com/baechuer/event-hub/internal/metrics"
)

// RegistrationChange is the payload of registration.* messages.
type RegistrationChange struct {
	RegistrationID      domain.ID `json:"registrationId"`
	EventID             domain.ID `json:"eventId"`
	UserID              domain.ID `json:"userId"`
	RegisteredAttendees int       `json:"registeredAttendees"`
	Capacity            int       `json:"capacity"`
}

// subject resolves whose registration is being changed. Acting for someone
// else needs manage_users.
func subject(actor domain.Actor, userID domain.ID) (domain.ID, error) {
	if !actor.Authenticated() {
		return "", domain.ErrNotAuthenticated()
	}
	if userID.IsZero() || userID == actor.ID {
		return actor.ID, nil
	}
	if !actor.Can(domain.PermManageUsers) {
		return "", domain.ErrPermissionDenied(domain.PermManageUsers)
	}
	return userID, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return domain.CodeInternal
}

// RegisterForEvent books a seat. Checks run in a fixed order: unknown event,
// inactive, full, already registered, already started.
func (s *Service) RegisterForEvent(ctx context.Context, actor domain.Actor, eventID, userID domain.ID) (domain.Registration, error) {
	reg, ev, err := s.register(ctx, actor, eventID, userID)
	metrics.RecordRegistration("register", outcome(err))
	if err != nil {
		return domain.Registration{}, err
	}

	logger.Ctx(ctx).Info().
		Str("event_id", ev.ID.String()).
		Str("user_id", reg.UserID.String()).
		Int("attendees", ev.RegisteredAttendees).
		Msg("registered for event")
	s.publish(ctx, RKRegistrationCreated, RegistrationChange{
		RegistrationID:      reg.ID,
		EventID:             ev.ID,
		UserID:              reg.UserID,
		RegisteredAttendees: ev.RegisteredAttendees,
		Capacity:            ev.Capacity,
	})
	return reg, nil
}

func (s *Service) register(ctx context.Context, actor domain.Actor, eventID, userID domain.ID) (domain.Registration, domain.Event, error) {
	uid, err := subject(actor, userID)
	if err != nil {
		return domain.Registration{}, domain.Event{}, err
	}

	unlock, err := s.locker.Lock(ctx, eventLockKey(eventID))
	if err != nil {
		return domain.Registration{}, domain.Event{}, err
	}
	defer unlock()

	ev, err := s.fresh(ctx, eventID)
	if err != nil {
		return domain.Registration{}, domain.Event{}, err
	}
	if !ev.IsActive() {
		return domain.Registration{}, domain.Event{}, domain.ErrEventInactive()
	}
	if ev.IsFull() {
		return domain.Registration{}, domain.Event{}, domain.ErrEventFull()
	}
	_, taken, err := s.storedRegistration(ctx, eventID, uid)
	if err != nil {
		return domain.Registration{}, domain.Event{}, err
	}
	if taken {
		return domain.Registration{}, domain.Event{}, domain.ErrAlreadyRegistered()
	}
	now := s.clock.Now()
	start, err := ev.StartsAt(s.loc)
	if err != nil {
		return domain.Registration{}, domain.Event{}, domain.ErrInternal(err)
	}
	if !start.After(now) {
		return domain.Registration{}, domain.Event{}, domain.ErrEventInPast()
	}

	reg, updated, err := s.seats.Reserve(ctx, ev, domain.NewRegistration(ev.ID, uid, now))
	if err != nil {
		return domain.Registration{}, domain.Event{}, err
	}

	s.mu.Lock()
	s.gen++
	s.registrations = append(s.registrations, reg)
	s.putEvent(updated)
	s.mu.Unlock()
	return reg, updated, nil
}

// UnregisterFromEvent cancels a registration unless the event starts within
// the cancel window.
func (s *Service) UnregisterFromEvent(ctx context.Context, actor domain.Actor, eventID, userID domain.ID) error {
	reg, ev, err := s.unregister(ctx, actor, eventID, userID)
	metrics.RecordRegistration("unregister", outcome(err))
	if err != nil {
		return err
	}

	logger.Ctx(ctx).Info().
		Str("event_id", ev.ID.String()).
		Str("user_id", reg.UserID.String()).
		Int("attendees", ev.RegisteredAttendees).
		Msg("unregistered from event")
	s.publish(ctx, RKRegistrationCancelled, RegistrationChange{
		RegistrationID:      reg.ID,
		EventID:             ev.ID,
		UserID:              reg.UserID,
		RegisteredAttendees: ev.RegisteredAttendees,
		Capacity:            ev.Capacity,
	})
	return nil
}

func (s *Service) unregister(ctx context.Context, actor domain.Actor, eventID, userID domain.ID) (domain.Registration, domain.Event, error) {
	uid, err := subject(actor, userID)
	if err != nil {
		return domain.Registration{}, domain.Event{}, err
	}

	unlock, err := s.locker.Lock(ctx, eventLockKey(eventID))
	if err != nil {
		return domain.Registration{}, domain.Event{}, err
	}
	defer unlock()

	ev, err := s.fresh(ctx, eventID)
	if err != nil {
		return domain.Registration{}, domain.Event{}, err
	}

	reg, ok, err := s.storedRegistration(ctx, eventID, uid)
	if err != nil {
		return domain.Registration{}, domain.Event{}, err
	}
	if !ok {
		return domain.Registration{}, domain.Event{}, domain.ErrNotFound("registration")
	}

	start, err := ev.StartsAt(s.loc)
	if err != nil {
		return domain.Registration{}, domain.Event{}, domain.ErrInternal(err)
	}
	if start.Sub(s.clock.Now()) < s.cancelWindow {
		return domain.Registration{}, domain.Event{}, domain.ErrTooLateToCancel()
	}

	updated, err := s.seats.Release(ctx, ev, reg)
	if err != nil {
		return domain.Registration{}, domain.Event{}, err
	}

	s.mu.Lock()
	s.gen++
	for i := range s.registrations {
		if s.registrations[i].ID == reg.ID {
			s.registrations = append(s.registrations[:i], s.registrations[i+1:]...)
			break
		}
	}
	s.putEvent(updated)
	s.mu.Unlock()
	return reg, updated, nil
}

// fresh re-reads the event from the store and refreshes the cache, so the
// seat count used under the lock is the one other instances wrote.
func (s *Service) fresh(ctx context.Context, id domain.ID) (domain.Event, error) {
	ev, err := s.events.Get(ctx, id)
	if err != nil {
		if domain.Is(err, domain.CodeNotFound) {
			s.mu.Lock()
			s.removeEvent(id)
			s.mu.Unlock()
		}
		return domain.Event{}, err
	}
	s.mu.Lock()
	s.putEvent(ev)
	s.mu.Unlock()
	return ev, nil
}

// storedRegistration looks up the (event, user) registration in the store and
// resyncs the event's cached registrations with what it found. Callers hold
// the event lock.
func (s *Service) storedRegistration(ctx context.Context, eventID, userID domain.ID) (domain.Registration, bool, error) {
	stored, err := s.regs.ListByEvent(ctx, eventID)
	if err != nil {
		return domain.Registration{}, false, err
	}

	s.mu.Lock()
	s.syncRegistrations(eventID, stored)
	s.mu.Unlock()

	for _, r := range stored {
		if r.Matches(eventID, userID) {
			return r, true, nil
		}
	}
	return domain.Registration{}, false, nil
}
