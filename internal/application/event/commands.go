package event

import (
	"context"
	"fmt"

	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/logger"
)

type CreateCmd struct {
	domain.EventInput
	// Status defaults to active.
	Status domain.EventStatus
}

type UpdateCmd struct {
	ID    domain.ID
	Patch domain.EventPatch
}

func canManage(actor domain.Actor, perm domain.Permission, e domain.Event) bool {
	if actor.Can(perm) {
		return true
	}
	return actor.Authenticated() && e.CreatedBy == actor.ID
}

func (s *Service) CreateEvent(ctx context.Context, actor domain.Actor, cmd CreateCmd) (domain.Event, error) {
	if !actor.Can(domain.PermCreateEvent) {
		return domain.Event{}, domain.ErrPermissionDenied(domain.PermCreateEvent)
	}

	in := cmd.EventInput.Trimmed()
	if err := s.validator.Event(in); err != nil {
		return domain.Event{}, err
	}
	status := cmd.Status
	if status == "" {
		status = domain.StatusActive
	}
	if !status.Valid() {
		return domain.Event{}, domain.ErrInvalidField("status", "must be active or inactive")
	}

	created, err := s.events.Create(ctx, domain.Event{
		Title:       domain.SanitizeText(in.Title),
		Description: domain.SanitizeText(in.Description),
		Date:        in.Date,
		Time:        in.Time,
		Location:    domain.SanitizeText(in.Location),
		Capacity:    in.Capacity,
		Price:       in.Price,
		Category:    in.Category,
		Status:      status,
		CreatedBy:   actor.ID,
		CreatedAt:   s.clock.Now(),
	})
	if err != nil {
		return domain.Event{}, err
	}

	s.mu.Lock()
	s.putEvent(created)
	s.mu.Unlock()

	logger.Ctx(ctx).Info().Str("event_id", created.ID.String()).Str("actor_id", actor.ID.String()).Msg("event created")
	s.publish(ctx, RKEventCreated, created)
	return created, nil
}

// UpdateEvent merges the patch into the cached event and writes the result.
// It holds the event lock so capacity cannot drop below a concurrent booking.
func (s *Service) UpdateEvent(ctx context.Context, actor domain.Actor, cmd UpdateCmd) (domain.Event, error) {
	unlock, err := s.locker.Lock(ctx, eventLockKey(cmd.ID))
	if err != nil {
		return domain.Event{}, err
	}
	updated, err := s.updateLocked(ctx, actor, cmd)
	unlock()
	if err != nil {
		return domain.Event{}, err
	}

	logger.Ctx(ctx).Info().Str("event_id", updated.ID.String()).Str("actor_id", actor.ID.String()).Msg("event updated")
	s.publish(ctx, RKEventUpdated, updated)
	return updated, nil
}

func (s *Service) updateLocked(ctx context.Context, actor domain.Actor, cmd UpdateCmd) (domain.Event, error) {
	cur, err := s.fresh(ctx, cmd.ID)
	if err != nil {
		return domain.Event{}, err
	}
	if !canManage(actor, domain.PermEditEvent, cur) {
		return domain.Event{}, domain.ErrPermissionDenied(domain.PermEditEvent)
	}
	if cmd.Patch.Empty() {
		return domain.Event{}, domain.ErrValidation("nothing to update", nil)
	}

	merged := cur
	cmd.Patch.Apply(&merged)
	if err := s.validator.EventChange(merged.Input(), merged.Date != cur.Date); err != nil {
		return domain.Event{}, err
	}
	if !merged.Status.Valid() {
		return domain.Event{}, domain.ErrInvalidField("status", "must be active or inactive")
	}
	if merged.Capacity < merged.RegisteredAttendees {
		return domain.Event{}, domain.ErrInvalidField("capacity",
			fmt.Sprintf("must be at least the %d registered attendees", merged.RegisteredAttendees))
	}

	// only freshly supplied text is escaped; cached text already is
	if cmd.Patch.Title != nil {
		merged.Title = domain.SanitizeText(merged.Title)
	}
	if cmd.Patch.Description != nil {
		merged.Description = domain.SanitizeText(merged.Description)
	}
	if cmd.Patch.Location != nil {
		merged.Location = domain.SanitizeText(merged.Location)
	}
	now := s.clock.Now()
	merged.UpdatedAt = &now

	updated, err := s.events.Update(ctx, merged)
	if err != nil {
		return domain.Event{}, err
	}

	s.mu.Lock()
	s.putEvent(updated)
	s.mu.Unlock()
	return updated, nil
}

// DeleteEvent refuses while any stored registration references the event.
func (s *Service) DeleteEvent(ctx context.Context, actor domain.Actor, id domain.ID) error {
	unlock, err := s.locker.Lock(ctx, eventLockKey(id))
	if err != nil {
		return err
	}
	err = s.deleteLocked(ctx, actor, id)
	unlock()
	if err != nil {
		return err
	}

	logger.Ctx(ctx).Info().Str("event_id", id.String()).Str("actor_id", actor.ID.String()).Msg("event deleted")
	s.publish(ctx, RKEventDeleted, map[string]domain.ID{"id": id})
	return nil
}

func (s *Service) deleteLocked(ctx context.Context, actor domain.Actor, id domain.ID) error {
	cur, err := s.fresh(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(actor, domain.PermDeleteEvent, cur) {
		return domain.ErrPermissionDenied(domain.PermDeleteEvent)
	}

	// the cache may miss registrations written by other instances
	stored, err := s.regs.ListByEvent(ctx, id)
	if err != nil {
		return err
	}
	if len(stored) > 0 {
		s.mu.Lock()
		s.syncRegistrations(id, stored)
		s.mu.Unlock()
		return domain.ErrHasRegistrations(len(stored))
	}

	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.removeEvent(id)
	s.syncRegistrations(id, nil)
	s.mu.Unlock()
	return nil
}
