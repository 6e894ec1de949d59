package event

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/logger"
)

const DefaultCancelWindow = 24 * time.Hour

type Deps struct {
	Events        EventRepo
	Registrations RegistrationRepo
	Seats         Seats
	Locker        Locker
	Publisher     EventPublisher
	Validator     *domain.Validator
	Clock         Clock
}

type Config struct {
	Location     *time.Location
	CancelWindow time.Duration
}

// Service owns the process-wide event and registration caches.
type Service struct {
	events    EventRepo
	regs      RegistrationRepo
	seats     Seats
	locker    Locker
	pub       EventPublisher
	validator *domain.Validator
	clock     Clock

	loc          *time.Location
	cancelWindow time.Duration

	mu            sync.RWMutex
	eventCache    []domain.Event
	registrations []domain.Registration
	// gen counts cache writes; Load uses it to spot writes made while it fetched.
	gen uint64
}

func NewService(deps Deps, cfg Config) *Service {
	if deps.Publisher == nil {
		deps.Publisher = NoopPublisher{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CancelWindow <= 0 {
		cfg.CancelWindow = DefaultCancelWindow
	}
	return &Service{
		events:       deps.Events,
		regs:         deps.Registrations,
		seats:        deps.Seats,
		locker:       deps.Locker,
		pub:          deps.Publisher,
		validator:    deps.Validator,
		clock:        deps.Clock,
		loc:          cfg.Location,
		cancelWindow: cfg.CancelWindow,
	}
}

const loadAttempts = 3

// Load replaces both caches from the store. A failed load keeps whatever the
// caches held before, so a refresh outage never hides stored registrations.
// A load that raced with a write is discarded and fetched again.
func (s *Service) Load(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		s.mu.RLock()
		gen := s.gen
		s.mu.RUnlock()

		events, regs, err := s.fetchAll(ctx)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("event cache load failed; keeping previous caches")
			return err
		}

		s.mu.Lock()
		if s.gen == gen {
			s.eventCache = events
			s.registrations = regs
			s.gen++
			s.mu.Unlock()
			logger.Ctx(ctx).Debug().Int("events", len(events)).Int("registrations", len(regs)).Msg("event caches loaded")
			return nil
		}
		s.mu.Unlock()

		if attempt >= loadAttempts {
			logger.Ctx(ctx).Warn().Int("attempts", attempt).Msg("event caches changed during every load; keeping current caches")
			return nil
		}
	}
}

func (s *Service) fetchAll(ctx context.Context) ([]domain.Event, []domain.Registration, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	regs, err := s.regs.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return events, regs, nil
}

func (s *Service) publish(ctx context.Context, routingKey string, payload any) {
	if err := s.pub.Publish(ctx, routingKey, payload); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("routing_key", routingKey).Msg("publish failed")
	}
}

// --- cache helpers; callers hold mu ---

func (s *Service) indexOf(id domain.ID) int {
	for i := range s.eventCache {
		if s.eventCache[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) putEvent(e domain.Event) {
	s.gen++
	if i := s.indexOf(e.ID); i >= 0 {
		s.eventCache[i] = e
		return
	}
	s.eventCache = append(s.eventCache, e)
}

func (s *Service) removeEvent(id domain.ID) {
	s.gen++
	if i := s.indexOf(id); i >= 0 {
		s.eventCache = append(s.eventCache[:i], s.eventCache[i+1:]...)
	}
}

// syncRegistrations replaces the cached registrations of one event with the
// stored ones.
func (s *Service) syncRegistrations(eventID domain.ID, stored []domain.Registration) {
	s.gen++
	kept := make([]domain.Registration, 0, len(s.registrations)+len(stored))
	for _, r := range s.registrations {
		if r.EventID != eventID {
			kept = append(kept, r)
		}
	}
	s.registrations = append(kept, stored...)
}

func (s *Service) findRegistration(eventID, userID domain.ID) (domain.Registration, bool) {
	for _, r := range s.registrations {
		if r.Matches(eventID, userID) {
			return r, true
		}
	}
	return domain.Registration{}, false
}

func eventLockKey(id domain.ID) string { return "event:" + id.String() }
