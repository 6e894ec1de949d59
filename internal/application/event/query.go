package event

import (
	"sort"
	"strings"
	"time"

	"github.com/baechuer/event-hub/internal/domain"
)

const (
	SortByDate  = "date"
	SortByTitle = "title"
	SortByPrice = "price"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// Filter selects and orders events. Zero values mean "no constraint";
// From and To are inclusive YYYY-MM-DD bounds.
type Filter struct {
	Status        domain.EventStatus `json:"status,omitempty"`
	Category      domain.Category    `json:"category,omitempty"`
	From          string             `json:"from,omitempty"`
	To            string             `json:"to,omitempty"`
	Search        string             `json:"search,omitempty"`
	AvailableOnly bool               `json:"availableOnly,omitempty"`
	SortBy        string             `json:"sortBy,omitempty"`
	SortOrder     string             `json:"sortOrder,omitempty"`
}

func (f Filter) normalized() (Filter, error) {
	if f.SortBy == "" {
		f.SortBy = SortByDate
	}
	if f.SortOrder == "" {
		f.SortOrder = SortAsc
	}
	switch f.SortBy {
	case SortByDate, SortByTitle, SortByPrice:
	default:
		return f, domain.ErrInvalidField("sortBy", "must be one of date, title, price")
	}
	if f.SortOrder != SortAsc && f.SortOrder != SortDesc {
		return f, domain.ErrInvalidField("sortOrder", "must be asc or desc")
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, domain.ErrInvalidField("status", "must be active or inactive")
	}
	for field, v := range map[string]string{"from": f.From, "to": f.To} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, v); err != nil {
			return f, domain.ErrInvalidField(field, "must be a YYYY-MM-DD date")
		}
	}
	f.Search = strings.ToLower(strings.TrimSpace(f.Search))
	return f, nil
}

func (f Filter) match(e domain.Event) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	// YYYY-MM-DD orders lexically
	if f.From != "" && e.Date < f.From {
		return false
	}
	if f.To != "" && e.Date > f.To {
		return false
	}
	if f.AvailableOnly && !e.HasAvailability() {
		return false
	}
	if f.Search != "" {
		hay := strings.ToLower(e.Title + "\n" + e.Description + "\n" + e.Location)
		if !strings.Contains(hay, f.Search) {
			return false
		}
	}
	return true
}

// Events returns a filtered, sorted copy of the cache.
func (s *Service) Events(f Filter) ([]domain.Event, error) {
	f, err := f.normalized()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]domain.Event, 0, len(s.eventCache))
	for _, e := range s.eventCache {
		if f.match(e) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	less := s.lessFunc(f.SortBy)
	desc := f.SortOrder == SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out, nil
}

func (s *Service) lessFunc(by string) func(a, b domain.Event) bool {
	switch by {
	case SortByTitle:
		return func(a, b domain.Event) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case SortByPrice:
		return func(a, b domain.Event) bool { return a.Price < b.Price }
	default:
		return func(a, b domain.Event) bool { return s.startsAt(a).Before(s.startsAt(b)) }
	}
}

// startsAt sorts malformed dates first instead of failing the whole listing.
func (s *Service) startsAt(e domain.Event) time.Time {
	t, err := e.StartsAt(s.loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *Service) EventByID(id domain.ID) (domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.eventCache[i], nil
	}
	return domain.Event{}, domain.ErrNotFound("event")
}

// UserRegistrations joins a user's registrations with their events.
// Registrations whose event is gone are skipped.
func (s *Service) UserRegistrations(userID domain.ID) []domain.RegistrationView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.RegistrationView{}
	for _, r := range s.registrations {
		if r.UserID != userID {
			continue
		}
		i := s.indexOf(r.EventID)
		if i < 0 {
			continue
		}
		out = append(out, domain.RegistrationView{Registration: r, Event: s.eventCache[i]})
	}
	return out
}

func (s *Service) EventRegistrations(eventID domain.ID) []domain.Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Registration{}
	for _, r := range s.registrations {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out
}

func (s *Service) IsUserRegistered(eventID, userID domain.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.findRegistration(eventID, userID)
	return ok
}

func (s *Service) UserCreatedEvents(userID domain.ID) []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Event{}
	for _, e := range s.eventCache {
		if e.CreatedBy == userID {
			out = append(out, e)
		}
	}
	return out
}

func (s *Service) Categories() []domain.Category {
	return domain.Categories()
}

// Statistics aggregates the caches. Upcoming means active and not yet started.
func (s *Service) Statistics() domain.Stats {
	now := s.clock.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := domain.Stats{
		TotalEvents:        len(s.eventCache),
		TotalRegistrations: len(s.registrations),
		CategoryStats:      make(map[domain.Category]int),
	}
	for _, e := range s.eventCache {
		st.CategoryStats[e.Category]++
		if !e.IsActive() {
			continue
		}
		st.ActiveEvents++
		if at, err := e.StartsAt(s.loc); err == nil && at.After(now) {
			st.UpcomingEvents++
		}
	}
	return st
}
