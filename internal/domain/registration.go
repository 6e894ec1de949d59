package domain

import "time"

type RegistrationStatus string

const RegistrationConfirmed RegistrationStatus = "confirmed"

// Registration links one user to one event. (EventID, UserID) is unique.
type Registration struct {
	ID           ID                 `json:"id,omitempty"`
	EventID      ID                 `json:"eventId"`
	UserID       ID                 `json:"userId"`
	RegisteredAt time.Time          `json:"registeredAt"`
	Status       RegistrationStatus `json:"status"`
}

func NewRegistration(eventID, userID ID, now time.Time) Registration {
	return Registration{
		EventID:      eventID,
		UserID:       userID,
		RegisteredAt: now,
		Status:       RegistrationConfirmed,
	}
}

func (r Registration) Matches(eventID, userID ID) bool {
	return r.EventID == eventID && r.UserID == userID
}

// RegistrationView pairs a registration with the event it points at.
type RegistrationView struct {
	Registration
	Event Event `json:"event"`
}

// Stats is an aggregation over the event and registration caches.
type Stats struct {
	TotalEvents        int              `json:"totalEvents"`
	ActiveEvents       int              `json:"activeEvents"`
	UpcomingEvents     int              `json:"upcomingEvents"`
	TotalRegistrations int              `json:"totalRegistrations"`
	CategoryStats      map[Category]int `json:"categoryStats"`
}
