package domain

import "time"

// Session is the authenticated identity of one browser context.
type Session struct {
	User      PublicUser `json:"user"`
	LoginTime time.Time  `json:"loginTime"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

func NewSession(u PublicUser, now time.Time, ttl time.Duration) Session {
	return Session{User: u, LoginTime: now, ExpiresAt: now.Add(ttl)}
}

// Expired is true once now reaches ExpiresAt.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s Session) Remaining(now time.Time) time.Duration {
	if s.Expired(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}
