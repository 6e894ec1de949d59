package auth

import (
	"sync"
	"time"

	"github.com/baechuer/event-hub/internal/domain"
)

const DefaultSessionTTL = 24 * time.Hour

type Config struct {
	SessionTTL time.Duration
}

// Service is the authentication state of one browser context.
type Service struct {
	users     UserRepo
	sessions  SessionStore
	hasher    PasswordHasher
	validator *domain.Validator
	clock     Clock
	ttl       time.Duration

	mu      sync.RWMutex
	session *domain.Session
}

func NewService(
	users UserRepo,
	sessions SessionStore,
	hasher PasswordHasher,
	validator *domain.Validator,
	clock Clock,
	cfg Config,
) *Service {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		validator: validator,
		clock:     clock,
		ttl:       ttl,
	}
}

// live returns the in-memory session unless it has expired. Caller holds mu.
func (s *Service) live() *domain.Session {
	if s.session == nil || s.session.Expired(s.clock.Now()) {
		return nil
	}
	return s.session
}

func (s *Service) setSession(sess *domain.Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
}

func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live() != nil
}

// CurrentUser returns the logged-in user, if any.
func (s *Service) CurrentUser() (domain.PublicUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess := s.live(); sess != nil {
		return sess.User, true
	}
	return domain.PublicUser{}, false
}

// Session returns a copy of the live session.
func (s *Service) Session() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess := s.live(); sess != nil {
		return *sess, true
	}
	return domain.Session{}, false
}

func (s *Service) IsAdmin() bool {
	u, ok := s.CurrentUser()
	return ok && u.Role == domain.RoleAdmin
}

func (s *Service) HasPermission(p domain.Permission) bool {
	u, ok := s.CurrentUser()
	return ok && domain.HasPermission(u.Role, p)
}

// Actor is the zero Actor when nobody is logged in.
func (s *Service) Actor() domain.Actor {
	u, ok := s.CurrentUser()
	if !ok {
		return domain.Actor{}
	}
	return domain.Actor{ID: u.ID, Role: u.Role}
}
