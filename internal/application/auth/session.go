package auth

import (
	"context"

	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/logger"
)

// Logout drops the in-memory session first, then the stored one.
// Calling it without a session is fine.
func (s *Service) Logout(ctx context.Context) error {
	s.setSession(nil)
	if err := s.sessions.Clear(ctx); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("session clear failed")
		return domain.ErrInternal(err)
	}
	return nil
}

// Restore loads the persisted session. Absent, expired and unreadable
// records all leave the context unauthenticated without an error.
func (s *Service) Restore(ctx context.Context) error {
	sess, err := s.sessions.Load(ctx)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("unreadable session discarded")
		s.clearStored(ctx)
		s.setSession(nil)
		return nil
	}
	if sess == nil {
		s.setSession(nil)
		return nil
	}
	if sess.Expired(s.clock.Now()) {
		s.clearStored(ctx)
		s.setSession(nil)
		return nil
	}
	s.setSession(sess)
	return nil
}

func (s *Service) clearStored(ctx context.Context) {
	if err := s.sessions.Clear(ctx); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("session clear failed")
	}
}

// RefreshSession pushes ExpiresAt to now + TTL.
func (s *Service) RefreshSession(ctx context.Context) (domain.Session, error) {
	cur, ok := s.Session()
	if !ok {
		return domain.Session{}, domain.ErrNotAuthenticated()
	}

	cur.ExpiresAt = s.clock.Now().Add(s.ttl)
	if err := s.sessions.Save(ctx, cur); err != nil {
		return domain.Session{}, domain.ErrInternal(err)
	}
	s.setSession(&cur)
	return cur, nil
}
