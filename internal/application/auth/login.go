package auth

import (
	"context"
	"strings"

	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/logger"
)

// Login matches username or email plus password against the user list and
// starts a session. Unknown user and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, username, password string) (domain.PublicUser, error) {
	in := domain.LoginInput{Username: strings.TrimSpace(username), Password: password}
	if err := s.validator.Login(in); err != nil {
		return domain.PublicUser{}, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return domain.PublicUser{}, err
	}

	for _, u := range users {
		if !u.MatchesLogin(in.Username) || !s.hasher.Matches(u.Password, in.Password) {
			continue
		}

		sess := domain.NewSession(u.Public(), s.clock.Now(), s.ttl)
		if err := s.sessions.Save(ctx, sess); err != nil {
			return domain.PublicUser{}, domain.ErrInternal(err)
		}
		s.setSession(&sess)

		logger.Ctx(ctx).Info().Str("user_id", u.ID.String()).Msg("login")
		return sess.User, nil
	}

	logger.Ctx(ctx).Info().Str("identifier", in.Username).Msg("login rejected")
	return domain.PublicUser{}, domain.ErrInvalidCredentials()
}
