package auth

import (
	"context"

	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/logger"
)

// Register creates a user with role user. It does not log them in.
func (s *Service) Register(ctx context.Context, in domain.RegistrationInput) (domain.PublicUser, error) {
	in = in.Trimmed()
	if err := s.validator.Registration(in); err != nil {
		return domain.PublicUser{}, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return domain.PublicUser{}, err
	}
	for _, u := range users {
		if field, clash := u.Conflicts(in.Username, in.Email); clash {
			return domain.PublicUser{}, domain.ErrDuplicateUser(field)
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.PublicUser{}, err
	}

	created, err := s.users.Create(ctx, domain.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      domain.RoleUser,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		return domain.PublicUser{}, err
	}

	logger.Ctx(ctx).Info().Str("user_id", created.ID.String()).Msg("user registered")
	return created.Public(), nil
}
