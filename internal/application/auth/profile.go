package auth

import (
	"context"
	"strings"

	"github.com/baechuer/event-hub/internal/domain"
)

// UpdateProfile patches name and email of the logged-in user and refreshes
// the session copy of the user.
func (s *Service) UpdateProfile(ctx context.Context, in domain.ProfileInput) (domain.PublicUser, error) {
	cur, ok := s.Session()
	if !ok {
		return domain.PublicUser{}, domain.ErrNotAuthenticated()
	}

	in = trimProfile(in)
	if in.Empty() {
		return domain.PublicUser{}, domain.ErrValidation("nothing to update", nil)
	}
	if err := s.validator.Profile(in); err != nil {
		return domain.PublicUser{}, err
	}

	if in.Email != nil && !strings.EqualFold(*in.Email, cur.User.Email) {
		users, err := s.users.List(ctx)
		if err != nil {
			return domain.PublicUser{}, err
		}
		for _, u := range users {
			if u.ID != cur.User.ID && strings.EqualFold(u.Email, *in.Email) {
				return domain.PublicUser{}, domain.ErrDuplicateUser("email")
			}
		}
	}

	updated, err := s.users.UpdateProfile(ctx, cur.User.ID, in)
	if err != nil {
		return domain.PublicUser{}, err
	}

	cur.User = updated.Public()
	if err := s.sessions.Save(ctx, cur); err != nil {
		return domain.PublicUser{}, domain.ErrInternal(err)
	}
	s.setSession(&cur)
	return cur.User, nil
}

func trimProfile(in domain.ProfileInput) domain.ProfileInput {
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		return &v
	}
	in.FirstName = trim(in.FirstName)
	in.LastName = trim(in.LastName)
	in.Email = trim(in.Email)
	return in
}
