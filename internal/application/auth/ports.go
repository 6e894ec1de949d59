package auth

import (
	"context"
	"time"

	"github.com/baechuer/event-hub/internal/domain"
)

/*
UserRepo
--------
Persistence port for users (REST backend or Postgres).
*/
type UserRepo interface {
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
	UpdateProfile(ctx context.Context, id domain.ID, in domain.ProfileInput) (domain.User, error)
}

/*
SessionStore
------------
Holds the session of ONE browser context. Load returns (nil, nil) when
nothing is stored.
*/
type SessionStore interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, s domain.Session) error
	Clear(ctx context.Context) error
}

// SessionStores scopes a shared backing store to one browser context.
type SessionStores interface {
	For(contextID string) SessionStore
}

/*
PasswordHasher
--------------
Matches also accepts legacy plaintext fixtures.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(stored, password string) bool
}

type Clock interface {
	Now() time.Time
}
