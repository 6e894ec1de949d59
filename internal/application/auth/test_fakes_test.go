package auth

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/event-hub/internal/domain"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users []domain.User

	listErr   error
	createErr error
	updateErr error
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.User(nil), f.users...), nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	u.ID = domain.ID(strconv.Itoa(len(f.users) + 1))
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id domain.ID, in domain.ProfileInput) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return domain.User{}, f.updateErr
	}
	for i := range f.users {
		if f.users[i].ID != id {
			continue
		}
		if in.FirstName != nil {
			f.users[i].FirstName = *in.FirstName
		}
		if in.LastName != nil {
			f.users[i].LastName = *in.LastName
		}
		if in.Email != nil {
			f.users[i].Email = *in.Email
		}
		return f.users[i], nil
	}
	return domain.User{}, domain.ErrNotFound("user")
}

type fakeSessionStore struct {
	sess     *domain.Session
	loadErr  error
	saveErr  error
	clearErr error
	clears   int
}

func (f *fakeSessionStore) Load(ctx context.Context) (*domain.Session, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.sess == nil {
		return nil, nil
	}
	cp := *f.sess
	return &cp, nil
}

func (f *fakeSessionStore) Save(ctx context.Context, s domain.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.sess = &s
	return nil
}

func (f *fakeSessionStore) Clear(ctx context.Context) error {
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.sess = nil
	return nil
}

// fakeHasher prefixes instead of hashing so tests can read the stored value.
type fakeHasher struct{}

func (fakeHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }

func (fakeHasher) Matches(stored, pw string) bool {
	return stored != "" && (stored == pw || stored == "hashed:"+pw)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var testNow = time.Date(2030, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	users    *fakeUserRepo
	sessions *fakeSessionStore
	clock    *fakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	users := &fakeUserRepo{users: []domain.User{
		{ID: "1", Username: "admin", Email: "admin@eventhub.com", Password: "admin123", Role: domain.RoleAdmin, FirstName: "Admin", LastName: "User"},
		{ID: "2", Username: "john_doe", Email: "john@example.com", Password: "password123", Role: domain.RoleUser, FirstName: "John", LastName: "Doe"},
	}}
	sessions := &fakeSessionStore{}
	clock := &fakeClock{t: testNow}
	v := domain.NewValidator(clock.Now, time.UTC)
	svc := NewService(users, sessions, fakeHasher{}, v, clock, Config{})
	return fixture{svc: svc, users: users, sessions: sessions, clock: clock}
}

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}
