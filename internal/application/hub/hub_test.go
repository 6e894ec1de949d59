package hub_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/event-hub/internal/application/event"
	"github.com/baechuer/event-hub/internal/application/hub"
	"github.com/baechuer/event-hub/internal/application/navigation"
	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/infrastructure/memory"
)

type clock struct{ t time.Time }

func (c clock) Now() time.Time { return c.t }

type users struct{ list []domain.User }

func (u *users) List(context.Context) ([]domain.User, error) { return u.list, nil }

func (u *users) Create(_ context.Context, usr domain.User) (domain.User, error) {
	u.list = append(u.list, usr)
	return usr, nil
}

func (u *users) UpdateProfile(context.Context, domain.ID, domain.ProfileInput) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound("user")
}

type emptyEvents struct{}

func (emptyEvents) List(context.Context) ([]domain.Event, error) { return nil, nil }
func (emptyEvents) Get(context.Context, domain.ID) (domain.Event, error) {
	return domain.Event{}, domain.ErrNotFound("event")
}
func (emptyEvents) Create(_ context.Context, e domain.Event) (domain.Event, error) { return e, nil }
func (emptyEvents) Update(_ context.Context, e domain.Event) (domain.Event, error) { return e, nil }
func (emptyEvents) Delete(context.Context, domain.ID) error { return nil }

type plaintext struct{}

func (plaintext) Hash(pw string) (string, error) { return pw, nil }

func (plaintext) Matches(stored, pw string) bool { return stored == pw }

func newHub(t *testing.T) *hub.Hub {
	t.Helper()
	c := clock{t: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	v := domain.NewValidator(c.Now, time.UTC)
	table, err := navigation.DefaultTable(navigation.RouteNotFound)
	require.NoError(t, err)

	events := event.NewService(event.Deps{
		Events:    emptyEvents{},
		Locker:    memory.NewLocker(),
		Validator: v,
		Clock:     c,
	}, event.Config{})

	return hub.New(hub.Deps{
		Users:     &users{list: []domain.User{{ID: "1", Username: "admin", Email: "admin@hub.io", Password: "admin123", Role: domain.RoleAdmin}}},
		Sessions:  memory.NewSessionStore(),
		Counters:  memory.NewCounters(),
		NavStates: memory.NewNavStates(),
		Hasher:    plaintext{},
		Validator: v,
		Clock:     c,
		Routes:    table,
		Events:    events,
	})
}

func TestHub_Open(t *testing.T) {
	ctx := context.Background()
	h := newHub(t)

	ws, err := h.Open(ctx, "ctx-a")
	require.NoError(t, err)
	assert.False(t, ws.Auth.IsAuthenticated())

	_, err = ws.Auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	_, err = ws.Counter.Incr(ctx)
	require.NoError(t, err)

	t.Run("same_context_restores_session", func(t *testing.T) {
		again, err := h.Open(ctx, "ctx-a")
		require.NoError(t, err)
		assert.True(t, again.Auth.IsAdmin())

		out := again.Router.Navigate(ctx, navigation.RouteAdmin, nil)
		assert.Equal(t, navigation.RouteAdmin, out.Route)

		n, err := again.Counter.Get(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("other_context_is_isolated", func(t *testing.T) {
		other, err := h.Open(ctx, "ctx-b")
		require.NoError(t, err)
		assert.False(t, other.Auth.IsAuthenticated())

		out := other.Router.Navigate(ctx, navigation.RouteAdmin, nil)
		assert.Equal(t, navigation.RouteLogin, out.Route)
	})

	t.Run("router_state_carries_over", func(t *testing.T) {
		again, err := h.Open(ctx, "ctx-a")
		require.NoError(t, err)
		assert.Equal(t, navigation.RouteAdmin, again.Router.Current())
		assert.Equal(t, []navigation.RouteName{navigation.RouteAdmin}, again.Router.History())

		other, err := h.Open(ctx, "ctx-b")
		require.NoError(t, err)
		assert.Equal(t, navigation.RouteLogin, other.Router.Current())
	})
}
