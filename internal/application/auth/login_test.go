package auth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/event-hub/internal/domain"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("by_username_starts_session", func(t *testing.T) {
		f := newFixture(t)
		u, err := f.svc.Login(ctx, "  admin ", "admin123")
		require.NoError(t, err)
		assert.Equal(t, "admin", u.Username)

		assert.True(t, f.svc.IsAuthenticated())
		assert.True(t, f.svc.IsAdmin())
		require.NotNil(t, f.sessions.sess)
		assert.Equal(t, testNow.Add(24*time.Hour), f.sessions.sess.ExpiresAt)
		assert.Equal(t, testNow, f.sessions.sess.LoginTime)
	})

	t.Run("by_email", func(t *testing.T) {
		f := newFixture(t)
		u, err := f.svc.Login(ctx, "john@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, domain.ID("2"), u.ID)
		assert.False(t, f.svc.IsAdmin())
		assert.True(t, f.svc.HasPermission(domain.PermRegisterEvent))
	})

	t.Run("returned_user_has_no_password", func(t *testing.T) {
		f := newFixture(t)
		u, err := f.svc.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		b, err := json.Marshal(u)
		require.NoError(t, err)
		assert.NotContains(t, string(b), "password")
		assert.NotContains(t, string(b), "admin123")
	})

	t.Run("unknown_credentials", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Login(ctx, "ghost", "whatever1")
		requireErrCode(t, err, domain.CodeInvalidCredentials)
		assert.False(t, f.svc.IsAuthenticated())
		assert.Nil(t, f.sessions.sess)
	})

	t.Run("wrong_password", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Login(ctx, "admin", "admin1234")
		requireErrCode(t, err, domain.CodeInvalidCredentials)
	})

	t.Run("short_input_is_validation", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Login(ctx, "ab", "12345")
		requireErrCode(t, err, domain.CodeValidation)

		var de *domain.Error
		require.True(t, errors.As(err, &de))
		assert.Contains(t, de.Meta, "username")
		assert.Contains(t, de.Meta, "password")
	})

	t.Run("backend_error_passes_through", func(t *testing.T) {
		f := newFixture(t)
		f.users.listErr = domain.ErrBackendUnavailable(errors.New("down"))
		_, err := f.svc.Login(ctx, "admin", "admin123")
		requireErrCode(t, err, domain.CodeBackendUnavailable)
	})

	t.Run("store_failure_leaves_logged_out", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.saveErr = errors.New("redis down")
		_, err := f.svc.Login(ctx, "admin", "admin123")
		requireErrCode(t, err, domain.CodeInternal)
		assert.False(t, f.svc.IsAuthenticated())
	})
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	f.clock.Advance(24*time.Hour - time.Second)
	assert.True(t, f.svc.IsAuthenticated())

	f.clock.Advance(time.Second)
	assert.False(t, f.svc.IsAuthenticated(), "session is absent once now reaches ExpiresAt")
	assert.False(t, f.svc.HasPermission(domain.PermCreateEvent))
	assert.Equal(t, domain.Actor{}, f.svc.Actor())
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	valid := domain.RegistrationInput{
		FirstName:       "Jane",
		LastName:        "Smith",
		Username:        "jane_s",
		Email:           "jane@example.com",
		Password:        "Sunny#Day42",
		ConfirmPassword: "Sunny#Day42",
	}

	t.Run("creates_user_without_login", func(t *testing.T) {
		f := newFixture(t)
		u, err := f.svc.Register(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, u.Role)
		assert.False(t, u.ID.IsZero())
		assert.False(t, f.svc.IsAuthenticated())

		stored := f.users.users[len(f.users.users)-1]
		assert.Equal(t, "hashed:Sunny#Day42", stored.Password)
		assert.Equal(t, testNow, stored.CreatedAt)
	})

	t.Run("duplicate_username_case_insensitive", func(t *testing.T) {
		f := newFixture(t)
		in := valid
		in.Username = "ADMIN"
		_, err := f.svc.Register(ctx, in)
		requireErrCode(t, err, domain.CodeDuplicateUser)
	})

	t.Run("duplicate_email", func(t *testing.T) {
		f := newFixture(t)
		in := valid
		in.Email = "john@example.com"
		_, err := f.svc.Register(ctx, in)
		requireErrCode(t, err, domain.CodeDuplicateUser)
	})

	t.Run("weak_password", func(t *testing.T) {
		f := newFixture(t)
		in := valid
		in.Password, in.ConfirmPassword = "password", "password"
		_, err := f.svc.Register(ctx, in)
		requireErrCode(t, err, domain.CodeValidation)
	})

	t.Run("mismatched_confirmation", func(t *testing.T) {
		f := newFixture(t)
		in := valid
		in.ConfirmPassword = "Sunny#Day43"
		_, err := f.svc.Register(ctx, in)
		requireErrCode(t, err, domain.CodeValidation)
		assert.Len(t, f.users.users, 2)
	})
}
