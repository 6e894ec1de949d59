package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	cases := []struct {
		role string
		ok   bool
	}{
		{"user", true},
		{"admin", true},
		{"moderator", false},
		{"", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, IsValidRole(c.role), c.role)
	}
}

func TestHasPermission_FixedTable(t *testing.T) {
	for _, p := range []Permission{PermCreateEvent, PermEditEvent, PermDeleteEvent, PermViewAllEvents, PermManageUsers} {
		assert.True(t, HasPermission(RoleAdmin, p), p)
		assert.False(t, HasPermission(RoleUser, p), p)
	}
	for _, p := range []Permission{PermViewEvents, PermRegisterEvent, PermViewOwnRegistrations} {
		assert.True(t, HasPermission(RoleUser, p), p)
		assert.False(t, HasPermission(RoleAdmin, p), p)
	}
	assert.False(t, HasPermission(Role("guest"), PermViewEvents))
}

func TestPermissions_ReturnsCopy(t *testing.T) {
	ps := Permissions(RoleUser)
	ps[0] = "tampered"
	assert.Equal(t, PermViewEvents, Permissions(RoleUser)[0])
}

func TestUser_PublicDropsPassword(t *testing.T) {
	u := User{ID: "1", Username: "alice", Email: "a@x.io", Password: "secret", Role: RoleUser}
	pub := u.Public()

	assert.Equal(t, ID("1"), pub.ID)
	assert.Equal(t, "alice", pub.Username)
}

func TestUser_MatchesLogin(t *testing.T) {
	u := User{Username: "alice", Email: "a@x.io"}
	assert.True(t, u.MatchesLogin("alice"))
	assert.True(t, u.MatchesLogin("a@x.io"))
	assert.False(t, u.MatchesLogin("Alice"))
	assert.False(t, u.MatchesLogin(""))
}

func TestUser_Conflicts(t *testing.T) {
	u := User{Username: "alice", Email: "a@x.io"}

	field, ok := u.Conflicts("ALICE", "new@x.io")
	assert.True(t, ok)
	assert.Equal(t, "username", field)

	field, ok = u.Conflicts("bob", "A@X.io")
	assert.True(t, ok)
	assert.Equal(t, "email", field)

	_, ok = u.Conflicts("bob", "b@x.io")
	assert.False(t, ok)
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession(PublicUser{ID: "1"}, now, 24*time.Hour)

	assert.False(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(24*time.Hour-time.Second)))
	assert.True(t, s.Expired(now.Add(24*time.Hour)))
	assert.Equal(t, time.Hour, s.Remaining(now.Add(23*time.Hour)))
	assert.Equal(t, time.Duration(0), s.Remaining(now.Add(25*time.Hour)))
}

func TestActor(t *testing.T) {
	assert.False(t, Actor{}.Authenticated())
	assert.True(t, Actor{ID: "1", Role: RoleAdmin}.Can(PermCreateEvent))
	assert.False(t, Actor{ID: "2", Role: RoleUser}.Can(PermCreateEvent))
}
