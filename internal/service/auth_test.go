package service

import (
	"testing"
	"time"

	"github.com/questline/questline/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) (*AuthService, repository.UserRepository) {
	t.Helper()

	database := newTestDB(t)
	users := repository.NewUserRepository(database)
	gamification := NewGamificationService(users)

	return NewAuthService(users, gamification, "test-secret", time.Hour, false), users
}

func TestRegister(t *testing.T) {
	auth, _ := newTestAuthService(t)

	user, err := auth.Register("alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, 0, user.Points)
	assert.Equal(t, 0, user.Streak)
	assert.NotEqual(t, "password123", user.PasswordHash)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, err := auth.Register("alice", "password123")
	require.NoError(t, err)

	_, err = auth.Register("alice", "different456")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegister_ShortPassword(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, err := auth.Register("alice", "short")
	assert.Error(t, err)
}

func TestLogin_UniformFailure(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, err := auth.Register("alice", "password123")
	require.NoError(t, err)

	// Unknown user and wrong password fail identically
	_, _, err = auth.Login("nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = auth.Login("alice", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_SameDayNoBonus(t *testing.T) {
	auth, _ := newTestAuthService(t)

	// Registration stamps last_login today
	_, err := auth.Register("alice", "password123")
	require.NoError(t, err)

	user, bonus, err := auth.Login("alice", "password123")
	require.NoError(t, err)
	assert.False(t, bonus)
	assert.Equal(t, 0, user.Points)
}

func TestLogin_DailyBonus(t *testing.T) {
	auth, users := newTestAuthService(t)

	registered, err := auth.Register("alice", "password123")
	require.NoError(t, err)

	// Push last_login back a day so today's login pays out
	registered.LastLogin = registered.LastLogin.AddDate(0, 0, -1)
	require.NoError(t, users.Update(registered))

	user, bonus, err := auth.Login("alice", "password123")
	require.NoError(t, err)
	assert.True(t, bonus)
	assert.Equal(t, LoginBonus, user.Points)
	assert.Equal(t, 1, user.Streak)
}

func TestJWTRoundtrip(t *testing.T) {
	auth, _ := newTestAuthService(t)

	user, err := auth.Register("alice", "password123")
	require.NoError(t, err)

	token, err := auth.GenerateJWT(user)
	require.NoError(t, err)

	claims, err := auth.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, "alice", claims["username"])
}

func TestVerifyJWT_Garbage(t *testing.T) {
	auth, _ := newTestAuthService(t)

	_, err := auth.VerifyJWT("not-a-token")
	assert.Error(t, err)
}
