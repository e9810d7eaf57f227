package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/questline/questline/internal/db"
	"github.com/questline/questline/internal/model"
	"github.com/questline/questline/internal/repository"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a throwaway SQLite database with all migrations applied.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	err = db.RunMigrations(database.DB, "sqlite")
	require.NoError(t, err)

	return database
}

func createTestUser(t *testing.T, users repository.UserRepository, username string) *model.User {
	t.Helper()

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: "x",
		LastLogin:    now,
		CreatedAt:    now,
	}
	err := users.Create(user)
	require.NoError(t, err)

	return user
}
