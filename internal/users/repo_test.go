package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aurelle/storefront-backend/pkg/db/models"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	usersDDL := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  full_name TEXT,
  order_ids TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(usersDDL).Error)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		Email:    email,
		FullName: "Asha Rao",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRepositoryFindByEmail(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	seedUser(t, db, "asha@example.com")

	user, err := repo.FindByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", user.FullName)

	_, err = repo.FindByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryAppendOrderID(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	seedUser(t, db, "asha@example.com")

	first := uuid.New()
	second := uuid.New()
	require.NoError(t, repo.AppendOrderID(context.Background(), "asha@example.com", first))
	require.NoError(t, repo.AppendOrderID(context.Background(), "asha@example.com", second))

	user, err := repo.FindByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	require.Len(t, user.OrderIDs, 2)
	assert.Equal(t, first, user.OrderIDs[0])
	assert.Equal(t, second, user.OrderIDs[1])
}

func TestRepositoryAppendOrderIDDeduplicates(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	seedUser(t, db, "asha@example.com")

	orderID := uuid.New()
	require.NoError(t, repo.AppendOrderID(context.Background(), "asha@example.com", orderID))
	require.NoError(t, repo.AppendOrderID(context.Background(), "asha@example.com", orderID))

	user, err := repo.FindByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	require.Len(t, user.OrderIDs, 1)
}

func TestRepositoryAppendOrderIDUnknownUser(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	err := repo.AppendOrderID(context.Background(), "nobody@example.com", uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
