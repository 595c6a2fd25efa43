package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chifaexpress/storefront-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  phone TEXT,
  address TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestCreateDefaultsToActiveCustomer(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))

	user, err := repo.Create(context.Background(), CreateUserDTO{
		Email:        "ana@example.com",
		PasswordHash: "hash",
		FullName:     "Ana Torres",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleCustomer, user.Role)
	assert.True(t, user.IsActive)
}

func TestFindByEmailIsCaseSensitiveLookup(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Email: "ana@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	found, err := repo.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", found.Email)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Email: "ana@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, CreateUserDTO{Email: "ana@example.com", PasswordHash: "other"})
	require.Error(t, err)
}

func TestUpdateRoleAndLastLogin(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "ana@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateRole(ctx, user.ID, enums.UserRoleAdmin))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, found.Role)
	require.NotNil(t, found.LastLoginAt)
}

func TestUpdateProfileOverwritesContactFields(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "ana@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	phone := "+51 999 888 777"
	address := "Av. Siempre Viva 123"
	require.NoError(t, repo.UpdateProfile(ctx, user.ID, "Ana María Torres", &phone, &address))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana María Torres", found.FullName)
	require.NotNil(t, found.Phone)
	assert.Equal(t, phone, *found.Phone)
}
