package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &User{
		ID:           "0b5c7a36-6a38-4d4c-9d6c-1d1a0f2a7f10",
		UserName:     "alice",
		Email:        "Alice@Example.com",
		DisplayName:  "Alice",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.CreateUser(ctx, user))

	byEmail, err := repo.GetUserByEmail(ctx, "alice@example.COM")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "Alice@Example.com", byEmail.Email)
	assert.Equal(t, "Alice", byEmail.DisplayName)

	byName, err := repo.GetUserByUserName(ctx, "ALICE")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, byName.ID)

	byID, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)

	missing, err := repo.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_UniqueViolations(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, &User{ID: "1", UserName: "alice", Email: "a@x.com", PasswordHash: "h", CreatedAt: time.Now()}))

	err := repo.CreateUser(ctx, &User{ID: "2", UserName: "bob", Email: "A@X.COM", PasswordHash: "h", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	err = repo.CreateUser(ctx, &User{ID: "3", UserName: "Alice", Email: "b@x.com", PasswordHash: "h", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrDuplicateUserName)
}

func TestUserRepository_Roles(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	exists, err := repo.RoleExists(ctx, "User")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.CreateRole(ctx, "User"))
	require.NoError(t, repo.CreateRole(ctx, "user"))
	require.NoError(t, repo.CreateRole(ctx, "Admin"))

	exists, err = repo.RoleExists(ctx, "USER")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.CreateUser(ctx, &User{ID: "u1", UserName: "alice", Email: "a@x.com", PasswordHash: "h", CreatedAt: time.Now()}))

	roles, err := repo.GetUserRoles(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, roles)

	require.NoError(t, repo.AddUserToRole(ctx, "u1", "User"))
	require.NoError(t, repo.AddUserToRole(ctx, "u1", "User"))
	require.NoError(t, repo.AddUserToRole(ctx, "u1", "Admin"))

	roles, err = repo.GetUserRoles(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin", "User"}, roles)

	err = repo.AddUserToRole(ctx, "u1", "Auditor")
	assert.ErrorIs(t, err, ErrNotFound)
}
