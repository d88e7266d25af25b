package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogdesk/internal/auth"
	"blogdesk/internal/db"
	"blogdesk/internal/model"
	"blogdesk/internal/repository"
)

func newUsers(t *testing.T) repository.UserRepository {
	t.Helper()
	gdb, err := db.NewSQL("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", model.NewID()))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return repository.NewUserRepository(gdb)
}

func TestSeedAdmin_CreatesAdmin(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	hasher := auth.NewBcryptHasher(4)

	user, created, err := seedAdmin(ctx, users, hasher, "Root", " Admin@Example.com ", "secret123")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.True(t, hasher.Verify("secret123", user.PasswordHash))

	again, created, err := seedAdmin(ctx, users, hasher, "Root", "admin@example.com", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)
}

func TestSeedAdmin_PromotesExistingUser(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	hasher := auth.NewBcryptHasher(4)

	existing := &model.User{ID: model.NewID(), Email: "writer@example.com", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, users.Create(ctx, existing))

	user, created, err := seedAdmin(ctx, users, hasher, "", "writer@example.com", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, model.RoleAdmin, user.Role)
}

func TestSeedAdmin_RejectsShortPassword(t *testing.T) {
	_, _, err := seedAdmin(context.Background(), newUsers(t), auth.NewBcryptHasher(4), "", "new@example.com", "123")
	require.Error(t, err)
}
