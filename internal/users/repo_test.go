package users

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB())
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{Name: " Ada ", Email: " Ada@Example.com ", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, "Ada", created.Name)
	assert.Equal(t, enums.UserRoleCustomer, created.Role)

	byEmail, err := repo.FindByEmail(ctx, "  ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, created.ID, at))

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.LastLoginAt)
	assert.True(t, byID.LastLoginAt.Equal(at))

	dto := FromModel(byID)
	assert.False(t, dto.IsAdmin)
	assert.Nil(t, FromModel(nil))
}

func TestRepositoryDuplicateEmail(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB())
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Name: "A", Email: "dup@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Name: "B", Email: "DUP@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRepositoryNotFound(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB())
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, uuid.New(), time.Now()), ErrNotFound)
}
