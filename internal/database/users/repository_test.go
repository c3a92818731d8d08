package users

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbrief/bookbrief/internal/database/dbtest"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/pagination"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(dbtest.Open(t))
}

func createUser(t *testing.T, repo *Repository, name, email string) *entities.User {
	t.Helper()
	user := &entities.User{Name: name, Email: email, PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestCreate(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := createUser(t, repo, "Ada", "  Ada@Example.COM ")
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, entities.UserRoleUser, user.Role)

	err := repo.Create(ctx, &entities.User{Name: "Other", Email: "ADA@example.com"})
	assert.ErrorIs(t, err, ErrUserExists)

	got, err := repo.GetByEmail(ctx, "ada@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "password", got.Providers)
}

func TestUpdateProfile(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "Ada", "ada@example.com")

	name := "Ada Lovelace"
	age := 36
	got, err := repo.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: &name, Age: &age})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
	require.NotNil(t, got.Age)
	assert.Equal(t, 36, *got.Age)

	_, err = repo.UpdateProfile(ctx, 999, ProfileUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRecordFailedLogin_Locks(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "Ada", "ada@example.com")

	for i := 1; i <= 3; i++ {
		count, err := repo.RecordFailedLogin(ctx, user.ID, 3, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LockedUntil)
	assert.True(t, got.LockedUntil.After(time.Now()))

	require.NoError(t, repo.RecordLogin(ctx, user.ID, time.Now()))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LockedUntil)
	assert.Zero(t, got.FailedLoginCount)
	assert.NotNil(t, got.LastLoginAt)
}

func TestAdminUpdate(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	ada := createUser(t, repo, "Ada", "ada@example.com")
	createUser(t, repo, "Bob", "bob@example.com")

	taken := "BOB@example.com"
	_, err := repo.Update(ctx, ada.ID, AdminUpdate{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailInUse)

	role := entities.UserRoleAdmin
	email := "Ada@New.example"
	got, err := repo.Update(ctx, ada.ID, AdminUpdate{Role: &role, Email: &email})
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())
	assert.Equal(t, "ada@new.example", got.Email)
}

func TestSoftDelete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	admin := createUser(t, repo, "Admin", "admin@example.com")
	user := createUser(t, repo, "Ada", "ada@example.com")

	assert.ErrorIs(t, repo.SoftDelete(ctx, admin.ID, admin.ID), ErrCannotDeleteSelf)

	require.NoError(t, repo.SoftDelete(ctx, user.ID, admin.ID))
	assert.ErrorIs(t, repo.SoftDelete(ctx, user.ID, admin.ID), ErrUserNotFound)

	_, err := repo.GetByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = repo.Create(ctx, &entities.User{Name: "Again", Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestList(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createUser(t, repo, fmt.Sprintf("Reader %d", i), fmt.Sprintf("reader%d@example.com", i))
	}
	admin := &entities.User{Name: "Root", Email: "root@example.com", Role: entities.UserRoleAdmin}
	require.NoError(t, repo.Create(ctx, admin))

	page, err := repo.List(ctx, ListFilter{}, pagination.FromPage(1, 4))
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.TotalCount)
	assert.Len(t, page.Items, 4)
	assert.True(t, page.HasMore())

	page, err = repo.List(ctx, ListFilter{Role: entities.UserRoleAdmin}, pagination.FromPage(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Root", page.Items[0].Name)

	page, err = repo.List(ctx, ListFilter{Search: "READER3"}, pagination.FromPage(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	total, admins, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Equal(t, int64(1), admins)
}
