package readinglists

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbrief/bookbrief/internal/database/dbtest"
	"github.com/bookbrief/bookbrief/internal/entities"
)

const (
	owner    uint = 1
	stranger uint = 2
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db := dbtest.Open(t)
	for _, id := range []string{"deep-work", "atomic-habits", "range"} {
		require.NoError(t, db.Create(&entities.Book{ID: id, Title: id, IsPublished: true}).Error)
	}
	return NewRepository(db)
}

func createList(t *testing.T, repo *Repository, public bool, books ...string) *entities.ReadingList {
	t.Helper()
	list := &entities.ReadingList{UserID: owner, Name: "Favourites", IsPublic: public, BookIDs: books}
	require.NoError(t, repo.Create(context.Background(), list))
	return list
}

func TestCreate_CollapsesDuplicates(t *testing.T) {
	repo := setupTestRepo(t)

	list := createList(t, repo, false, "deep-work", "range", "deep-work")

	assert.NotEmpty(t, list.ID)
	assert.Equal(t, []string{"deep-work", "range"}, list.BookIDs)
}

func TestAddBook_Idempotent(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	list := createList(t, repo, false)

	got, err := repo.AddBook(ctx, list.ID, owner, "deep-work")
	require.NoError(t, err)
	assert.Equal(t, []string{"deep-work"}, got.BookIDs)

	got, err = repo.AddBook(ctx, list.ID, owner, "deep-work")
	require.NoError(t, err)
	assert.Equal(t, []string{"deep-work"}, got.BookIDs)

	got, err = repo.AddBook(ctx, list.ID, owner, "atomic-habits")
	require.NoError(t, err)
	assert.Equal(t, []string{"deep-work", "atomic-habits"}, got.BookIDs)

	_, err = repo.AddBook(ctx, list.ID, owner, "missing")
	assert.ErrorIs(t, err, ErrUnknownBook)
}

func TestRemoveBook_Idempotent(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	list := createList(t, repo, false, "deep-work", "range")

	got, err := repo.RemoveBook(ctx, list.ID, owner, "atomic-habits")
	require.NoError(t, err)
	assert.Equal(t, []string{"deep-work", "range"}, got.BookIDs)

	got, err = repo.RemoveBook(ctx, list.ID, owner, "deep-work")
	require.NoError(t, err)
	assert.Equal(t, []string{"range"}, got.BookIDs)

	got, err = repo.RemoveBook(ctx, list.ID, owner, "deep-work")
	require.NoError(t, err)
	assert.Equal(t, []string{"range"}, got.BookIDs)
}

func TestOwnership(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	private := createList(t, repo, false, "range")
	public := createList(t, repo, true, "range")

	_, err := repo.AddBook(ctx, public.ID, stranger, "deep-work")
	assert.ErrorIs(t, err, ErrNotOwner)

	assert.ErrorIs(t, repo.Delete(ctx, public.ID, stranger), ErrNotOwner)

	_, err = repo.Get(ctx, private.ID, stranger)
	assert.ErrorIs(t, err, ErrListNotFound)

	got, err := repo.Get(ctx, public.ID, stranger)
	require.NoError(t, err)
	assert.Equal(t, []string{"range"}, got.BookIDs)
}

func TestListings(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	createList(t, repo, false, "range")
	public := createList(t, repo, true, "deep-work")

	lists, err := repo.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, public.ID, lists[0].ID)
	assert.Equal(t, []string{"deep-work"}, lists[0].BookIDs)

	mine, err := repo.ListByUser(ctx, owner, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := repo.ListByUser(ctx, owner, stranger)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestUpdateAndDelete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	list := createList(t, repo, false, "range")

	name := "Renamed"
	public := true
	books := []string{"atomic-habits", "atomic-habits", "deep-work"}
	got, err := repo.Update(ctx, list.ID, owner, ListUpdate{Name: &name, IsPublic: &public, BookIDs: &books})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.True(t, got.IsPublic)
	assert.Equal(t, []string{"atomic-habits", "deep-work"}, got.BookIDs)

	_, err = repo.Update(ctx, "missing", owner, ListUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrListNotFound)

	require.NoError(t, repo.Delete(ctx, list.ID, owner))
	_, err = repo.Get(ctx, list.ID, owner)
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestCreate_TakenID(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.ReadingList{ID: "focus", UserID: owner, Name: "Focus"}))

	err := repo.Create(ctx, &entities.ReadingList{ID: "focus", UserID: stranger, Name: "Mine"})
	assert.ErrorIs(t, err, ErrListExists)

	got, err := repo.Get(ctx, "focus", owner)
	require.NoError(t, err)
	assert.Equal(t, "Focus", got.Name)
}
