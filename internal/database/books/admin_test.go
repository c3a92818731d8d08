package books

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/pagination"
)

func TestCreate(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	t.Run("generates slug and keeps explicit false", func(t *testing.T) {
		book := &entities.Book{ID: "paid", Title: "The Paid Book!", IsFree: false}
		require.NoError(t, repo.Create(ctx, book))

		got, err := repo.GetBook(ctx, "paid")
		require.NoError(t, err)
		assert.Equal(t, "the-paid-book", got.Slug)
		assert.False(t, got.IsFree)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		err := repo.Create(ctx, &entities.Book{ID: "paid", Title: "Again"})
		assert.ErrorIs(t, err, ErrBookExists)
	})

	t.Run("synopsis is sanitised", func(t *testing.T) {
		book := &entities.Book{ID: "xss", Title: "XSS", AboutTheBook: `<p onclick="steal()">Hi</p><script>alert(1)</script>`}
		require.NoError(t, repo.Create(ctx, book))

		got, err := repo.GetBook(ctx, "xss")
		require.NoError(t, err)
		assert.Equal(t, "<p>Hi</p>", got.AboutTheBook)
	})

	t.Run("empty id gets uuid", func(t *testing.T) {
		book := &entities.Book{Title: "Anonymous"}
		require.NoError(t, repo.Create(ctx, book))
		assert.Len(t, book.ID, 36)
	})
}

func TestUpdate_Partial(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()
	createBook(t, repo, &entities.Book{ID: "b", Title: "Original", Author: "Someone", IsFree: true})

	title := "Renamed"
	free := false
	got, err := repo.Update(ctx, "b", BookUpdate{Title: &title, IsFree: &free})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "Someone", got.Author)
	assert.False(t, got.IsFree)

	_, err = repo.Update(ctx, "missing", BookUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestUpdate_SanitisesSynopsis(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()
	createBook(t, repo, &entities.Book{ID: "b", Title: "B"})

	about := `<p>Intro</p><img src="cover.png" onerror="steal()"><script>alert(1)</script>`
	got, err := repo.Update(ctx, "b", BookUpdate{AboutTheBook: &about})
	require.NoError(t, err)

	assert.Contains(t, got.AboutTheBook, "<p>Intro</p>")
	assert.NotContains(t, got.AboutTheBook, "onerror")
	assert.NotContains(t, got.AboutTheBook, "script")
}

func TestSoftDelete(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()
	createBook(t, repo, &entities.Book{ID: "b", Title: "B"})

	require.NoError(t, repo.SoftDelete(ctx, "b"))
	assert.ErrorIs(t, repo.SoftDelete(ctx, "b"), ErrBookNotFound)

	_, err := repo.GetBook(ctx, "b")
	assert.ErrorIs(t, err, ErrBookNotFound)

	exists, err := repo.Exists(ctx, "b")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAdminList(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		createBook(t, repo, &entities.Book{ID: fmt.Sprintf("b%02d", i), Title: fmt.Sprintf("Title %02d", i), Author: "Newport"})
	}
	createBook(t, repo, &entities.Book{ID: "other", Title: "Other", Author: "Clear", Category: "Habits"})
	createBook(t, repo, &entities.Book{ID: "deleted", Title: "Deleted", Author: "Clear"})
	require.NoError(t, repo.SoftDelete(ctx, "deleted"))

	page, err := repo.AdminList(ctx, "", pagination.FromPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(13), page.TotalCount)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 2, page.TotalPages())
	assert.Equal(t, "other", page.Items[0].ID)

	page, err = repo.AdminList(ctx, "HABITS", pagination.FromPage(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "other", page.Items[0].ID)

	page, err = repo.AdminList(ctx, "%", pagination.FromPage(1, 10))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.TotalCount)

	count, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(13), count)
}
