package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbrief/bookbrief/internal/admin"
	auditrepo "github.com/bookbrief/bookbrief/internal/database/audit"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/pagination"
	"github.com/bookbrief/bookbrief/internal/tasks"
)

func TestAdminBooks_CreateAndManage(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	w, env := f.do(t, http.MethodPost, "/api/admin/books", map[string]any{
		"id":           "atomic-habits",
		"title":        "Atomic Habits",
		"aboutTheBook": "Small changes.",
		"isPublished":  true,
		"isFree":       true,
		"chapter": []map[string]string{
			{"title": "Fundamentals", "text": `<p>1%</p><script>alert(1)</script>`},
		},
	}, f.adminTok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[entities.Book](t, env.Data)
	assert.Equal(t, "atomic-habits", created.Slug)
	assert.Equal(t, 1, created.ChapterCount)
	assert.NotNil(t, created.PublishedDate)

	t.Run("duplicate id conflicts", func(t *testing.T) {
		w, _ := f.do(t, http.MethodPost, "/api/admin/books", map[string]any{"id": "atomic-habits", "title": "Again"}, f.adminTok)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("title is required", func(t *testing.T) {
		w, _ := f.do(t, http.MethodPost, "/api/admin/books", map[string]any{"author": "Nobody"}, f.adminTok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("chapter html is sanitised", func(t *testing.T) {
		book, err := f.books.GetBook(ctx, "atomic-habits")
		require.NoError(t, err)
		require.Len(t, book.Chapters, 1)
		assert.NotContains(t, book.Chapters[0].Text, "<script>")
	})

	t.Run("chapters", func(t *testing.T) {
		w, env := f.do(t, http.MethodPost, "/api/admin/books/atomic-habits/chapters",
			map[string]string{"title": "Make It Obvious", "text": "<p>Cues.</p>"}, f.adminTok)
		require.Equal(t, http.StatusCreated, w.Code)
		added := decode[chapterResult](t, env.Data)
		assert.Equal(t, 2, added.TotalChapters)
		require.NotNil(t, added.Chapter)

		chapterPath := "/api/admin/books/atomic-habits/chapters/" + added.Chapter.ID
		w, env = f.do(t, http.MethodPut, chapterPath,
			map[string]string{"title": "Make It Very Obvious", "text": "<p>Cues.</p>"}, f.adminTok)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Make It Very Obvious", decode[entities.Chapter](t, env.Data).Title)

		_, env = f.do(t, http.MethodGet, "/api/admin/books/atomic-habits/chapters", nil, f.adminTok)
		list := decode[chapterList](t, env.Data)
		assert.Equal(t, "Atomic Habits", list.BookTitle)
		assert.Len(t, list.Chapters, 2)

		w, env = f.do(t, http.MethodDelete, chapterPath, nil, f.adminTok)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[chapterResult](t, env.Data).TotalChapters)

		w, _ = f.do(t, http.MethodDelete, chapterPath, nil, f.adminTok)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w, _ = f.do(t, http.MethodGet, "/api/admin/books/missing/chapters", nil, f.adminTok)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("update", func(t *testing.T) {
		w, env := f.do(t, http.MethodPut, "/api/admin/books/atomic-habits", map[string]any{"author": "James Clear"}, f.adminTok)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "James Clear", decode[entities.Book](t, env.Data).Author)
	})

	t.Run("delete is soft", func(t *testing.T) {
		w, _ := f.do(t, http.MethodDelete, "/api/admin/books/atomic-habits", nil, f.adminTok)
		require.Equal(t, http.StatusOK, w.Code)

		w, _ = f.do(t, http.MethodGet, "/api/books/id/atomic-habits", nil, f.readerTok)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w, _ = f.do(t, http.MethodDelete, "/api/admin/books/atomic-habits", nil, f.adminTok)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("changes are audited", func(t *testing.T) {
		f.audit.Wait()
		page, err := f.audit.List(ctx, auditrepo.Filter{EntityID: "atomic-habits"}, pagination.FromPage(1, 10))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(page.Items), 2)
	})
}

func TestAdminBooks_ListPaging(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/admin/books?page=2&limit=2", nil, f.adminTok)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]entities.Book](t, env.Data), 1)
	assert.Equal(t, int64(3), env.Pagination.TotalCount)
	assert.Equal(t, 2, env.Pagination.CurrentPage)
	assert.False(t, env.Pagination.HasMore)

	_, env = f.do(t, http.MethodGet, "/api/admin/books?search=sapi", nil, f.adminTok)
	assert.Len(t, decode[[]entities.Book](t, env.Data), 1)
}

func TestAdminCategories(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/admin/categories", map[string]any{"name": "Philosophy"}, f.adminTok)
	require.Equal(t, http.StatusCreated, w.Code)
	category := decode[entities.Category](t, env.Data)
	assert.True(t, category.IsActive)
	assert.Equal(t, entities.DefaultCategoryColor, category.Color)

	w, _ = f.do(t, http.MethodPost, "/api/admin/categories", map[string]any{"name": "Philosophy"}, f.adminTok)
	assert.Equal(t, http.StatusConflict, w.Code)

	path := "/api/admin/categories/" + category.ID
	w, _ = f.do(t, http.MethodPut, path, map[string]any{"name": "Productivity"}, f.adminTok)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = f.do(t, http.MethodPut, path, map[string]any{"isActive": false}, f.adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[entities.Category](t, env.Data).IsActive)

	_, env = f.do(t, http.MethodGet, "/api/admin/categories?active=false", nil, f.adminTok)
	inactive := decode[[]entities.Category](t, env.Data)
	require.Len(t, inactive, 1)
	assert.Equal(t, "Philosophy", inactive[0].Name)

	w, _ = f.do(t, http.MethodDelete, path, nil, f.adminTok)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = f.do(t, http.MethodPut, path, map[string]any{"color": "#000000"}, f.adminTok)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminUsers(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/admin/users", map[string]any{
		"name": "Editor", "email": "Editor@Example.com", "password": "secret1", "age": 40,
	}, f.adminTok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[entities.User](t, env.Data)
	assert.Equal(t, "editor@example.com", created.Email)
	assert.Equal(t, entities.UserRoleUser, created.Role)

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"duplicate email", map[string]any{"name": "X", "email": "editor@example.com", "password": "secret1"}, http.StatusConflict},
		{"bad email", map[string]any{"name": "X", "email": "nope", "password": "secret1"}, http.StatusBadRequest},
		{"short password", map[string]any{"name": "X", "email": "x@example.com", "password": "123"}, http.StatusBadRequest},
		{"bad role", map[string]any{"name": "X", "email": "y@example.com", "password": "secret1", "role": "owner"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := f.do(t, http.MethodPost, "/api/admin/users", tt.body, f.adminTok)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	path := fmt.Sprintf("/api/admin/users/%d", created.ID)

	t.Run("promote", func(t *testing.T) {
		w, env := f.do(t, http.MethodPut, path, map[string]any{"role": "admin"}, f.adminTok)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, entities.UserRoleAdmin, decode[entities.User](t, env.Data).Role)

		_, env = f.do(t, http.MethodGet, "/api/admin/users?role=admin", nil, f.adminTok)
		assert.Len(t, decode[[]entities.User](t, env.Data), 2)
	})

	t.Run("email taken", func(t *testing.T) {
		w, _ := f.do(t, http.MethodPut, path, map[string]any{"email": "reader@example.com"}, f.adminTok)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("cannot delete self", func(t *testing.T) {
		w, env := f.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", f.admin.ID), nil, f.adminTok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Cannot delete your own account", env.Error)
	})

	t.Run("deleted user token stops working", func(t *testing.T) {
		w, _ := f.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", f.other.ID), nil, f.adminTok)
		require.Equal(t, http.StatusOK, w.Code)

		w, _ = f.do(t, http.MethodGet, "/api/books/free", nil, f.otherTok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuditController(t *testing.T) {
	f := newAPIFixture(t)

	w, _ := f.do(t, http.MethodPost, "/api/admin/categories", map[string]any{"name": "Science"}, f.adminTok)
	require.Equal(t, http.StatusCreated, w.Code)
	f.audit.Wait()

	w, env := f.do(t, http.MethodGet, "/api/admin/audit?type=content", nil, f.adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	events := decode[[]entities.AuditEvent](t, env.Data)
	require.NotEmpty(t, events)
	assert.Equal(t, "category_create", events[0].Action)

	w, _ = f.do(t, http.MethodGet, "/api/admin/audit?user_id=abc", nil, f.adminTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardController(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/admin/dashboard", nil, f.adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, admin.SectionNames(), decode[[]string](t, env.Data))

	w, env = f.do(t, http.MethodGet, "/api/admin/dashboard/users?role=admin", nil, f.adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	var panel struct {
		Section string          `json:"section"`
		Stats   admin.Stats     `json:"stats"`
		Items   []entities.User `json:"items"`
		Meta    pagination.Meta `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &panel))
	assert.Equal(t, "users", panel.Section)
	assert.Equal(t, int64(3), panel.Stats.Users)
	assert.Equal(t, int64(1), panel.Stats.Admins)
	require.Len(t, panel.Items, 1)
	assert.Equal(t, "admin@example.com", panel.Items[0].Email)

	w, _ = f.do(t, http.MethodGet, "/api/admin/dashboard/settings", nil, f.adminTok)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type fakeTaskQueue struct {
	enqueued []backlite.Task
	status   backlite.TaskStatus
}

func (q *fakeTaskQueue) Enqueue(_ context.Context, task backlite.Task) (string, error) {
	q.enqueued = append(q.enqueued, task)
	return fmt.Sprintf("task-%d", len(q.enqueued)), nil
}

func (q *fakeTaskQueue) Status(context.Context, string) (backlite.TaskStatus, error) {
	return q.status, nil
}

func TestTasksController(t *testing.T) {
	queue := &fakeTaskQueue{status: backlite.TaskStatusSuccess}
	f := newAPIFixture(t, func(cfg *RouterConfig) {
		cfg.TaskQueue = queue
		cfg.TaskDefaults = tasks.Defaults{PurgeRetentionDays: 30, AuditRetentionDays: 30, DailyReadsCount: 5}
	})

	w, _ := f.do(t, http.MethodGet, "/api/admin/tasks/types", nil, f.adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	var types struct {
		TaskTypes []tasks.TaskType `json:"task_types"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &types))
	assert.Len(t, types.TaskTypes, len(tasks.Types()))

	w, _ = f.do(t, http.MethodPost, "/api/admin/tasks/rotate_daily_reads/run", map[string]int{"count": 3}, f.adminTok)
	require.Equal(t, http.StatusAccepted, w.Code)
	w, _ = f.do(t, http.MethodPost, "/api/admin/tasks/purge_deleted_books/run", nil, f.adminTok)
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Len(t, queue.enqueued, 2)
	assert.Equal(t, tasks.RotateDailyReadsTask{Count: 3}, queue.enqueued[0])
	assert.Equal(t, tasks.PurgeDeletedBooksTask{RetentionDays: 30}, queue.enqueued[1])

	w, _ = f.do(t, http.MethodPost, "/api/admin/tasks/enrich_book/run", nil, f.adminTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodGet, "/api/admin/tasks/task-1", nil, f.adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"task-1","status":"success"}`, w.Body.String())

	w, _ = f.do(t, http.MethodGet, "/api/admin/tasks/types", nil, f.readerTok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
