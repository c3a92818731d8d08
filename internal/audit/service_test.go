package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	auditRepo "github.com/bookbrief/bookbrief/internal/database/audit"
	"github.com/bookbrief/bookbrief/internal/database/dbtest"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/pagination"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db := dbtest.Open(t)
	return NewService(auditRepo.NewRepository(db)), db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventContent,
		Action:    "book_create",
		Status:    entities.AuditStatusSuccess,
	}
	require.NoError(t, svc.Log(context.Background(), event))

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved, event.ID).Error)
	assert.Equal(t, "book_create", saved.Action)
}

func TestService_LogContent(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("success", func(t *testing.T) {
		svc.LogContent(1, "book_update", "book", "deep-work", "Updated book: Deep Work", nil)
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ?", "book_update").First(&event).Error)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, "deep-work", event.EntityID)
	})

	t.Run("failure", func(t *testing.T) {
		svc.LogContent(1, "chapter_create", "chapter", "", "Add chapter", errors.New("book not found"))
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ?", "chapter_create").First(&event).Error)
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
		assert.Equal(t, "book not found", event.ErrorMsg)
	})
}

func TestService_LogDeleteAndUser(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogDelete(1, "book", "deep-work", "Deep Work", false)
	svc.LogDelete(1, "book", "old", "Old", true)
	svc.LogUser(1, "user_update", 7, "Promoted to admin")
	svc.Wait()

	var actions []string
	require.NoError(t, db.Model(&entities.AuditEvent{}).Order("action").Pluck("action", &actions).Error)
	assert.Equal(t, []string{"book_delete", "book_delete_permanent", "user_update"}, actions)

	var userEvent entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "user_update").First(&userEvent).Error)
	assert.Equal(t, "7", userEvent.EntityID)
}

func TestService_LogAuthAndTask(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	svc.LogAuth(3, "login", "10.0.0.1", strings.Repeat("x", 600), false)
	svc.LogTask("purge_deleted_books", "Purged 2 books", map[string]any{"purged": 2}, nil)
	svc.Wait()

	page, err := svc.List(ctx, auditRepo.Filter{EventType: entities.AuditEventAuth}, pagination.NewRequest(0, 10))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, entities.AuditStatusFailed, page.Items[0].Status)
	assert.Len(t, page.Items[0].UserAgent, 500)

	page, err = svc.List(ctx, auditRepo.Filter{EventType: entities.AuditEventTask}, pagination.NewRequest(0, 10))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.JSONEq(t, `{"purged":2}`, page.Items[0].Metadata)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&entities.AuditEvent{Action: "old", CreatedAt: time.Now().AddDate(0, 0, -40)}).Error)
	require.NoError(t, db.Create(&entities.AuditEvent{Action: "fresh", CreatedAt: time.Now()}).Error)

	deleted, err := svc.DeleteOldEvents(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
