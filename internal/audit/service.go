package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bookbrief/bookbrief/internal/database/audit"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/log"
	"github.com/bookbrief/bookbrief/internal/pagination"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.LogEvent(ctx, event); err != nil {
			log.Error("Failed to log audit event", zap.String("action", event.Action), zap.Error(err))
		}
	}()
}

// Wait blocks until every LogAsync write has finished. Call on shutdown.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogContent records a back-office change to a book, chapter or category.
func (s *Service) LogContent(userID uint, action, entityType, entityID, description string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventContent,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      entities.AuditStatusSuccess,
	}
	markFailed(event, err)
	s.LogAsync(event)
}

// LogDelete records a deletion event.
func (s *Service) LogDelete(userID uint, entityType, entityID, entityName string, permanent bool) {
	action := entityType + "_delete"
	if permanent {
		action = entityType + "_delete_permanent"
	}

	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventDelete,
		Action:      action,
		Description: truncate("Deleted "+entityType+": "+entityName, 500),
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogUser records an admin change to a user account.
func (s *Service) LogUser(actorID uint, action string, targetID uint, description string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      actorID,
		EventType:   entities.AuditEventUser,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  "user",
		EntityID:    uintToString(targetID),
		Status:      entities.AuditStatusSuccess,
	})
}

// LogTask records the outcome of a background task.
func (s *Service) LogTask(action, description string, metadata map[string]any, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventTask,
		Action:      action,
		Description: truncate(description, 500),
		Status:      entities.AuditStatusSuccess,
	}
	if len(metadata) > 0 {
		if mdBytes, e := json.Marshal(metadata); e == nil {
			event.Metadata = string(mdBytes)
		}
	}
	markFailed(event, err)
	s.LogAsync(event)
}

// List retrieves a page of audit events.
func (s *Service) List(ctx context.Context, filter audit.Filter, req pagination.Request) (*pagination.Page[entities.AuditEvent], error) {
	return s.repo.List(ctx, filter, req)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func markFailed(event *entities.AuditEvent, err error) {
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func uintToString(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}
