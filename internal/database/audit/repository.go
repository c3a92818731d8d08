// Package audit stores the audit trail of back-office and authentication
// events.
//
// # Usage
//
//	repo := audit.NewRepository(db)
//	page, err := repo.List(ctx, audit.Filter{EventType: entities.AuditEventContent}, req)
package audit

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/pagination"
	"github.com/bookbrief/bookbrief/internal/utils"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Filter narrows a listing. Zero values match everything.
type Filter struct {
	UserID     uint
	EventType  entities.AuditEventType
	EntityType string
	EntityID   string
	// Search matches a substring of the action, the description or the
	// entity ID, ignoring case.
	Search string
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(ctx context.Context, event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// List returns a page of events, most recent first.
func (r *Repository) List(ctx context.Context, filter Filter, req pagination.Request) (*pagination.Page[entities.AuditEvent], error) {
	scope := func(ctx context.Context) *gorm.DB {
		query := r.db.WithContext(ctx).Model(&entities.AuditEvent{})
		if filter.UserID > 0 {
			query = query.Where("user_id = ?", filter.UserID)
		}
		if filter.EventType != "" {
			query = query.Where("event_type = ?", filter.EventType)
		}
		if filter.EntityType != "" {
			query = query.Where("entity_type = ?", filter.EntityType)
		}
		if filter.EntityID != "" {
			query = query.Where("entity_id = ?", filter.EntityID)
		}
		if filter.Search != "" {
			pattern := utils.ContainsPattern(filter.Search)
			query = query.Where(`LOWER(action) LIKE LOWER(?) ESCAPE '\' OR LOWER(description) LIKE LOWER(?) ESCAPE '\' OR LOWER(entity_id) LIKE LOWER(?) ESCAPE '\'`,
				pattern, pattern, pattern)
		}
		return query
	}

	return pagination.Paginate(ctx, req,
		func(ctx context.Context) (int64, error) {
			var total int64
			err := scope(ctx).Count(&total).Error
			return total, err
		},
		func(ctx context.Context, skip, limit int) ([]entities.AuditEvent, error) {
			var events []entities.AuditEvent
			err := scope(ctx).Order("created_at DESC").Order("id DESC").
				Offset(skip).Limit(limit).Find(&events).Error
			return events, err
		},
	)
}

// GetRecentEvents retrieves audit events since a specific time.
func (r *Repository) GetRecentEvents(ctx context.Context, since time.Time) ([]entities.AuditEvent, error) {
	var events []entities.AuditEvent
	err := r.db.WithContext(ctx).Where("created_at > ?", since).
		Order("created_at DESC").Find(&events).Error
	return events, err
}

// DeleteOldEvents removes audit events older than the specified time.
// Returns the number of deleted events.
func (r *Repository) DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}

// GetEventByID retrieves a single audit event by ID.
func (r *Repository) GetEventByID(ctx context.Context, id uint) (*entities.AuditEvent, error) {
	var event entities.AuditEvent
	err := r.db.WithContext(ctx).First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}
