// Package users provides database operations for user management.
//
// Emails are stored lower-cased and are unique across all users, including
// soft-deleted ones. Lookups never return soft-deleted users.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail(ctx, "reader@example.com")
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/pagination"
	"github.com/bookbrief/bookbrief/internal/utils"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user with this email already exists")
	ErrEmailInUse       = errors.New("email already in use")
	ErrCannotDeleteSelf = errors.New("cannot delete your own account")
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ProfileUpdate holds the fields a user may change on their own profile.
type ProfileUpdate struct {
	Name   *string `json:"name"`
	Age    *int    `json:"age"`
	Avatar *string `json:"avatar"`
}

// AdminUpdate holds the fields an admin may change on any user.
type AdminUpdate struct {
	Name         *string
	Email        *string
	Role         *entities.UserRole
	Age          *int
	IsVerified   *bool
	PasswordHash *string
}

// ListFilter narrows the admin listing.
type ListFilter struct {
	Search string
	Role   entities.UserRole
}

// NormalizeEmail is the canonical stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create stores a new user. The email is normalized first.
func (r *Repository) Create(ctx context.Context, user *entities.User) error {
	user.Email = NormalizeEmail(user.Email)
	if user.Role == "" {
		user.Role = entities.UserRoleUser
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&entities.User{}).Where("email = ?", user.Email).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing > 0 {
			return ErrUserExists
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a live user by ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a live user by email, case-insensitively.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).
		Where("email = ? AND is_deleted = ?", NormalizeEmail(email), false).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a self-service profile change.
func (r *Repository) UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*entities.User, error) {
	cols := map[string]any{}
	if update.Name != nil {
		cols["name"] = *update.Name
	}
	if update.Age != nil {
		cols["age"] = *update.Age
	}
	if update.Avatar != nil {
		cols["avatar"] = *update.Avatar
	}
	if err := r.update(ctx, id, cols); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SetPasswordHash replaces the stored password hash.
func (r *Repository) SetPasswordHash(ctx context.Context, id uint, hash string) error {
	return r.update(ctx, id, map[string]any{"password_hash": hash})
}

// RecordLogin stamps a successful login and clears any lockout.
func (r *Repository) RecordLogin(ctx context.Context, id uint, at time.Time) error {
	return r.update(ctx, id, map[string]any{
		"last_login_at":      at,
		"failed_login_count": 0,
		"locked_until":       nil,
	})
}

// RecordFailedLogin atomically bumps the failure counter. Once it reaches
// maxAttempts the account is locked until now+lockout.
func (r *Repository) RecordFailedLogin(ctx context.Context, id uint, maxAttempts int, lockout time.Duration) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.User{}).Where("id = ?", id).
			UpdateColumn("failed_login_count", gorm.Expr("failed_login_count + ?", 1)).Error; err != nil {
			return err
		}
		var user entities.User
		err := tx.Select("id", "failed_login_count").Where("id = ?", id).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		count = user.FailedLoginCount
		if count >= maxAttempts {
			return tx.Model(&entities.User{}).Where("id = ?", id).
				UpdateColumn("locked_until", time.Now().Add(lockout)).Error
		}
		return nil
	})
	return count, err
}

// List returns live users for the back-office, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, req pagination.Request) (*pagination.Page[entities.User], error) {
	scope := func(ctx context.Context) *gorm.DB {
		db := r.db.WithContext(ctx).Model(&entities.User{}).Where("is_deleted = ?", false)
		if filter.Search != "" {
			pattern := utils.ContainsPattern(filter.Search)
			db = db.Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\' OR LOWER(email) LIKE LOWER(?) ESCAPE '\'`, pattern, pattern)
		}
		if filter.Role != "" {
			db = db.Where("role = ?", filter.Role)
		}
		return db
	}

	return pagination.Paginate(ctx, req,
		func(ctx context.Context) (int64, error) {
			var total int64
			err := scope(ctx).Count(&total).Error
			return total, err
		},
		func(ctx context.Context, skip, limit int) ([]entities.User, error) {
			var list []entities.User
			err := scope(ctx).Order("created_at DESC").Order("id DESC").
				Offset(skip).Limit(limit).Find(&list).Error
			return list, err
		},
	)
}

// Update applies an admin change. A new email must not belong to another
// user.
func (r *Repository) Update(ctx context.Context, id uint, update AdminUpdate) (*entities.User, error) {
	cols := map[string]any{}
	if update.Name != nil {
		cols["name"] = *update.Name
	}
	if update.Role != nil {
		cols["role"] = *update.Role
	}
	if update.Age != nil {
		cols["age"] = *update.Age
	}
	if update.IsVerified != nil {
		cols["is_verified"] = *update.IsVerified
	}
	if update.PasswordHash != nil {
		cols["password_hash"] = *update.PasswordHash
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if update.Email != nil {
			email := NormalizeEmail(*update.Email)
			var taken int64
			if err := tx.Model(&entities.User{}).
				Where("email = ? AND id <> ?", email, id).
				Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return ErrEmailInUse
			}
			cols["email"] = email
		}
		return updateLive(tx, id, cols)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SoftDelete flags a user as deleted. An admin cannot delete themselves.
func (r *Repository) SoftDelete(ctx context.Context, id, actorID uint) error {
	if id == actorID {
		return ErrCannotDeleteSelf
	}
	return r.update(ctx, id, map[string]any{"is_deleted": true})
}

// Count returns the number of live users and of live admins.
func (r *Repository) Count(ctx context.Context) (total, admins int64, err error) {
	if err = r.db.WithContext(ctx).Model(&entities.User{}).
		Where("is_deleted = ?", false).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).Model(&entities.User{}).
		Where("is_deleted = ? AND role = ?", false, entities.UserRoleAdmin).
		Count(&admins).Error
	return total, admins, err
}

func (r *Repository) update(ctx context.Context, id uint, cols map[string]any) error {
	return updateLive(r.db.WithContext(ctx), id, cols)
}

func updateLive(db *gorm.DB, id uint, cols map[string]any) error {
	if len(cols) == 0 {
		var n int64
		if err := db.Model(&entities.User{}).Where("id = ? AND is_deleted = ?", id, false).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrUserNotFound
		}
		return nil
	}

	result := db.Model(&entities.User{}).Where("id = ? AND is_deleted = ?", id, false).Updates(cols)
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
