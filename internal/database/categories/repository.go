// Package categories provides database operations for book categories.
//
// Books reference categories by name, so the listing counts are computed with
// a join on books.category = categories.name.
//
// # Usage
//
//	repo := categories.NewRepository(db)
//	list, err := repo.ListActiveWithCounts(ctx)
package categories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/pagination"
	"github.com/bookbrief/bookbrief/internal/utils"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category with this ID or name already exists")
	ErrNameInUse        = errors.New("category name already in use")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CategoryUpdate is a partial update; nil fields are left unchanged.
type CategoryUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	Image       *string `json:"image"`
	IsActive    *bool   `json:"isActive"`
}

// ListFilter narrows the admin listing. A nil Active matches both states.
type ListFilter struct {
	Search string
	Active *bool
}

// ListActiveWithCounts returns active categories with the number of
// non-deleted books in each, most populated first, ties broken by name.
func (r *Repository) ListActiveWithCounts(ctx context.Context) ([]entities.CategoryWithCount, error) {
	var rows []entities.CategoryWithCount
	err := r.db.WithContext(ctx).Model(&entities.Category{}).
		Select("categories.*, COUNT(books.id) AS book_count").
		Joins("LEFT JOIN books ON books.category = categories.name AND books.is_deleted = ?", false).
		Where("categories.is_active = ?", true).
		Group("categories.id").
		Order("book_count DESC").Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []entities.CategoryWithCount{}
	}
	return rows, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Category, error) {
	var category entities.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) GetByName(ctx context.Context, name string) (*entities.Category, error) {
	var category entities.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns categories for the back-office, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, req pagination.Request) (*pagination.Page[entities.Category], error) {
	scope := func(ctx context.Context) *gorm.DB {
		db := r.db.WithContext(ctx).Model(&entities.Category{})
		if filter.Search != "" {
			pattern := utils.ContainsPattern(filter.Search)
			db = db.Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\' OR LOWER(description) LIKE LOWER(?) ESCAPE '\'`, pattern, pattern)
		}
		if filter.Active != nil {
			db = db.Where("is_active = ?", *filter.Active)
		}
		return db
	}

	return pagination.Paginate(ctx, req,
		func(ctx context.Context) (int64, error) {
			var total int64
			err := scope(ctx).Count(&total).Error
			return total, err
		},
		func(ctx context.Context, skip, limit int) ([]entities.Category, error) {
			var list []entities.Category
			err := scope(ctx).Order("created_at DESC").Order("rowid DESC").
				Offset(skip).Limit(limit).Find(&list).Error
			return list, err
		},
	)
}

// Create stores a category. Both ID and name must be unused.
func (r *Repository) Create(ctx context.Context, category *entities.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		q := tx.Model(&entities.Category{}).Where("name = ?", category.Name)
		if category.ID != "" {
			q = q.Or("id = ?", category.ID)
		}
		if err := q.Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrCategoryExists
		}

		if err := tx.Create(category).Error; err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		return nil
	})
}

// Update applies a partial update. A new name must not belong to another
// category.
func (r *Repository) Update(ctx context.Context, id string, update CategoryUpdate) (*entities.Category, error) {
	cols := map[string]any{}
	if update.Name != nil {
		cols["name"] = *update.Name
	}
	if update.Description != nil {
		cols["description"] = *update.Description
	}
	if update.Color != nil {
		cols["color"] = *update.Color
	}
	if update.Icon != nil {
		cols["icon"] = *update.Icon
	}
	if update.Image != nil {
		cols["image"] = *update.Image
	}
	if update.IsActive != nil {
		cols["is_active"] = *update.IsActive
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if update.Name != nil {
			var taken int64
			if err := tx.Model(&entities.Category{}).
				Where("name = ? AND id <> ?", *update.Name, id).
				Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return ErrNameInUse
			}
		}

		if len(cols) == 0 {
			return nil
		}
		result := tx.Model(&entities.Category{}).Where("id = ?", id).Updates(cols)
		if result.Error != nil {
			return fmt.Errorf("failed to update category: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a category. Books keep their category name.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Category{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Count returns the total and active number of categories.
func (r *Repository) Count(ctx context.Context) (total, active int64, err error) {
	db := r.db.WithContext(ctx).Model(&entities.Category{})
	if err = db.Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).Model(&entities.Category{}).Where("is_active = ?", true).Count(&active).Error
	return total, active, err
}
