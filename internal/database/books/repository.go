// Package books provides database operations for published summaries and
// their chapters.
//
// Reader-facing queries only ever see books that are published and not
// soft-deleted. Admin queries see everything except soft-deleted rows.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	page, err := repo.ListFree(ctx, pagination.NewRequest(0, 20))
//	book, err := repo.GetPublishedBook(ctx, "deep-work")
package books

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/pagination"
	"github.com/bookbrief/bookbrief/internal/utils"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrBookExists      = errors.New("book with this ID already exists")
	ErrChapterNotFound = errors.New("chapter not found")
)

// Repository handles all book and chapter database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SearchQuery filters a search. Keyword matches title or synopsis
// case-insensitively; Category must match exactly when set.
type SearchQuery struct {
	Keyword  string
	Category string
}

func (r *Repository) published(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("is_published = ? AND is_deleted = ?", true, false)
}

func preloadChapters(db *gorm.DB) *gorm.DB {
	return db.Preload("Chapters", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// GetBook retrieves a book that has not been soft-deleted, published or not,
// with its chapters in stored order.
func (r *Repository) GetBook(ctx context.Context, id string) (*entities.Book, error) {
	var book entities.Book
	err := preloadChapters(r.db.WithContext(ctx)).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetPublishedBook retrieves a published book with its chapters in stored
// order. Unpublished and deleted books are reported as ErrBookNotFound.
func (r *Repository) GetPublishedBook(ctx context.Context, id string) (*entities.Book, error) {
	var book entities.Book
	err := preloadChapters(r.published(ctx)).
		Where("id = ?", id).
		First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListFree returns a page of free published books, newest first.
func (r *Repository) ListFree(ctx context.Context, req pagination.Request) (*pagination.Page[entities.Book], error) {
	return r.listPublished(ctx, req, "is_free = ?", true)
}

// ListDaily returns a page of the current daily reads, newest first.
func (r *Repository) ListDaily(ctx context.Context, req pagination.Request) (*pagination.Page[entities.Book], error) {
	return r.listPublished(ctx, req, "is_daily = ?", true)
}

func (r *Repository) listPublished(ctx context.Context, req pagination.Request, cond string, args ...any) (*pagination.Page[entities.Book], error) {
	scope := func(ctx context.Context) *gorm.DB {
		return r.published(ctx).Where(cond, args...)
	}

	return pagination.Paginate(ctx, req,
		func(ctx context.Context) (int64, error) {
			var total int64
			err := scope(ctx).Count(&total).Error
			return total, err
		},
		func(ctx context.Context, skip, limit int) ([]entities.Book, error) {
			var books []entities.Book
			err := scope(ctx).
				Order("published_date DESC").Order("rowid ASC").
				Offset(skip).Limit(limit).
				Find(&books).Error
			return books, err
		},
	)
}

// Search returns a page of published books matching q, in store order.
func (r *Repository) Search(ctx context.Context, q SearchQuery, req pagination.Request) (*pagination.Page[entities.Book], error) {
	scope := func(ctx context.Context) *gorm.DB {
		db := r.published(ctx)
		if q.Keyword != "" {
			pattern := utils.ContainsPattern(q.Keyword)
			db = db.Where(`LOWER(title) LIKE LOWER(?) ESCAPE '\' OR LOWER(about_the_book) LIKE LOWER(?) ESCAPE '\'`, pattern, pattern)
		}
		if q.Category != "" {
			db = db.Where("category = ?", q.Category)
		}
		return db
	}

	return pagination.Paginate(ctx, req,
		func(ctx context.Context) (int64, error) {
			var total int64
			err := scope(ctx).Count(&total).Error
			return total, err
		},
		func(ctx context.Context, skip, limit int) ([]entities.Book, error) {
			var books []entities.Book
			err := scope(ctx).Order("rowid ASC").Offset(skip).Limit(limit).Find(&books).Error
			return books, err
		},
	)
}

// ListByCategory returns every published book in the named category.
func (r *Repository) ListByCategory(ctx context.Context, category string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.published(ctx).
		Where("category = ?", category).
		Order("published_date DESC").
		Find(&books).Error
	return books, err
}

// CountByCategory returns the number of non-deleted books per category name.
func (r *Repository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Category string
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&entities.Book{}).
		Select("category, COUNT(*) AS count").
		Where("is_deleted = ? AND category <> ''", false).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

// IncrementReads atomically bumps the read counter of a published book.
func (r *Repository) IncrementReads(ctx context.Context, id string) error {
	result := r.published(ctx).
		Where("id = ?", id).
		UpdateColumn("total_reads", gorm.Expr("total_reads + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("failed to increment reads: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// PurgeDeleted permanently removes books soft-deleted before the cutoff,
// together with their chapters.
func (r *Repository) PurgeDeleted(ctx context.Context, before time.Time) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&entities.Book{}).
			Where("is_deleted = ? AND updated_at < ?", true, before).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("book_id IN ?", ids).Delete(&entities.Chapter{}).Error; err != nil {
			return fmt.Errorf("failed to delete chapters: %w", err)
		}
		if err := tx.Where("book_id IN ?", ids).Delete(&entities.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews: %w", err)
		}
		if err := tx.Where("book_id IN ?", ids).Delete(&entities.ReadingListBook{}).Error; err != nil {
			return fmt.Errorf("failed to delete list entries: %w", err)
		}

		result := tx.Where("id IN ?", ids).Delete(&entities.Book{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete books: %w", result.Error)
		}
		purged = result.RowsAffected
		return nil
	})
	return purged, err
}

// RotateDaily clears the daily flag and sets it on the count published books
// with the fewest reads, so the rotation surfaces less-read summaries.
func (r *Repository) RotateDaily(ctx context.Context, count int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Book{}).
			Where("is_daily = ?", true).
			UpdateColumn("is_daily", false).Error; err != nil {
			return fmt.Errorf("failed to clear daily reads: %w", err)
		}
		if count <= 0 {
			return nil
		}

		if err := tx.Model(&entities.Book{}).
			Where("is_published = ? AND is_deleted = ?", true, false).
			Order("total_reads ASC").Order("published_date DESC").
			Limit(count).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		return tx.Model(&entities.Book{}).
			Where("id IN ?", ids).
			UpdateColumn("is_daily", true).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
