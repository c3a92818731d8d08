package books

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bookbrief/bookbrief/internal/chapters"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/pagination"
	"github.com/bookbrief/bookbrief/internal/utils"
)

// BookUpdate is a partial update; nil fields are left unchanged.
type BookUpdate struct {
	Title         *string    `json:"title"`
	Slug          *string    `json:"slug"`
	Subtitle      *string    `json:"subtitle"`
	ImageURL      *string    `json:"imageUrl"`
	AboutTheBook  *string    `json:"aboutTheBook"`
	Author        *string    `json:"author"`
	Category      *string    `json:"category"`
	Language      *string    `json:"language"`
	ReadingTime   *int       `json:"readingTime"`
	Rating        *float64   `json:"rating"`
	IsPublished   *bool      `json:"isPublished"`
	IsFree        *bool      `json:"isFree"`
	IsDaily       *bool      `json:"isDaily"`
	IsArchived    *bool      `json:"isArchived"`
	PublishedDate *time.Time `json:"publishedDate"`
}

func (u BookUpdate) columns() map[string]any {
	cols := map[string]any{}
	set := func(name string, isSet bool, value any) {
		if isSet {
			cols[name] = value
		}
	}
	set("title", u.Title != nil, deref(u.Title))
	set("slug", u.Slug != nil, deref(u.Slug))
	set("subtitle", u.Subtitle != nil, deref(u.Subtitle))
	set("image_url", u.ImageURL != nil, deref(u.ImageURL))
	set("about_the_book", u.AboutTheBook != nil, chapters.SanitizeHTML(deref(u.AboutTheBook)))
	set("author", u.Author != nil, deref(u.Author))
	set("category", u.Category != nil, deref(u.Category))
	set("language", u.Language != nil, deref(u.Language))
	set("reading_time", u.ReadingTime != nil, deref(u.ReadingTime))
	set("rating", u.Rating != nil, deref(u.Rating))
	set("is_published", u.IsPublished != nil, deref(u.IsPublished))
	set("is_free", u.IsFree != nil, deref(u.IsFree))
	set("is_daily", u.IsDaily != nil, deref(u.IsDaily))
	set("is_archived", u.IsArchived != nil, deref(u.IsArchived))
	set("published_date", u.PublishedDate != nil, u.PublishedDate)
	return cols
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// AdminList returns non-deleted books, newest first, optionally filtered by
// a case-insensitive match on title, author or category.
func (r *Repository) AdminList(ctx context.Context, search string, req pagination.Request) (*pagination.Page[entities.Book], error) {
	scope := func(ctx context.Context) *gorm.DB {
		db := r.db.WithContext(ctx).Model(&entities.Book{}).Where("is_deleted = ?", false)
		if search != "" {
			pattern := utils.ContainsPattern(search)
			db = db.Where(`LOWER(title) LIKE LOWER(?) ESCAPE '\' OR LOWER(author) LIKE LOWER(?) ESCAPE '\' OR LOWER(category) LIKE LOWER(?) ESCAPE '\'`,
				pattern, pattern, pattern)
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
			err := scope(ctx).Order("created_at DESC").Order("rowid DESC").
				Offset(skip).Limit(limit).Find(&books).Error
			return books, err
		},
	)
}

// Create stores a new book and any chapters it carries. A caller-supplied
// ID that is already taken, even by a soft-deleted book, yields ErrBookExists.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	if book.Slug == "" {
		book.Slug = utils.Slugify(book.Title)
	}
	book.AboutTheBook = chapters.SanitizeHTML(book.AboutTheBook)
	for i := range book.Chapters {
		book.Chapters[i].Position = i
		book.Chapters[i].Text = chapters.SanitizeHTML(book.Chapters[i].Text)
	}
	book.ChapterCount = len(book.Chapters)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if book.ID != "" {
			var existing int64
			if err := tx.Model(&entities.Book{}).Where("id = ?", book.ID).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				return ErrBookExists
			}
		}

		if err := tx.Create(book).Error; err != nil {
			return fmt.Errorf("failed to create book: %w", err)
		}
		return nil
	})
}

// Update applies a partial update to a non-deleted book and returns it.
func (r *Repository) Update(ctx context.Context, id string, update BookUpdate) (*entities.Book, error) {
	cols := update.columns()
	if len(cols) > 0 {
		result := r.db.WithContext(ctx).Model(&entities.Book{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(cols)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update book: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrBookNotFound
		}
	}
	return r.GetBook(ctx, id)
}

// SoftDelete flags a book as deleted. It stays in the table until purged.
func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{"is_deleted": true, "is_daily": false})
	if result.Error != nil {
		return fmt.Errorf("failed to delete book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// CountActive returns the number of non-deleted books.
func (r *Repository) CountActive(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Where("is_deleted = ?", false).Count(&total).Error
	return total, err
}

// Exists reports whether a book with id exists, deleted or not.
func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Select("id").Where("id = ?", id).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}
