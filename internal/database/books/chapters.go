package books

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bookbrief/bookbrief/internal/chapters"
	"github.com/bookbrief/bookbrief/internal/entities"
)

var ErrChapterExists = errors.New("chapter with this ID already exists")

// ChapterInput carries the editable fields of a chapter.
type ChapterInput struct {
	ID    string `json:"id"`
	Title string `json:"title" binding:"required,min=1"`
	Text  string `json:"text" binding:"required,min=1"`
}

// ListChapters returns the stored chapters of a non-deleted book in order,
// along with the book title.
func (r *Repository) ListChapters(ctx context.Context, bookID string) ([]entities.Chapter, string, error) {
	book, err := r.GetBook(ctx, bookID)
	if err != nil {
		return nil, "", err
	}
	if book.Chapters == nil {
		book.Chapters = []entities.Chapter{}
	}
	return book.Chapters, book.Title, nil
}

// AddChapter appends a chapter and returns it with the new chapter count.
func (r *Repository) AddChapter(ctx context.Context, bookID string, in ChapterInput) (*entities.Chapter, int, error) {
	chapter := entities.Chapter{
		ID:     in.ID,
		BookID: bookID,
		Title:  in.Title,
		Text:   chapters.SanitizeHTML(in.Text),
	}
	var total int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockBook(tx, bookID); err != nil {
			return err
		}

		if in.ID != "" {
			var existing int64
			if err := tx.Model(&entities.Chapter{}).Where("id = ?", in.ID).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				return ErrChapterExists
			}
		}

		var next struct{ Position *int }
		if err := tx.Model(&entities.Chapter{}).
			Select("MAX(position) AS position").
			Where("book_id = ?", bookID).
			Scan(&next).Error; err != nil {
			return err
		}
		if next.Position != nil {
			chapter.Position = *next.Position + 1
		}

		if err := tx.Create(&chapter).Error; err != nil {
			return fmt.Errorf("failed to create chapter: %w", err)
		}

		n, err := syncChapterCount(tx, bookID)
		total = n
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return &chapter, total, nil
}

// UpdateChapter replaces the title and text of a chapter.
func (r *Repository) UpdateChapter(ctx context.Context, bookID, chapterID string, in ChapterInput) (*entities.Chapter, error) {
	var chapter entities.Chapter

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockBook(tx, bookID); err != nil {
			return err
		}

		err := tx.Where("id = ? AND book_id = ?", chapterID, bookID).First(&chapter).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChapterNotFound
		}
		if err != nil {
			return err
		}

		chapter.Title = in.Title
		chapter.Text = chapters.SanitizeHTML(in.Text)
		return tx.Model(&chapter).Updates(map[string]any{
			"title": chapter.Title,
			"text":  chapter.Text,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// DeleteChapter removes a chapter and returns the remaining chapter count.
func (r *Repository) DeleteChapter(ctx context.Context, bookID, chapterID string) (int, error) {
	var total int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockBook(tx, bookID); err != nil {
			return err
		}

		result := tx.Where("id = ? AND book_id = ?", chapterID, bookID).Delete(&entities.Chapter{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete chapter: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrChapterNotFound
		}

		n, err := syncChapterCount(tx, bookID)
		total = n
		return err
	})
	return total, err
}

// lockBook checks the book exists and is not deleted. Touching updated_at
// makes SQLite take the write lock at the start of the transaction.
func lockBook(tx *gorm.DB, bookID string) error {
	result := tx.Model(&entities.Book{}).
		Where("id = ? AND is_deleted = ?", bookID, false).
		Update("updated_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

func syncChapterCount(tx *gorm.DB, bookID string) (int, error) {
	var n int64
	if err := tx.Model(&entities.Chapter{}).Where("book_id = ?", bookID).Count(&n).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&entities.Book{}).Where("id = ?", bookID).
		UpdateColumn("chapter_count", n).Error; err != nil {
		return 0, fmt.Errorf("failed to update chapter count: %w", err)
	}
	return int(n), nil
}
