// Package reviews provides database operations for book reviews.
//
// A user has at most one review per book. Upsert relies on the unique
// (user_id, book_id) index: a second review from the same user overwrites
// the rating, comment and visibility of the first.
//
// # Usage
//
//	repo := reviews.NewRepository(db)
//	review, created, err := repo.Upsert(ctx, &entities.Review{UserID: 1, BookID: "deep-work", Rating: 5})
package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookbrief/bookbrief/internal/entities"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrNotOwner       = errors.New("review belongs to another user")
	ErrInvalidRating  = fmt.Errorf("rating must be between %d and %d", entities.MinReviewRating, entities.MaxReviewRating)
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert creates the review or overwrites the caller's existing review of
// the same book. created reports which of the two happened.
func (r *Repository) Upsert(ctx context.Context, review *entities.Review) (*entities.Review, bool, error) {
	if review.Rating < entities.MinReviewRating || review.Rating > entities.MaxReviewRating {
		return nil, false, ErrInvalidRating
	}

	candidateID := uuid.NewString()
	review.ID = candidateID

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "is_public", "updated_at"}),
	}).Create(review).Error
	if err != nil {
		return nil, false, fmt.Errorf("failed to save review: %w", err)
	}

	stored, err := r.GetForUserBook(ctx, review.UserID, review.BookID)
	if err != nil {
		return nil, false, err
	}
	return stored, stored.ID == candidateID, nil
}

// Delete removes a review written by userID.
func (r *Repository) Delete(ctx context.Context, id string, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review entities.Review
		err := tx.Where("id = ?", id).First(&review).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		if err != nil {
			return err
		}
		if review.UserID != userID {
			return ErrNotOwner
		}
		return tx.Delete(&review).Error
	})
}

// ListPublicByBook returns the public reviews of a book, newest first.
func (r *Repository) ListPublicByBook(ctx context.Context, bookID string) ([]entities.Review, error) {
	reviews := []entities.Review{}
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND is_public = ?", bookID, true).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// ListByUser returns the reviews written by userID, newest first. Private
// reviews are included only for the author.
func (r *Repository) ListByUser(ctx context.Context, userID, viewerID uint) ([]entities.Review, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if userID != viewerID {
		q = q.Where("is_public = ?", true)
	}

	reviews := []entities.Review{}
	err := q.Order("created_at DESC").Find(&reviews).Error
	return reviews, err
}

// GetForUserBook returns the review userID wrote for bookID.
func (r *Repository) GetForUserBook(ctx context.Context, userID uint, bookID string) (*entities.Review, error) {
	var review entities.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}
