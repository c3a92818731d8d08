package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinReviewRating = 1
	MaxReviewRating = 5
)

// Review is a user's rating of a book. At most one exists per (user, book).
type Review struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_review_user_book;not null" json:"userId"`
	BookID    string    `gorm:"uniqueIndex:idx_review_user_book;index;size:64;not null" json:"bookId"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment,omitempty"`
	IsPublic  bool      `json:"isPublic"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
