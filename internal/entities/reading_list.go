package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReadingList is a user-owned collection of books. BookIDs behaves as a set
// and is backed by the reading_list_books join table.
type ReadingList struct {
	ID          string            `gorm:"primaryKey;size:64" json:"id"`
	UserID      uint              `gorm:"index;not null" json:"userId"`
	Name        string            `gorm:"size:256;not null" json:"name"`
	Description string            `gorm:"size:1024" json:"description,omitempty"`
	IsPublic    bool              `gorm:"index;default:false" json:"isPublic"`
	Entries     []ReadingListBook `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE" json:"-"`
	BookIDs     []string          `gorm:"-" json:"bookIds"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (ReadingList) TableName() string {
	return "reading_lists"
}

func (l *ReadingList) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// ReadingListBook is one membership row. The (list_id, book_id) pair is
// unique, which is what makes adding a book idempotent.
type ReadingListBook struct {
	ID      uint      `gorm:"primaryKey" json:"-"`
	ListID  string    `gorm:"uniqueIndex:idx_list_book;size:64;not null" json:"-"`
	BookID  string    `gorm:"uniqueIndex:idx_list_book;index;size:64;not null" json:"bookId"`
	AddedAt time.Time `json:"addedAt"`
}

func (ReadingListBook) TableName() string {
	return "reading_list_books"
}
