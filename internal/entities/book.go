package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book is a published summary. Chapters hold the body; AboutTheBook is the
// synopsis shown as the reader's introduction.
type Book struct {
	ID            string     `gorm:"primaryKey;size:64" json:"id"`
	Title         string     `gorm:"index;size:512;not null" json:"title"`
	Slug          string     `gorm:"index;size:512" json:"slug,omitempty"`
	Subtitle      string     `gorm:"size:512" json:"subtitle,omitempty"`
	ImageURL      string     `gorm:"size:2048" json:"imageUrl,omitempty"`
	AboutTheBook  string     `gorm:"type:text" json:"aboutTheBook,omitempty"`
	Author        string     `gorm:"index;size:256" json:"author,omitempty"`
	Category      string     `gorm:"index;size:128" json:"category,omitempty"`
	Rating        float64    `gorm:"default:0" json:"rating"`
	Chapters      []Chapter  `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"chapter"`
	ChapterCount  int        `gorm:"default:0" json:"chapterCount"`
	Language      string     `gorm:"size:32" json:"language,omitempty"`
	ReadingTime   int        `json:"readingTime,omitempty"` // minutes
	TotalReads    int64      `gorm:"default:0" json:"totalReads"`
	IsPublished   bool       `gorm:"index;default:false" json:"isPublished"`
	IsFree        bool       `gorm:"index" json:"isFree"` // no gorm default: it would replace an explicit false on insert
	IsDaily       bool       `gorm:"index;default:false" json:"isDaily"`
	PublishedDate *time.Time `gorm:"index" json:"publishedDate"`
	IsArchived    bool       `gorm:"default:false" json:"isArchived"`
	IsDeleted     bool       `gorm:"index;default:false" json:"isDeleted"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (Book) TableName() string {
	return "books"
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Chapter is a stored chapter of a book. Position is storage order only and
// is never exposed to readers as a navigation index.
type Chapter struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	BookID    string    `gorm:"index:idx_chapters_book_position,priority:1;size:64;not null" json:"-"`
	Position  int       `gorm:"index:idx_chapters_book_position,priority:2" json:"-"`
	Title     string    `gorm:"size:512;not null" json:"title"`
	Text      string    `gorm:"type:text" json:"text"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Chapter) TableName() string {
	return "chapters"
}

func (c *Chapter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
