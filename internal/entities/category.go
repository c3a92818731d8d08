package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultCategoryColor = "#6B7280"
	DefaultCategoryIcon  = "fi-rr-book"
	DefaultCategoryImage = "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=400&h=300&fit=crop"
)

type Category struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description string    `gorm:"size:1024" json:"description,omitempty"`
	Color       string    `gorm:"size:16" json:"color"`
	Icon        string    `gorm:"size:64" json:"icon"`
	Image       string    `gorm:"size:2048" json:"image"`
	IsActive    bool      `gorm:"index" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
	if c.Icon == "" {
		c.Icon = DefaultCategoryIcon
	}
	if c.Image == "" {
		c.Image = DefaultCategoryImage
	}
	return nil
}

// CategoryWithCount is a category listing row with its number of live books.
type CategoryWithCount struct {
	Category
	BookCount int64 `json:"bookCount"`
}
