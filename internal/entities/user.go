package entities

import (
	"time"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Name         string   `gorm:"size:256;not null" json:"name"`
	Email        string   `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string   `gorm:"size:255" json:"-"`
	Avatar       string   `gorm:"size:2048" json:"avatar,omitempty"`
	Providers    string   `gorm:"size:64;default:password" json:"providers"`
	Age          *int     `json:"age,omitempty"`
	Role         UserRole `gorm:"size:16;default:user;index" json:"role"`
	IsVerified   bool     `gorm:"default:false" json:"isVerified"`
	IsDeleted    bool     `gorm:"index;default:false" json:"isDeleted"`

	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user may use the back-office.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
