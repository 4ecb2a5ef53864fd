package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Username  *string   `gorm:"uniqueIndex;size:20" json:"username"` // 未设置时为 NULL
	Password  string    `gorm:"not null" json:"-"`                   // Hash
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DisplayName returns the username, or "" when the user never picked one.
func (u *User) DisplayName() string {
	if u.Username == nil {
		return ""
	}
	return *u.Username
}
