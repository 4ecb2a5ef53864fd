package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	Text      string        `gorm:"type:text;not null" json:"text"`
	PostID    string        `gorm:"size:36;not null;index" json:"post_id"`
	Post      Post          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AuthorID  string        `gorm:"size:36;not null;index" json:"author_id"`
	Author    User          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	ReplyToID *string       `gorm:"size:36;index" json:"reply_to_id"` // Nullable for top-level comments
	Replies   []Comment     `gorm:"foreignKey:ReplyToID" json:"-"`
	Votes     []CommentVote `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
