package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Title       string     `gorm:"size:128;not null" json:"title"`
	Content     string     `gorm:"type:text" json:"content"` // serialized editor JSON, opaque to the server
	AuthorID    string     `gorm:"size:36;not null;index" json:"author_id"`
	Author      User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	SubredditID string     `gorm:"size:36;not null;index" json:"subreddit_id"`
	Subreddit   Subreddit  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"subreddit"`
	Votes       []PostVote `json:"-"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// 非数据库字段，用于查询时填充
	CommentCount int `gorm:"-" json:"comment_count"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
