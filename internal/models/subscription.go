package models

import (
	"time"
)

// Subscription 用户订阅社区, one row per (user, subreddit)
type Subscription struct {
	UserID      string    `gorm:"primaryKey;size:36" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	SubredditID string    `gorm:"primaryKey;size:36" json:"subreddit_id"`
	Subreddit   Subreddit `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
