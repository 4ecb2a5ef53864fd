package models

import (
	"time"
)

type VoteType string

const (
	VoteUp   VoteType = "UP"
	VoteDown VoteType = "DOWN"
)

// Opposite returns the other polarity.
func (v VoteType) Opposite() VoteType {
	if v == VoteUp {
		return VoteDown
	}
	return VoteUp
}

// PostVote is the ledger row of one user's current vote on a post.
// The composite primary key enforces at most one row per (user, post).
type PostVote struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PostID    string    `gorm:"primaryKey;size:36;index" json:"post_id"`
	Type      VoteType  `gorm:"size:4;not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentVote 同上，针对评论
type CommentVote struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CommentID string    `gorm:"primaryKey;size:36;index" json:"comment_id"`
	Type      VoteType  `gorm:"size:4;not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
