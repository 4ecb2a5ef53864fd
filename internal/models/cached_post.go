package models

import "time"

// CachedPost 热门帖子在 redis 中的快照，可以随时丢失或过期
type CachedPost struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	AuthorID       string    `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
	SubredditID    string    `json:"subredditId"`
	SubredditName  string    `json:"subredditName"`
	CurrentVote    VoteType  `json:"currentVote"` // 触发写入的投票者当前的投票，取消投票时为空
	CreatedAt      time.Time `json:"createdAt"`
}
