package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"breadit/internal/models"
	"breadit/internal/utils"

	"gorm.io/gorm"
)

var ErrEmptyTitle = errors.New("title must be longer than 3 characters")

// PostCacheReader is the read side of the hot-post cache.
type PostCacheReader interface {
	ReadPost(ctx context.Context, id string) (*models.CachedPost, bool, error)
}

type PostView struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Content        json.RawMessage  `json:"content"`
	AuthorID       string           `json:"authorId,omitempty"`
	AuthorUsername string           `json:"authorUsername"`
	SubredditID    string           `json:"subredditId,omitempty"`
	SubredditName  string           `json:"subredditName,omitempty"`
	VotesAmount    int              `json:"votesAmount"`
	CurrentVote    *models.VoteType `json:"currentVote"`
	CommentCount   int              `json:"commentCount"`
	CreatedAt      time.Time        `json:"createdAt"`
	Cached         bool             `json:"cached"`
}

type FeedQuery struct {
	ViewerID      string
	SubredditName string
	Page          int
	Limit         int
}

type PostService struct {
	db    *gorm.DB
	cache PostCacheReader
}

// NewPostService creates the post service; cache may be nil.
func NewPostService(db *gorm.DB, cache PostCacheReader) *PostService {
	return &PostService{db: db, cache: cache}
}

// Create 发布帖子，只有订阅了社区的用户可以发帖
func (s *PostService) Create(ctx context.Context, authorID, subredditID, title string, content json.RawMessage) (*models.Post, error) {
	if authorID == "" {
		return nil, ErrUnauthenticated
	}

	clean := utils.StripTags(title)
	if len([]rune(clean)) < 3 {
		return nil, ErrEmptyTitle
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND subreddit_id = ?", authorID, subredditID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("check subscription: %w", err)
	}
	if count == 0 {
		return nil, ErrForbidden
	}

	if len(content) == 0 {
		content = json.RawMessage("null")
	}
	post := models.Post{
		Title:       clean,
		Content:     string(content),
		AuthorID:    authorID,
		SubredditID: subredditID,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

// Feed 按时间倒序分页。没有指定社区时，登录用户只看到已订阅社区的帖子
func (s *PostService) Feed(ctx context.Context, q FeedQuery) ([]PostView, error) {
	if q.Limit <= 0 {
		q.Limit = 2
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	query := s.db.WithContext(ctx).Model(&models.Post{}).
		Preload("Author").
		Preload("Subreddit").
		Preload("Votes")

	switch {
	case q.SubredditName != "":
		query = query.Where("subreddit_id IN (?)",
			s.db.Model(&models.Subreddit{}).Select("id").Where("name = ?", q.SubredditName))
	case q.ViewerID != "":
		query = query.Where("subreddit_id IN (?)",
			s.db.Model(&models.Subscription{}).Select("subreddit_id").Where("user_id = ?", q.ViewerID))
	}

	var posts []models.Post
	err := query.Order("created_at DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}

	if err := s.fillCommentCounts(ctx, posts); err != nil {
		return nil, err
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, postView(p, q.ViewerID))
	}
	return views, nil
}

// Detail 优先读取 redis 快照，缓存未命中时查询数据库。分数总是从账本重新统计
func (s *PostService) Detail(ctx context.Context, id, viewerID string) (*PostView, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.ReadPost(ctx, id)
		if err != nil {
			log.Printf("[%s] Failed to read cached post %s: %v", utils.RequestID(ctx), id, err)
		}
		if ok {
			post, err := s.fromSnapshot(ctx, cached)
			if err != nil {
				return nil, err
			}
			view := postView(*post, viewerID)
			view.Cached = true
			return &view, nil
		}
	}

	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Subreddit").
		Preload("Votes").
		First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load post: %w", err)
	}

	posts := []models.Post{post}
	if err := s.fillCommentCounts(ctx, posts); err != nil {
		return nil, err
	}
	view := postView(posts[0], viewerID)
	return &view, nil
}

// fromSnapshot 用缓存的帖子字段拼出 Post，分数和评论数仍然从数据库实时读取
func (s *PostService) fromSnapshot(ctx context.Context, cached *models.CachedPost) (*models.Post, error) {
	post := models.Post{
		ID:          cached.ID,
		Title:       cached.Title,
		Content:     cached.Content,
		AuthorID:    cached.AuthorID,
		SubredditID: cached.SubredditID,
		Subreddit:   models.Subreddit{ID: cached.SubredditID, Name: cached.SubredditName},
		CreatedAt:   cached.CreatedAt,
	}
	if cached.AuthorUsername != "" {
		name := cached.AuthorUsername
		post.Author.Username = &name
	}

	if err := s.db.WithContext(ctx).Where("post_id = ?", cached.ID).Find(&post.Votes).Error; err != nil {
		return nil, fmt.Errorf("load votes: %w", err)
	}
	posts := []models.Post{post}
	if err := s.fillCommentCounts(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// fillCommentCounts 批量填充评论数
func (s *PostService) fillCommentCounts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var rows []struct {
		PostID string
		Count  int
	}
	err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("count comments: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].CommentCount = counts[posts[i].ID]
	}
	return nil
}

func postView(p models.Post, viewerID string) PostView {
	types := make([]models.VoteType, 0, len(p.Votes))
	var current *models.VoteType
	for _, v := range p.Votes {
		types = append(types, v.Type)
		if viewerID != "" && v.UserID == viewerID {
			vt := v.Type
			current = &vt
		}
	}
	return PostView{
		ID:             p.ID,
		Title:          p.Title,
		Content:        rawContent(p.Content),
		AuthorID:       p.AuthorID,
		AuthorUsername: p.Author.DisplayName(),
		SubredditID:    p.SubredditID,
		SubredditName:  p.Subreddit.Name,
		VotesAmount:    Aggregate(types),
		CurrentVote:    current,
		CommentCount:   p.CommentCount,
		CreatedAt:      p.CreatedAt,
	}
}

func rawContent(s string) json.RawMessage {
	if s == "" || !json.Valid([]byte(s)) {
		return json.RawMessage("null")
	}
	return json.RawMessage(s)
}
