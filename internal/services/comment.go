package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"breadit/internal/models"
	"breadit/internal/utils"

	"gorm.io/gorm"
)

var ErrEmptyText = errors.New("text must contain at least 1 character")

type CommentView struct {
	ID             string           `json:"id"`
	Text           string           `json:"text"`
	AuthorID       string           `json:"authorId"`
	AuthorUsername string           `json:"authorUsername"`
	AuthorImage    string           `json:"authorImage"`
	ReplyToID      *string          `json:"replyToId"`
	VotesAmount    int              `json:"votesAmount"`
	CurrentVote    *models.VoteType `json:"currentVote"`
	CreatedAt      time.Time        `json:"createdAt"`
	Replies        []CommentView    `json:"replies,omitempty"`
}

type CommentService struct {
	db    *gorm.DB
	cache *utils.LocalCache
	ttl   time.Duration
}

// NewCommentService caches comment threads in cache for ttl; cache may be nil.
func NewCommentService(db *gorm.DB, cache *utils.LocalCache, ttl time.Duration) *CommentService {
	return &CommentService{db: db, cache: cache, ttl: ttl}
}

func threadKey(postID string) string {
	return fmt.Sprintf("comments:thread:%s", postID)
}

// InvalidateThread 主动失效帖子评论缓存
func (s *CommentService) InvalidateThread(postID string) {
	if s.cache != nil {
		s.cache.Delete(threadKey(postID))
	}
}

// Create adds a comment to a post, optionally as a reply to another comment of the same post.
func (s *CommentService) Create(ctx context.Context, authorID, postID, text string, replyToID *string) (*models.Comment, error) {
	if authorID == "" {
		return nil, ErrUnauthenticated
	}

	clean := utils.StripTags(text)
	if clean == "" {
		return nil, ErrEmptyText
	}

	var post models.Post
	if err := s.db.WithContext(ctx).Select("id").First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}
		return nil, fmt.Errorf("load post: %w", err)
	}

	if replyToID != nil && strings.TrimSpace(*replyToID) == "" {
		replyToID = nil
	}
	if replyToID != nil {
		var parent models.Comment
		err := s.db.WithContext(ctx).Select("id").
			Where("id = ? AND post_id = ?", *replyToID, postID).First(&parent).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("reply target %s: %w", *replyToID, ErrNotFound)
			}
			return nil, fmt.Errorf("load reply target: %w", err)
		}
	}

	comment := models.Comment{
		Text:      clean,
		PostID:    postID,
		AuthorID:  authorID,
		ReplyToID: replyToID,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.InvalidateThread(postID)
	return &comment, nil
}

// Thread returns the top-level comments of a post with their direct replies,
// replies ordered by number of votes descending.
func (s *CommentService) Thread(ctx context.Context, postID, viewerID string) ([]CommentView, error) {
	comments, err := s.loadThread(ctx, postID)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		view := commentView(c, viewerID)

		replies := append([]models.Comment(nil), c.Replies...)
		sort.SliceStable(replies, func(i, j int) bool {
			return len(replies[i].Votes) > len(replies[j].Votes)
		})
		for _, r := range replies {
			view.Replies = append(view.Replies, commentView(r, viewerID))
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *CommentService) loadThread(ctx context.Context, postID string) ([]models.Comment, error) {
	key := threadKey(postID)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key).([]models.Comment); ok {
			return cached, nil
		}
	}

	var post models.Post
	if err := s.db.WithContext(ctx).Select("id").First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}
		return nil, fmt.Errorf("load post: %w", err)
	}

	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND reply_to_id IS NULL", postID).
		Preload("Author").
		Preload("Votes").
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Replies.Author").
		Preload("Replies.Votes").
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(key, comments, s.ttl)
	}
	return comments, nil
}

func commentView(c models.Comment, viewerID string) CommentView {
	types := make([]models.VoteType, 0, len(c.Votes))
	var current *models.VoteType
	for _, v := range c.Votes {
		types = append(types, v.Type)
		if viewerID != "" && v.UserID == viewerID {
			vt := v.Type
			current = &vt
		}
	}
	return CommentView{
		ID:             c.ID,
		Text:           c.Text,
		AuthorID:       c.AuthorID,
		AuthorUsername: c.Author.DisplayName(),
		AuthorImage:    c.Author.Image,
		ReplyToID:      c.ReplyToID,
		VotesAmount:    Aggregate(types),
		CurrentVote:    current,
		CreatedAt:      c.CreatedAt,
	}
}
