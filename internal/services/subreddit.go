package services

import (
	"context"
	"errors"
	"fmt"

	"breadit/internal/models"

	"gorm.io/gorm"
)

type SubredditView struct {
	models.Subreddit
	MemberCount  int64 `json:"memberCount"`
	IsSubscribed bool  `json:"isSubscribed"`
	IsCreator    bool  `json:"isCreator"`
}

type SubredditService struct {
	db *gorm.DB
}

func NewSubredditService(db *gorm.DB) *SubredditService {
	return &SubredditService{db: db}
}

// Create 创建社区，创建者自动订阅
func (s *SubredditService) Create(ctx context.Context, creatorID, name string) (*models.Subreddit, error) {
	if creatorID == "" {
		return nil, ErrUnauthenticated
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Subreddit{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check subreddit: %w", err)
	}
	if count > 0 {
		return nil, ErrSubredditExists
	}

	sub := models.Subreddit{Name: name, CreatorID: creatorID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		return tx.Create(&models.Subscription{UserID: creatorID, SubredditID: sub.ID}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSubredditExists
		}
		return nil, fmt.Errorf("create subreddit: %w", err)
	}
	return &sub, nil
}

func (s *SubredditService) Subscribe(ctx context.Context, userID, subredditID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if _, err := s.find(ctx, subredditID); err != nil {
		return err
	}

	subscribed, err := s.IsSubscribed(ctx, userID, subredditID)
	if err != nil {
		return err
	}
	if subscribed {
		return ErrAlreadySubscribed
	}

	err = s.db.WithContext(ctx).Create(&models.Subscription{UserID: userID, SubredditID: subredditID}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadySubscribed
		}
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

func (s *SubredditService) Unsubscribe(ctx context.Context, userID, subredditID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	subscribed, err := s.IsSubscribed(ctx, userID, subredditID)
	if err != nil {
		return err
	}
	if !subscribed {
		return ErrNotSubscribed
	}

	sub, err := s.find(ctx, subredditID)
	if err != nil {
		return err
	}
	if sub.CreatorID == userID {
		return ErrOwnSubreddit
	}

	err = s.db.WithContext(ctx).
		Where("user_id = ? AND subreddit_id = ?", userID, subredditID).
		Delete(&models.Subscription{}).Error
	if err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}

func (s *SubredditService) IsSubscribed(ctx context.Context, userID, subredditID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND subreddit_id = ?", userID, subredditID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return count > 0, nil
}

// GetByName 社区主页信息
func (s *SubredditService) GetByName(ctx context.Context, name, viewerID string) (*SubredditView, error) {
	var sub models.Subreddit
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subreddit %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("load subreddit: %w", err)
	}

	view := SubredditView{Subreddit: sub, IsCreator: viewerID != "" && sub.CreatorID == viewerID}
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subreddit_id = ?", sub.ID).Count(&view.MemberCount).Error; err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}

	subscribed, err := s.IsSubscribed(ctx, viewerID, sub.ID)
	if err != nil {
		return nil, err
	}
	view.IsSubscribed = subscribed
	return &view, nil
}

func (s *SubredditService) find(ctx context.Context, id string) (*models.Subreddit, error) {
	var sub models.Subreddit
	if err := s.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subreddit %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load subreddit: %w", err)
	}
	return &sub, nil
}
