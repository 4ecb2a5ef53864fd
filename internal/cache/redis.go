// Package cache keeps snapshots of popular posts in redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"breadit/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisStore 帖子快照存为 hash：post:<id>
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration // 0 表示不过期
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func postKey(id string) string {
	return fmt.Sprintf("post:%s", id)
}

// WritePost overwrites the whole snapshot of a post.
func (s *RedisStore) WritePost(ctx context.Context, post models.CachedPost) error {
	key := postKey(post.ID)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]interface{}{
		"id":             post.ID,
		"title":          post.Title,
		"content":        post.Content,
		"authorId":       post.AuthorID,
		"authorUsername": post.AuthorUsername,
		"subredditId":    post.SubredditID,
		"subredditName":  post.SubredditName,
		"currentVote":    string(post.CurrentVote),
		"createdAt":      post.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache post %s: %w", post.ID, err)
	}
	return nil
}

// ReadPost returns ok=false when the post was never cached or has expired.
func (s *RedisStore) ReadPost(ctx context.Context, id string) (*models.CachedPost, bool, error) {
	fields, err := s.client.HGetAll(ctx, postKey(id)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("read cached post %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}

	post := models.CachedPost{
		ID:             fields["id"],
		Title:          fields["title"],
		Content:        fields["content"],
		AuthorID:       fields["authorId"],
		AuthorUsername: fields["authorUsername"],
		SubredditID:    fields["subredditId"],
		SubredditName:  fields["subredditName"],
		CurrentVote:    models.VoteType(fields["currentVote"]),
	}
	if raw := fields["createdAt"]; raw != "" {
		createdAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, false, fmt.Errorf("parse cached post %s: %w", id, err)
		}
		post.CreatedAt = createdAt
	}
	return &post, true, nil
}

// Ping 启动时检查 redis 是否可用
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
