// Package testutil holds fixtures shared by the handler and service tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"breadit/internal/db"
	"breadit/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh in-memory SQLite database with the full schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// one connection keeps the in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return gdb
}

// CreateTestUser inserts a user; an empty username leaves it unset.
func CreateTestUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Email:    uuid.NewString() + "@example.com",
		Password: "not-a-real-hash",
	}
	if username != "" {
		user.Username = &username
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

// CreateTestSubreddit inserts a subreddit owned by creator and subscribes the creator.
func CreateTestSubreddit(t *testing.T, gdb *gorm.DB, creator *models.User, name string) *models.Subreddit {
	t.Helper()

	sub := models.Subreddit{Name: name, CreatorID: creator.ID}
	if err := gdb.Create(&sub).Error; err != nil {
		t.Fatalf("Failed to create test subreddit: %v", err)
	}
	if err := gdb.Create(&models.Subscription{UserID: creator.ID, SubredditID: sub.ID}).Error; err != nil {
		t.Fatalf("Failed to subscribe creator: %v", err)
	}
	return &sub
}

// CreateTestPost inserts a post authored by author in sub.
func CreateTestPost(t *testing.T, gdb *gorm.DB, author *models.User, sub *models.Subreddit, title string) *models.Post {
	t.Helper()

	post := models.Post{
		Title:       title,
		Content:     `{"blocks":[]}`,
		AuthorID:    author.ID,
		SubredditID: sub.ID,
	}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}
	return &post
}

// CreateTestComment inserts a comment; replyTo may be nil.
func CreateTestComment(t *testing.T, gdb *gorm.DB, author *models.User, post *models.Post, text string, replyTo *models.Comment) *models.Comment {
	t.Helper()

	comment := models.Comment{Text: text, PostID: post.ID, AuthorID: author.ID}
	if replyTo != nil {
		comment.ReplyToID = &replyTo.ID
	}
	if err := gdb.Create(&comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}
	return &comment
}

// CountPostVotes returns the number of ledger rows for a post.
func CountPostVotes(t *testing.T, gdb *gorm.DB, postID string) int64 {
	t.Helper()

	var n int64
	if err := gdb.Model(&models.PostVote{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return n
}

// CountCommentVotes returns the number of ledger rows for a comment.
func CountCommentVotes(t *testing.T, gdb *gorm.DB, commentID string) int64 {
	t.Helper()

	var n int64
	if err := gdb.Model(&models.CommentVote{}).Where("comment_id = ?", commentID).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request with a JSON body.
func MakeRequest(method, path string, body interface{}) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	var raw []byte
	switch v := body.(type) {
	case string:
		raw = []byte(v)
	default:
		raw, _ = json.Marshal(v)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
