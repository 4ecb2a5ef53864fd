package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"breadit/internal/models"
	"breadit/internal/testutil"
	"breadit/internal/utils"
)

func TestCommentCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db, "author")
	sub := testutil.CreateTestSubreddit(t, db, author, "golang")
	post := testutil.CreateTestPost(t, db, author, sub, "Hello world")
	other := testutil.CreateTestPost(t, db, author, sub, "Another post")
	foreign := testutil.CreateTestComment(t, db, author, other, "elsewhere", nil)

	svc := NewCommentService(db, nil, 0)

	blank := "  "
	tests := []struct {
		name      string
		authorID  string
		postID    string
		text      string
		replyToID *string
		wantErr   error
	}{
		{"valid", author.ID, post.ID, "nice post", nil, nil},
		{"blank reply target is top level", author.ID, post.ID, "nice post", &blank, nil},
		{"unauthenticated", "", post.ID, "nice post", nil, ErrUnauthenticated},
		{"markup only", author.ID, post.ID, "<b></b>", nil, ErrEmptyText},
		{"missing post", author.ID, "missing", "nice post", nil, ErrNotFound},
		{"reply target on another post", author.ID, post.ID, "nice post", &foreign.ID, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comment, err := svc.Create(ctx, tt.authorID, tt.postID, tt.text, tt.replyToID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if comment.ReplyToID != nil {
				t.Errorf("Expected top-level comment, got reply to %s", *comment.ReplyToID)
			}
		})
	}
}

func TestCommentThreadOrdersRepliesByVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db, "author")
	alice := testutil.CreateTestUser(t, db, "alice")
	bob := testutil.CreateTestUser(t, db, "bob")
	sub := testutil.CreateTestSubreddit(t, db, author, "golang")
	post := testutil.CreateTestPost(t, db, author, sub, "Hello world")

	root := testutil.CreateTestComment(t, db, author, post, "root", nil)
	quiet := testutil.CreateTestComment(t, db, alice, post, "quiet", root)
	loud := testutil.CreateTestComment(t, db, bob, post, "loud", root)

	votes := NewVoteService(db, nil, nil, 1)
	for _, voter := range []*models.User{alice, bob} {
		if _, err := votes.VoteComment(ctx, voter.ID, loud.ID, models.VoteUp); err != nil {
			t.Fatalf("VoteComment failed: %v", err)
		}
	}
	if _, err := votes.VoteComment(ctx, alice.ID, root.ID, models.VoteDown); err != nil {
		t.Fatalf("VoteComment failed: %v", err)
	}

	svc := NewCommentService(db, nil, 0)
	thread, err := svc.Thread(ctx, post.ID, alice.ID)
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}

	if len(thread) != 1 {
		t.Fatalf("Expected 1 top-level comment, got %d", len(thread))
	}
	top := thread[0]
	if top.ID != root.ID || top.VotesAmount != -1 {
		t.Errorf("Unexpected top-level comment: %+v", top)
	}
	if top.CurrentVote == nil || *top.CurrentVote != models.VoteDown {
		t.Errorf("Expected viewer vote DOWN on root, got %v", top.CurrentVote)
	}
	if len(top.Replies) != 2 {
		t.Fatalf("Expected 2 replies, got %d", len(top.Replies))
	}
	if top.Replies[0].ID != loud.ID || top.Replies[1].ID != quiet.ID {
		t.Errorf("Expected replies ordered by votes, got %s then %s", top.Replies[0].Text, top.Replies[1].Text)
	}
	if top.Replies[0].VotesAmount != 2 {
		t.Errorf("Expected 2 votes on loud reply, got %d", top.Replies[0].VotesAmount)
	}
}

func TestCommentThreadCacheInvalidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	author := testutil.CreateTestUser(t, db, "author")
	sub := testutil.CreateTestSubreddit(t, db, author, "golang")
	post := testutil.CreateTestPost(t, db, author, sub, "Hello world")
	comment := testutil.CreateTestComment(t, db, author, post, "first", nil)

	svc := NewCommentService(db, utils.NewLocalCache(16), time.Minute)

	thread, err := svc.Thread(ctx, post.ID, "")
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}
	if len(thread) != 1 {
		t.Fatalf("Expected 1 comment, got %d", len(thread))
	}

	// a write behind the service's back stays invisible until invalidation
	testutil.CreateTestComment(t, db, author, post, "second", nil)
	thread, _ = svc.Thread(ctx, post.ID, "")
	if len(thread) != 1 {
		t.Errorf("Expected cached thread with 1 comment, got %d", len(thread))
	}

	votes := NewVoteService(db, nil, svc, 1)
	if _, err := votes.VoteComment(ctx, author.ID, comment.ID, models.VoteUp); err != nil {
		t.Fatalf("VoteComment failed: %v", err)
	}

	thread, err = svc.Thread(ctx, post.ID, "")
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}
	if len(thread) != 2 {
		t.Fatalf("Expected fresh thread with 2 comments, got %d", len(thread))
	}
	if thread[0].VotesAmount != 1 {
		t.Errorf("Expected fresh score 1, got %d", thread[0].VotesAmount)
	}

	if _, err := svc.Create(ctx, author.ID, post.ID, "third", nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	thread, _ = svc.Thread(ctx, post.ID, "")
	if len(thread) != 3 {
		t.Errorf("Expected 3 comments after create, got %d", len(thread))
	}
}

func TestCommentThreadMissingPost(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewCommentService(db, nil, 0)

	if _, err := svc.Thread(context.Background(), "missing", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
