package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"breadit/internal/models"
	"breadit/internal/utils"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Transition 描述一次投票对账本做了什么
type Transition int

const (
	TransitionCreated Transition = iota // ∅ -> {p}
	TransitionRemoved                   // {p} -> ∅
	TransitionFlipped                   // {p} -> {¬p}
)

func (t Transition) String() string {
	switch t {
	case TransitionCreated:
		return "created"
	case TransitionRemoved:
		return "removed"
	case TransitionFlipped:
		return "flipped"
	}
	return "unknown"
}

// NextVote maps the voter's existing vote and the requested polarity to the
// resulting vote. A repeated polarity removes the vote.
func NextVote(existing *models.VoteType, requested models.VoteType) (*models.VoteType, Transition) {
	next := requested
	switch {
	case existing == nil:
		return &next, TransitionCreated
	case *existing == requested:
		return nil, TransitionRemoved
	default:
		return &next, TransitionFlipped
	}
}

// Aggregate 计算净得分：赞 +1，踩 -1
func Aggregate(votes []models.VoteType) int {
	score := 0
	for _, v := range votes {
		switch v {
		case models.VoteUp:
			score++
		case models.VoteDown:
			score--
		}
	}
	return score
}

// HotCache receives post snapshots once a post is popular enough.
type HotCache interface {
	Schedule(post models.CachedPost)
}

// ThreadInvalidator drops cached comment threads of a post.
type ThreadInvalidator interface {
	InvalidateThread(postID string)
}

type VoteResult struct {
	Transition  Transition       `json:"-"`
	CurrentVote *models.VoteType `json:"currentVote"`
	VotesAmount int              `json:"votesAmount"`
}

type VoteService struct {
	db        *gorm.DB
	hot       HotCache
	threads   ThreadInvalidator
	threshold int
}

// NewVoteService wires the ledger. hot and threads may be nil.
func NewVoteService(db *gorm.DB, hot HotCache, threads ThreadInvalidator, threshold int) *VoteService {
	return &VoteService{db: db, hot: hot, threads: threads, threshold: threshold}
}

// ledgerTable 帖子和评论的投票表结构相同，只是目标列不同
type ledgerTable struct {
	column string
	model  func() interface{}
	row    func(voterID, targetID string, vt models.VoteType) interface{}
}

var postLedger = ledgerTable{
	column: "post_id",
	model:  func() interface{} { return &models.PostVote{} },
	row: func(voterID, targetID string, vt models.VoteType) interface{} {
		return &models.PostVote{UserID: voterID, PostID: targetID, Type: vt}
	},
}

var commentLedger = ledgerTable{
	column: "comment_id",
	model:  func() interface{} { return &models.CommentVote{} },
	row: func(voterID, targetID string, vt models.VoteType) interface{} {
		return &models.CommentVote{UserID: voterID, CommentID: targetID, Type: vt}
	},
}

// VotePost applies one ledger transition on a post, re-aggregates its score and
// hands a snapshot to the hot cache when the score reaches the threshold.
func (s *VoteService) VotePost(ctx context.Context, voterID, postID string, vt models.VoteType) (VoteResult, error) {
	if voterID == "" {
		return VoteResult{}, ErrUnauthenticated
	}

	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Author").Preload("Subreddit").First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VoteResult{}, fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}
		return VoteResult{}, fmt.Errorf("load post: %w", err)
	}

	transition, err := s.apply(ctx, postLedger, voterID, postID, vt)
	if err != nil {
		return VoteResult{}, err
	}

	// 必须在提交之后重新统计，不能复用修改前的投票集合
	var votes []models.VoteType
	if err := s.db.WithContext(ctx).Model(&models.PostVote{}).Where("post_id = ?", postID).Pluck("type", &votes).Error; err != nil {
		return VoteResult{}, fmt.Errorf("count post votes: %w", err)
	}

	result := VoteResult{
		Transition:  transition,
		CurrentVote: resultingVote(transition, vt),
		VotesAmount: Aggregate(votes),
	}
	log.Printf("[%s] vote %s on post %s by %s: %s, score %d",
		utils.RequestID(ctx), vt, postID, voterID, transition, result.VotesAmount)

	if s.hot != nil && result.VotesAmount >= s.threshold {
		snapshot := models.CachedPost{
			ID:             post.ID,
			Title:          post.Title,
			Content:        post.Content,
			AuthorID:       post.AuthorID,
			AuthorUsername: post.Author.DisplayName(),
			SubredditID:    post.SubredditID,
			SubredditName:  post.Subreddit.Name,
			CreatedAt:      post.CreatedAt,
		}
		if result.CurrentVote != nil {
			snapshot.CurrentVote = *result.CurrentVote
		}
		s.hot.Schedule(snapshot)
	}

	return result, nil
}

// VoteComment is VotePost for comments. Comments are never cached in redis.
func (s *VoteService) VoteComment(ctx context.Context, voterID, commentID string, vt models.VoteType) (VoteResult, error) {
	if voterID == "" {
		return VoteResult{}, ErrUnauthenticated
	}

	var comment models.Comment
	if err := s.db.WithContext(ctx).Select("id", "post_id").First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VoteResult{}, fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
		}
		return VoteResult{}, fmt.Errorf("load comment: %w", err)
	}

	transition, err := s.apply(ctx, commentLedger, voterID, commentID, vt)
	if err != nil {
		return VoteResult{}, err
	}

	var votes []models.VoteType
	if err := s.db.WithContext(ctx).Model(&models.CommentVote{}).Where("comment_id = ?", commentID).Pluck("type", &votes).Error; err != nil {
		return VoteResult{}, fmt.Errorf("count comment votes: %w", err)
	}

	if s.threads != nil {
		s.threads.InvalidateThread(comment.PostID)
	}

	result := VoteResult{
		Transition:  transition,
		CurrentVote: resultingVote(transition, vt),
		VotesAmount: Aggregate(votes),
	}
	log.Printf("[%s] vote %s on comment %s by %s: %s, score %d",
		utils.RequestID(ctx), vt, commentID, voterID, transition, result.VotesAmount)
	return result, nil
}

// apply 在一个事务里执行条件删除 / 条件更新 / 冲突时更新的插入。
// Each statement is decided by the database against the (user, target) key,
// so there is no gap between reading the old vote and writing the new one.
func (s *VoteService) apply(ctx context.Context, table ledgerTable, voterID, targetID string, vt models.VoteType) (Transition, error) {
	var transition Transition
	where := "user_id = ? AND " + table.column + " = ? AND type = ?"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// {p} -> ∅
		res := tx.Where(where, voterID, targetID, vt).Delete(table.model())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			transition = TransitionRemoved
			return nil
		}

		// {¬p} -> {p}
		res = tx.Model(table.model()).Where(where, voterID, targetID, vt.Opposite()).Update("type", vt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			transition = TransitionFlipped
			return nil
		}

		// ∅ -> {p}; a racing insert for the same key turns into an update
		res = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: table.column}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
		}).Create(table.row(voterID, targetID, vt))
		if res.Error != nil {
			return res.Error
		}
		transition = TransitionCreated
		return nil
	})
	if err != nil {
		if retryable(err) {
			return 0, fmt.Errorf("vote on %s: %w", targetID, ErrConflict)
		}
		return 0, fmt.Errorf("apply vote: %w", err)
	}
	return transition, nil
}

// retryable 并发写入同一个 (voter, target) 时数据库可能返回的错误，客户端重试即可
func retryable(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func resultingVote(t Transition, requested models.VoteType) *models.VoteType {
	if t == TransitionRemoved {
		return nil
	}
	v := requested
	return &v
}
