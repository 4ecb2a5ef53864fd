package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"breadit/internal/middleware"
	"breadit/internal/services"
	"breadit/internal/utils"

	"github.com/gin-gonic/gin"
)

// maxPageSize 防止一次拉取过多帖子
const maxPageSize = 50

type PostHandler struct {
	posts    *services.PostService
	comments *services.CommentService
	pageSize int
}

func NewPostHandler(posts *services.PostService, comments *services.CommentService, pageSize int) *PostHandler {
	return &PostHandler{posts: posts, comments: comments, pageSize: pageSize}
}

type createPostRequest struct {
	Title       string          `json:"title" binding:"required,min=3,max=128"`
	SubredditID string          `json:"subredditId" binding:"required"`
	Content     json.RawMessage `json:"content"`
}

type createCommentRequest struct {
	PostID    string  `json:"postId" binding:"required"`
	Text      string  `json:"text" binding:"required,min=1,max=1000"`
	ReplyToID *string `json:"replyToId"`
}

// Create 发布帖子
func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if !bindJSON(c, &req, http.StatusBadRequest) {
		return
	}

	post, err := h.posts.Create(c.Request.Context(), middleware.CurrentUserID(c), req.SubredditID, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			JSONError(c, http.StatusForbidden, "Subscribe to post")
			return
		}
		RenderError(c, err, "Could not publish post at this time. Please try later")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": post.ID})
}

// List 帖子列表，按时间倒序分页
func (h *PostHandler) List(c *gin.Context) {
	limit := utils.IntOr(c.Query("limit"), h.pageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = h.pageSize
	}

	posts, err := h.posts.Feed(c.Request.Context(), services.FeedQuery{
		ViewerID:      middleware.CurrentUserID(c),
		SubredditName: c.Query("subredditName"),
		Page:          utils.IntOr(c.Query("page"), 1),
		Limit:         limit,
	})
	if err != nil {
		RenderError(c, err, "Could not fetch posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Detail(c *gin.Context) {
	post, err := h.posts.Detail(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		RenderError(c, err, "Could not fetch post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// Comments 评论树：顶层评论和它们的回复
func (h *PostHandler) Comments(c *gin.Context) {
	thread, err := h.comments.Thread(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		RenderError(c, err, "Could not fetch comments")
		return
	}
	c.JSON(http.StatusOK, thread)
}

// CreateComment 发表评论或回复
func (h *PostHandler) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if !bindJSON(c, &req, http.StatusUnprocessableEntity) {
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), middleware.CurrentUserID(c), req.PostID, req.Text, req.ReplyToID)
	if err != nil {
		RenderError(c, err, "Could not submit comment. Please try again later.")
		return
	}
	c.JSON(http.StatusOK, comment)
}
