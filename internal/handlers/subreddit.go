package handlers

import (
	"net/http"

	"breadit/internal/middleware"
	"breadit/internal/services"

	"github.com/gin-gonic/gin"
)

type SubredditHandler struct {
	subreddits *services.SubredditService
	posts      *services.PostService
	pageSize   int
}

func NewSubredditHandler(subreddits *services.SubredditService, posts *services.PostService, pageSize int) *SubredditHandler {
	return &SubredditHandler{subreddits: subreddits, posts: posts, pageSize: pageSize}
}

type createSubredditRequest struct {
	Name string `json:"name" binding:"required,min=3,max=20"`
}

type subscriptionRequest struct {
	SubredditID string `json:"subredditId" binding:"required"`
}

// Create 创建社区
func (h *SubredditHandler) Create(c *gin.Context) {
	var req createSubredditRequest
	if !bindJSON(c, &req, http.StatusUnprocessableEntity) {
		return
	}

	sub, err := h.subreddits.Create(c.Request.Context(), middleware.CurrentUserID(c), req.Name)
	if err != nil {
		RenderError(c, err, "Could not create subreddit")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": sub.ID, "name": sub.Name})
}

// Show 社区主页：社区信息和第一页帖子
func (h *SubredditHandler) Show(c *gin.Context) {
	viewerID := middleware.CurrentUserID(c)

	view, err := h.subreddits.GetByName(c.Request.Context(), c.Param("slug"), viewerID)
	if err != nil {
		RenderError(c, err, "Could not fetch subreddit")
		return
	}

	posts, err := h.posts.Feed(c.Request.Context(), services.FeedQuery{
		ViewerID:      viewerID,
		SubredditName: view.Name,
		Page:          1,
		Limit:         h.pageSize,
	})
	if err != nil {
		RenderError(c, err, "Could not fetch posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"subreddit": view, "posts": posts})
}

// Subscribe 加入社区
func (h *SubredditHandler) Subscribe(c *gin.Context) {
	var req subscriptionRequest
	if !bindJSON(c, &req, http.StatusUnprocessableEntity) {
		return
	}

	if err := h.subreddits.Subscribe(c.Request.Context(), middleware.CurrentUserID(c), req.SubredditID); err != nil {
		RenderError(c, err, "Could not subscribe")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subredditId": req.SubredditID})
}

// Unsubscribe 退出社区，创建者不能退出自己的社区
func (h *SubredditHandler) Unsubscribe(c *gin.Context) {
	var req subscriptionRequest
	if !bindJSON(c, &req, http.StatusUnprocessableEntity) {
		return
	}

	if err := h.subreddits.Unsubscribe(c.Request.Context(), middleware.CurrentUserID(c), req.SubredditID); err != nil {
		RenderError(c, err, "Could not unsubscribe")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subredditId": req.SubredditID})
}
