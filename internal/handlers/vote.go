package handlers

import (
	"net/http"

	"breadit/internal/middleware"
	"breadit/internal/models"
	"breadit/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

type postVoteRequest struct {
	PostID   string          `json:"postId" binding:"required"`
	VoteType models.VoteType `json:"voteType" binding:"required,oneof=UP DOWN"`
}

type commentVoteRequest struct {
	CommentID string          `json:"commentId" binding:"required"`
	VoteType  models.VoteType `json:"voteType" binding:"required,oneof=UP DOWN"`
}

// VotePost 帖子投票：同向取消，反向翻转，没有则创建
func (h *VoteHandler) VotePost(c *gin.Context) {
	var req postVoteRequest
	if !bindJSON(c, &req, http.StatusUnprocessableEntity) {
		return
	}

	result, err := h.votes.VotePost(c.Request.Context(), middleware.CurrentUserID(c), req.PostID, req.VoteType)
	if err != nil {
		RenderError(c, err, "Could not register your vote, please try again.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// VoteComment 评论投票，规则同上
func (h *VoteHandler) VoteComment(c *gin.Context) {
	var req commentVoteRequest
	if !bindJSON(c, &req, http.StatusUnprocessableEntity) {
		return
	}

	result, err := h.votes.VoteComment(c.Request.Context(), middleware.CurrentUserID(c), req.CommentID, req.VoteType)
	if err != nil {
		RenderError(c, err, "Could not register your vote, please try again.")
		return
	}
	c.JSON(http.StatusOK, result)
}
