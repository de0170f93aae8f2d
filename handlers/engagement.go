package handlers

import (
	"context"
	"net/http"

	"blogd/models"
	"blogd/services"

	"github.com/gin-gonic/gin"
)

type CommentRequest struct {
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

type ReplyRequest struct {
	UserID       string `json:"userId"`
	CommentID    string `json:"commentId"`
	ReplyContent string `json:"replyContent"`
}

type EngagementRequest struct {
	UserID string `json:"userId"`
}

type EngagementHandler struct {
	baseHandler
	engagement *services.EngagementService
}

func (h *EngagementHandler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	comment, err := h.engagement.AddComment(ctx, c.Param("postId"), req.UserID, req.Content)
	if err != nil {
		respondError(c, "AddComment", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

func (h *EngagementHandler) AddReply(c *gin.Context) {
	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	reply, err := h.engagement.AddReply(ctx, c.Param("postId"), req.CommentID, req.UserID, req.ReplyContent)
	if err != nil {
		respondError(c, "AddReply", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Reply added successfully",
		"reply":   reply,
	})
}

func (h *EngagementHandler) ToggleLike(c *gin.Context) {
	h.toggle(c, "ToggleLike", h.engagement.ToggleLike)
}

func (h *EngagementHandler) ToggleDislike(c *gin.Context) {
	h.toggle(c, "ToggleDislike", h.engagement.ToggleDislike)
}

type toggleFunc func(ctx context.Context, postID, userID string) (models.Engagement, error)

func (h *EngagementHandler) toggle(c *gin.Context, tag string, fn toggleFunc) {
	var req EngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	engagement, err := fn(ctx, c.Param("postId"), req.UserID)
	if err != nil {
		respondError(c, tag, err)
		return
	}
	c.JSON(http.StatusOK, engagement)
}

func (h *EngagementHandler) AddView(c *gin.Context) {
	var req EngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	views, err := h.engagement.AddView(ctx, c.Param("postId"), req.UserID)
	if err != nil {
		respondError(c, "AddView", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": views})
}
