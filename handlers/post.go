package handlers

import (
	"net/http"

	"blogd/services"

	"github.com/gin-gonic/gin"
)

type PostRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Image   *string `json:"image"`
}

func (r PostRequest) input() services.PostInput {
	return services.PostInput{Title: r.Title, Content: r.Content, Image: r.Image}
}

type PostHandler struct {
	baseHandler
	posts *services.PostService
	query *services.QueryService
}

// GetPosts returns a random sample of posts across all users.
func (h *PostHandler) GetPosts(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	posts, err := h.query.ListRandom(ctx, services.DefaultListLimit)
	if err != nil {
		respondError(c, "GetPosts", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Search(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	posts, err := h.query.SearchByTitle(ctx, c.Query("title"), services.DefaultListLimit)
	if err != nil {
		respondError(c, "Search", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	post, err := h.query.GetPost(ctx, c.Param("postId"))
	if err != nil {
		respondError(c, "GetPost", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	postID, err := h.posts.CreatePost(ctx, c.Param("userId"), req.input())
	if err != nil {
		respondError(c, "CreatePost", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"postId":  postID,
	})
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	postID := c.Param("postId")
	if err := h.posts.UpdatePost(ctx, c.Param("userId"), postID, req.input()); err != nil {
		respondError(c, "UpdatePost", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post updated successfully",
		"postId":  postID,
	})
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.posts.DeletePost(ctx, c.Param("userId"), c.Param("postId")); err != nil {
		respondError(c, "DeletePost", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
