package handlers

import (
	"net/http"

	"blogd/middleware"
	"blogd/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	baseHandler
	identity *services.IdentityService
}

// GetUser returns the public profile with all of the user's posts.
func (h *UserHandler) GetUser(c *gin.Context) {
	h.profile(c, "GetUser", c.Param("userId"))
}

// GetMe returns the profile of the authenticated caller.
func (h *UserHandler) GetMe(c *gin.Context) {
	h.profile(c, "GetMe", c.GetString(middleware.UserIDKey))
}

func (h *UserHandler) profile(c *gin.Context, tag, userID string) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	view, err := h.identity.GetProfile(ctx, userID)
	if err != nil {
		respondError(c, tag, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
