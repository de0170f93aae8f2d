package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"blogd/middleware"
	"blogd/services"
	"blogd/store"

	"github.com/gin-gonic/gin"
)

// Handler combines all handler types over one set of services.
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Post       *PostHandler
	Engagement *EngagementHandler
	Health     *HealthHandler
}

func NewHandler(svc *services.Services, st store.Store, issuer *middleware.TokenIssuer, timeout time.Duration) *Handler {
	base := baseHandler{timeout: timeout}
	return &Handler{
		Auth:       &AuthHandler{baseHandler: base, identity: svc.Identity, issuer: issuer},
		User:       &UserHandler{baseHandler: base, identity: svc.Identity},
		Post:       &PostHandler{baseHandler: base, posts: svc.Posts, query: svc.Query},
		Engagement: &EngagementHandler{baseHandler: base, engagement: svc.Engagement},
		Health:     &HealthHandler{baseHandler: base, store: st},
	}
}

type baseHandler struct {
	timeout time.Duration
}

// requestContext bounds a store call by the configured request timeout.
func (b baseHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := b.timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

// respondError writes the client-facing message for a service error and
// logs anything unexpected under tag.
func respondError(c *gin.Context, tag string, err error) {
	var svcErr *services.Error
	message := "Internal server error"
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrInvalidID),
		errors.Is(err, services.ErrUpdateFailed):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrAuth):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	default:
		log.Printf("[%s] error: %v", tag, err)
	}

	c.JSON(status, gin.H{"message": message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}
