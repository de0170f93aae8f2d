package handlers

import (
	"log"
	"net/http"

	"blogd/store"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	baseHandler
	store store.Store
}

// Check reports whether the backing store answers a ping.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		log.Printf("[Health] %s ping failed: %v", h.store.Name(), err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "store": h.store.Name()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": h.store.Name()})
}
