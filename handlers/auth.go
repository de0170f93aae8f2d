package handlers

import (
	"log"
	"net/http"

	"blogd/middleware"
	"blogd/services"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Phone        *string `json:"phone"`
	Education    *string `json:"education"`
	Occupation   *string `json:"occupation"`
	ProfileImage *string `json:"profileImage"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthHandler struct {
	baseHandler
	identity *services.IdentityService
	issuer   *middleware.TokenIssuer
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	userID, err := h.identity.Register(ctx, services.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		Education:    req.Education,
		Occupation:   req.Occupation,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		respondError(c, "Register", err)
		return
	}

	token, err := h.issuer.Issue(userID)
	if err != nil {
		log.Printf("[Register] failed to sign token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	log.Printf("✅ [Register] user %s registered", userID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  userID,
		"token":   token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	userID, err := h.identity.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, "Login", err)
		return
	}

	token, err := h.issuer.Issue(userID)
	if err != nil {
		log.Printf("[Login] failed to sign token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"userId":  userID,
		"token":   token,
	})
}
