package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harborpoint/dealflow/internal/models"
	"github.com/harborpoint/dealflow/internal/services"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new auth handler with service injection
func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user and returns a token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login request: " + err.Error()})
		return
	}

	resp, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"token":         resp.Token,
		"refresh_token": resp.RefreshToken,
		"user":          resp.User,
		"expires_at":    resp.ExpiresAt,
	})
}

// Register creates a new user account
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration request: " + err.Error()})
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, gin.H{"user": user})
}

// RefreshToken exchanges a refresh token for a new token pair
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token required"})
		return
	}

	resp, err := h.authService.RefreshToken(strings.TrimSpace(req.RefreshToken))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"token":         resp.Token,
		"refresh_token": resp.RefreshToken,
		"user":          resp.User,
		"expires_at":    resp.ExpiresAt,
	})
}
