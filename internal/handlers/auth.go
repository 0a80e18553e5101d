package handlers

import (
	"errors"

	"github.com/collabhub/backend/internal/middleware"
	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/internal/services"
	"github.com/collabhub/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db  *gorm.DB
	svc *services.AuthService
}

func NewAuthHandler(db *gorm.DB, svc *services.AuthService) *AuthHandler {
	return &AuthHandler{db: db, svc: svc}
}

// Login authenticates and returns a JWT token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetCurrentUser returns the authenticated user's profile.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, "id = ?", middleware.GetUserID(c)).Error; err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.Success(c, user)
}

// Logout is a client-side token discard; the server records the event only.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Success(c, gin.H{"message": "logged out"})
}
