package handlers

import (
	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/internal/utils"
	"github.com/collabhub/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler exposes the user lookup and admin provisioning endpoints.
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=admin user"`
}

// List returns users, optionally filtered by a username/name search term.
// Used by clients to resolve usernames when adding collaborators.
func (h *UserHandler) List(c *gin.Context) {
	query := h.db.Model(&models.User{}).Where("is_active = ?", true)

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("username LIKE ? OR name LIKE ?", like, like)
	}

	var users []models.User
	if err := query.Order("username").Limit(50).Find(&users).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, users)
}

// Create provisions a user account. Admin only.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var count int64
	h.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		response.BadRequest(c, "username already taken")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	if req.Role == "" {
		req.Role = "user"
	}

	user := models.User{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     req.Role,
		IsActive: true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, user)
}
