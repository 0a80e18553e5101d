package handlers

import (
	"github.com/collabhub/backend/internal/middleware"
	"github.com/collabhub/backend/internal/services"
	"github.com/collabhub/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// CollaboratorHandler exposes the collaborator management endpoints.
type CollaboratorHandler struct {
	svc *services.CollaboratorService
}

func NewCollaboratorHandler(svc *services.CollaboratorService) *CollaboratorHandler {
	return &CollaboratorHandler{svc: svc}
}

type AddCollaboratorRequest struct {
	Username string `json:"username" binding:"required"`
	Role     string `json:"role"`
}

type ChangeCollaboratorRequest struct {
	Role string `json:"role" binding:"required"`
}

// List returns all collaborators of a project.
func (h *CollaboratorHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

// Add adds a user to the project by username. Owner only.
func (h *CollaboratorHandler) Add(c *gin.Context) {
	var req AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.svc.Add(c.Param("id"), middleware.GetUserID(c), req.Username, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": msg})
}

// ListRoles returns the valid role catalog.
func (h *CollaboratorHandler) ListRoles(c *gin.Context) {
	roles, err := h.svc.ListRoles()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, roles)
}

// ChangeRole updates a collaborator's role. Owner only.
func (h *CollaboratorHandler) ChangeRole(c *gin.Context) {
	var req ChangeCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.svc.ChangeRole(c.Param("id"), middleware.GetUserID(c), c.Param("userID"), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": msg})
}

// Remove deletes a collaborator from the project. Owner only.
func (h *CollaboratorHandler) Remove(c *gin.Context) {
	msg, err := h.svc.Remove(c.Param("id"), middleware.GetUserID(c), c.Param("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": msg})
}
