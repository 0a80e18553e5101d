package middleware

import (
	"errors"
	"net/http"

	"github.com/collabhub/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectOwnerRequired guards owner-only project operations. It loads the
// project from the :id route parameter and rejects callers whose identity
// does not match the recorded owner. Must run after AuthRequired.
func ProjectOwnerRequired(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("id")

		var project models.Project
		if err := db.First(&project, "id = ?", projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
			}
			c.Abort()
			return
		}

		if canonical(project.OwnerID) != canonical(GetUserID(c)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "project owner access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func canonical(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}
