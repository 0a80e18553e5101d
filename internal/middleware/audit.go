package middleware

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/collabhub/backend/internal/services"
	"github.com/gin-gonic/gin"
)

var passwordField = regexp.MustCompile(`("password"\s*:\s*")[^"]*(")`)

// AuditLog records write operations (POST/PUT/DELETE) to system_logs.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != "POST" && method != "PUT" && method != "DELETE" {
			c.Next()
			return
		}

		// Capture request body (truncated) for the audit record
		var bodySnippet string
		if c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			bodySnippet = string(bodyBytes)
			if len(bodySnippet) > 2000 {
				bodySnippet = bodySnippet[:2000] + "...[truncated]"
			}
			bodySnippet = passwordField.ReplaceAllString(bodySnippet, `$1***$2`)
		}

		c.Next()

		userID := GetUserID(c)
		username := GetUsername(c)
		status := c.Writer.Status()

		var uid *string
		if userID != "" {
			uid = &userID
		}

		module := auditModule(c.FullPath())
		message := fmt.Sprintf("%s %s %s -> %d", username, method, c.Request.URL.Path, status)

		services.LogInfo(module, method, message, uid, c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{
			"path":   c.Request.URL.Path,
			"status": status,
			"body":   bodySnippet,
			"audit":  true,
		})
	}
}

// auditModule derives a coarse module name from the route pattern.
func auditModule(fullPath string) string {
	switch {
	case strings.Contains(fullPath, "/collaborators"):
		return "collaborator"
	case strings.Contains(fullPath, "/projects"):
		return "project"
	case strings.Contains(fullPath, "/users"):
		return "user"
	case strings.Contains(fullPath, "/auth"):
		return "auth"
	default:
		return "api"
	}
}
