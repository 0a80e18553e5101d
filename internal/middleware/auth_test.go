package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/collabhub/backend/internal/utils"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret-key-for-testing")
}

func newAuthTestRouter() *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  GetUserID(c),
			"username": GetUsername(c),
			"role":     GetRole(c),
		})
	})
	r.GET("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doAuthRequest(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired_MissingHeader(t *testing.T) {
	r := newAuthTestRouter()

	w := doAuthRequest(r, "/protected", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected 401", w.Code)
	}
}

func TestAuthRequired_MalformedHeader(t *testing.T) {
	r := newAuthTestRouter()

	for _, header := range []string{"Bearer", "Basic abc123", "Bearer not-a-valid-token"} {
		w := doAuthRequest(r, "/protected", header)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, expected 401", header, w.Code)
		}
	}
}

func TestAuthRequired_ValidToken(t *testing.T) {
	r := newAuthTestRouter()

	userID := "7f9c24e8-3b12-40d3-9a61-0f2d1e6b8c11"
	token, err := utils.GenerateToken(userID, "alice", "user", 1)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	w := doAuthRequest(r, "/protected", "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestAdminRequired(t *testing.T) {
	r := newAuthTestRouter()

	userToken, _ := utils.GenerateToken("11111111-1111-1111-1111-111111111111", "alice", "user", 1)
	adminToken, _ := utils.GenerateToken("22222222-2222-2222-2222-222222222222", "root", "admin", 1)

	w := doAuthRequest(r, "/admin", "Bearer "+userToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-admin status = %d, expected 403", w.Code)
	}

	w = doAuthRequest(r, "/admin", "Bearer "+adminToken)
	if w.Code != http.StatusOK {
		t.Errorf("admin status = %d, expected 200", w.Code)
	}
}
