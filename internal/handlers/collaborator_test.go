package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/collabhub/backend/internal/middleware"
	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/internal/services"
	"github.com/collabhub/backend/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret-key-for-testing")
}

type noopPolicySink struct{}

func (noopPolicySink) CollaboratorDataChanged() {}
func (noopPolicySink) ProjectDataChanged()      {}

type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	owner   *models.User
	alice   *models.User
	project *models.Project
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Project{}, &models.Collaborator{}, &models.Role{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	for _, name := range []string{"Developer", "Admin"} {
		db.Create(&models.Role{Name: name})
	}

	owner := &models.User{Username: "owner", Email: "owner@example.com"}
	alice := &models.User{Username: "alice", Email: "alice@example.com"}
	db.Create(owner)
	db.Create(alice)

	project := &models.Project{Name: "demo", OwnerID: owner.ID}
	db.Create(project)

	svc := services.NewCollaboratorService(db, services.NewRoleCatalog(db), noopPolicySink{})
	h := NewCollaboratorHandler(svc)

	r := gin.New()
	api := r.Group("/api", middleware.AuthRequired())
	api.GET("/projects/:id/collaborators", h.List)
	api.GET("/projects/:id/collaborators/roles", h.ListRoles)

	ownerOnly := api.Group("", middleware.ProjectOwnerRequired(db))
	ownerOnly.POST("/projects/:id/collaborators", h.Add)
	ownerOnly.PUT("/projects/:id/collaborators/:userID", h.ChangeRole)
	ownerOnly.DELETE("/projects/:id/collaborators/:userID", h.Remove)

	return &testEnv{router: r, db: db, owner: owner, alice: alice, project: project}
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, "user", 1)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestCollaborators_RequiresAuth(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, "GET", "/api/projects/"+env.project.ID+"/collaborators", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected 401", w.Code)
	}
}

func TestAddCollaborator_OwnerOnly(t *testing.T) {
	env := setupEnv(t)
	body := AddCollaboratorRequest{Username: "alice", Role: "Developer"}

	w := env.do(t, "POST", "/api/projects/"+env.project.ID+"/collaborators", tokenFor(t, env.alice), body)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-owner add status = %d, expected 403", w.Code)
	}

	w = env.do(t, "POST", "/api/projects/"+env.project.ID+"/collaborators", tokenFor(t, env.owner), body)
	if w.Code != http.StatusOK {
		t.Fatalf("owner add status = %d, body = %s", w.Code, w.Body.String())
	}

	resp := parseBody(t, w)
	data := resp["data"].(map[string]interface{})
	if data["message"] != "Successfully added user." {
		t.Errorf("message = %v", data["message"])
	}
}

func TestAddCollaborator_UnknownUser(t *testing.T) {
	env := setupEnv(t)
	body := AddCollaboratorRequest{Username: "ghost"}

	w := env.do(t, "POST", "/api/projects/"+env.project.ID+"/collaborators", tokenFor(t, env.owner), body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", w.Code)
	}
	resp := parseBody(t, w)
	if resp["message"] != "User not found." {
		t.Errorf("message = %v", resp["message"])
	}
}

func TestListCollaborators_AnyAuthenticatedUser(t *testing.T) {
	env := setupEnv(t)
	env.do(t, "POST", "/api/projects/"+env.project.ID+"/collaborators",
		tokenFor(t, env.owner), AddCollaboratorRequest{Username: "alice", Role: "Admin"})

	// A non-owner may read the list.
	w := env.do(t, "GET", "/api/projects/"+env.project.ID+"/collaborators", tokenFor(t, env.alice), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	resp := parseBody(t, w)
	items := resp["data"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items = %d, expected 1", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["username"] != "alice" || first["role"] != "Admin" {
		t.Errorf("item = %v", first)
	}
}

func TestListRoles(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, "GET", "/api/projects/"+env.project.ID+"/collaborators/roles", tokenFor(t, env.alice), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	resp := parseBody(t, w)
	roles := resp["data"].([]interface{})
	if len(roles) != 2 || roles[0] != "Developer" || roles[1] != "Admin" {
		t.Errorf("roles = %v", roles)
	}
}

func TestChangeRole_SelfForbidden(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, "PUT", "/api/projects/"+env.project.ID+"/collaborators/"+env.owner.ID,
		tokenFor(t, env.owner), ChangeCollaboratorRequest{Role: "Admin"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", w.Code)
	}
	resp := parseBody(t, w)
	if resp["message"] != "You are not allowed to change your own role." {
		t.Errorf("message = %v", resp["message"])
	}
}

func TestRemove_OwnerForbidden(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, "DELETE", "/api/projects/"+env.project.ID+"/collaborators/"+env.owner.ID,
		tokenFor(t, env.owner), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", w.Code)
	}
	resp := parseBody(t, w)
	if resp["message"] != "It's not allowed to delete the owner of the project from collaborators." {
		t.Errorf("message = %v", resp["message"])
	}
}

func TestRemove_NonMemberReturnsOK(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, "DELETE", "/api/projects/"+env.project.ID+"/collaborators/"+env.alice.ID,
		tokenFor(t, env.owner), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", w.Code)
	}
	resp := parseBody(t, w)
	data := resp["data"].(map[string]interface{})
	if data["message"] != "Specified user is not in collaborators list." {
		t.Errorf("message = %v", data["message"])
	}
}

func TestProjectNotFound(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, "POST", "/api/projects/00000000-0000-0000-0000-000000000000/collaborators",
		tokenFor(t, env.owner), AddCollaboratorRequest{Username: "alice"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", w.Code)
	}
}
