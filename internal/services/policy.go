package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/collabhub/backend/internal/config"
	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Policy sync scopes. Each scope maps to one document in the policy engine's
// data API.
const (
	PolicyScopeCollaborators = "collaborators"
	PolicyScopeProjects      = "projects"
)

// PolicyService pushes collaborator and project datasets to the policy
// engine. Pushes are fire-and-forget: failures are logged and never surfaced
// to the operation that triggered them, and a failed push never rolls back a
// committed mutation. A periodic resync keeps the engine converged even if
// an individual push was dropped.
type PolicyService struct {
	db        *gorm.DB
	cfg       *config.PolicyConfig
	client    *http.Client
	queue     PolicyQueue
	scheduler *cron.Cron
}

func NewPolicyService(db *gorm.DB, cfg *config.PolicyConfig) *PolicyService {
	return &PolicyService{
		db:     db,
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetQueue installs the queue used to dispatch pushes. Without a queue,
// pushes run inline.
func (s *PolicyService) SetQueue(queue PolicyQueue) {
	s.queue = queue
}

// CollaboratorDataChanged notifies the policy engine that collaborator data
// changed.
func (s *PolicyService) CollaboratorDataChanged() {
	s.dispatch(PolicyScopeCollaborators)
}

// ProjectDataChanged notifies the policy engine that project data changed.
func (s *PolicyService) ProjectDataChanged() {
	s.dispatch(PolicyScopeProjects)
}

func (s *PolicyService) dispatch(scope string) {
	if !s.cfg.Enabled {
		return
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(scope); err != nil {
			logger.Warnf("[Policy] Failed to enqueue %s sync, pushing inline: %v", scope, err)
			s.push(scope)
		}
		return
	}

	s.push(scope)
}

// push performs the actual data push for one scope. Log-only error handling.
func (s *PolicyService) push(scope string) {
	var payload interface{}
	var err error

	switch scope {
	case PolicyScopeCollaborators:
		payload, err = s.collaboratorData()
	case PolicyScopeProjects:
		payload, err = s.projectData()
	default:
		logger.Warnf("[Policy] Unknown sync scope %q", scope)
		return
	}
	if err != nil {
		logger.Warnf("[Policy] Failed to load %s data: %v", scope, err)
		return
	}

	if err := s.put(scope, payload); err != nil {
		logger.Warnf("[Policy] Failed to push %s data: %v", scope, err)
		return
	}

	logger.Debug().Str("scope", scope).Msg("policy data pushed")
}

type policyCollaborator struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
}

type policyProject struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Public  bool   `json:"public"`
}

func (s *PolicyService) collaboratorData() ([]policyCollaborator, error) {
	rows := []policyCollaborator{}
	err := s.db.Model(&models.Collaborator{}).
		Select("project_id, user_id, role").
		Scan(&rows).Error
	return rows, err
}

func (s *PolicyService) projectData() ([]policyProject, error) {
	rows := []policyProject{}
	err := s.db.Model(&models.Project{}).
		Select("id, owner_id, public").
		Scan(&rows).Error
	return rows, err
}

// put replaces one document under the engine's data API.
func (s *PolicyService) put(scope string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/data/collabhub/%s", s.cfg.BaseURL, scope)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("policy engine returned status %d", resp.StatusCode)
	}
	return nil
}

// StartResyncScheduler starts the periodic full resync of both scopes.
func (s *PolicyService) StartResyncScheduler() {
	if !s.cfg.Enabled || s.cfg.ResyncMinutes <= 0 {
		return
	}

	s.scheduler = cron.New()
	spec := fmt.Sprintf("@every %dm", s.cfg.ResyncMinutes)
	_, err := s.scheduler.AddFunc(spec, func() {
		s.push(PolicyScopeCollaborators)
		s.push(PolicyScopeProjects)
	})
	if err != nil {
		logger.Warnf("[Policy] Failed to schedule resync: %v", err)
		return
	}

	s.scheduler.Start()
	logger.Infof("[Policy] Resync scheduler started (every %dm)", s.cfg.ResyncMinutes)
}

// StopResyncScheduler stops the periodic resync.
func (s *PolicyService) StopResyncScheduler() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
