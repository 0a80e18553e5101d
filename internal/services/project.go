package services

import (
	"errors"

	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db     *gorm.DB
	policy PolicySink
}

func NewProjectService(db *gorm.DB, policy PolicySink) *ProjectService {
	return &ProjectService{db: db, policy: policy}
}

type CreateProjectRequest struct {
	Name   string `json:"name" binding:"required"`
	Public bool   `json:"public"`
}

// Create creates a project owned by the acting user.
func (s *ProjectService) Create(req *CreateProjectRequest, ownerID string) (*models.Project, error) {
	project := models.Project{
		Name:    req.Name,
		OwnerID: canonicalID(ownerID),
		Public:  req.Public,
	}

	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}

	s.policy.ProjectDataChanged()
	return &project, nil
}

// GetByID returns a project by id.
func (s *ProjectService) GetByID(id string) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Owner").First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

// ListForUser returns projects the user owns, collaborates on, or that are
// public.
func (s *ProjectService) ListForUser(userID string) ([]models.Project, error) {
	uid := canonicalID(userID)
	var projects []models.Project
	err := s.db.
		Where("owner_id = ?", uid).
		Or("public = ?", true).
		Or("id IN (?)", s.db.Model(&models.Collaborator{}).Select("project_id").Where("user_id = ?", uid)).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Delete removes a project and its collaborator rows in one transaction.
func (s *ProjectService) Delete(id string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Collaborator{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Project{}).Error
	})
	if err != nil {
		return err
	}

	s.policy.CollaboratorDataChanged()
	s.policy.ProjectDataChanged()
	return nil
}
