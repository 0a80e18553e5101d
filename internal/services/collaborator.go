package services

import (
	"errors"

	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/pkg/response"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultRole is assigned when an add request does not name a role.
const DefaultRole = "Developer"

// PolicySink receives change notifications after committed mutations. The
// outcome is never awaited for correctness; implementations must not fail the
// calling operation.
type PolicySink interface {
	CollaboratorDataChanged()
	ProjectDataChanged()
}

// CollaboratorService manages the project/user collaborator relation. It is
// stateless between calls; every mutation runs in a single transaction and
// the policy sink is notified only after that transaction commits.
type CollaboratorService struct {
	db     *gorm.DB
	roles  *RoleCatalog
	policy PolicySink
}

func NewCollaboratorService(db *gorm.DB, roles *RoleCatalog, policy PolicySink) *CollaboratorService {
	return &CollaboratorService{db: db, roles: roles, policy: policy}
}

// CollaboratorInfo is one row of the collaborator listing: user attributes
// joined with the role held on the project.
type CollaboratorInfo struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// canonicalID normalizes an identifier to its canonical UUID form so that
// equality checks do not fail on formatting differences (case, braces).
func canonicalID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}

func sameIdentity(a, b string) bool {
	return canonicalID(a) == canonicalID(b)
}

func countMembership(tx *gorm.DB, projectID, userID string) (int64, error) {
	var count int64
	err := tx.Model(&models.Collaborator{}).
		Where("project_id = ? AND user_id = ?", projectID, canonicalID(userID)).
		Count(&count).Error
	return count, err
}

// List returns all collaborators of a project with their user attributes.
func (s *CollaboratorService) List(projectID string) ([]CollaboratorInfo, error) {
	items := []CollaboratorInfo{}
	err := s.db.Model(&models.Collaborator{}).
		Select("users.name, users.id, users.email, users.avatar_url, users.username, collaborators.role").
		Joins("INNER JOIN users ON users.id = collaborators.user_id").
		Where("collaborators.project_id = ?", projectID).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Add makes the user with the given username a collaborator. Adding an
// existing collaborator is a successful no-op; the policy sink is only
// notified when a row was actually inserted.
func (s *CollaboratorService) Add(projectID, actingUserID, username, role string) (string, error) {
	if role == "" {
		role = DefaultRole
	}

	var msg string
	var changed bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewBadRequest("User not found.")
			}
			return err
		}

		valid, err := s.roles.IsValidTx(tx, role)
		if err != nil {
			return err
		}
		if !valid {
			return response.NewBadRequest("Role unknown.")
		}

		count, err := countMembership(tx, projectID, user.ID)
		if err != nil {
			return err
		}
		if count != 0 {
			msg = "Specified user is already a collaborator."
			return nil
		}

		collaborator := models.Collaborator{
			ProjectID: projectID,
			UserID:    user.ID,
			Role:      role,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&collaborator).Error; err != nil {
			return err
		}

		msg = "Successfully added user."
		changed = true
		return nil
	})
	if err != nil {
		return "", err
	}

	if changed {
		s.policy.CollaboratorDataChanged()
	}
	return msg, nil
}

// ListRoles returns the current role catalog. Reading role metadata also
// warms the policy cache for both datasets; this mirrors the mutation path
// on purpose and must not be removed as an optimization.
func (s *CollaboratorService) ListRoles() ([]string, error) {
	roles, err := s.roles.List()
	if err != nil {
		return nil, err
	}

	s.policy.CollaboratorDataChanged()
	s.policy.ProjectDataChanged()
	return roles, nil
}

// ChangeRole updates the role of an existing collaborator. Callers may not
// change their own role, the target must already be a member, and the new
// role must be in the catalog at call time.
func (s *CollaboratorService) ChangeRole(projectID, actingUserID, targetUserID, newRole string) (string, error) {
	if sameIdentity(targetUserID, actingUserID) {
		return "", response.NewBadRequest("You are not allowed to change your own role.")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		count, err := countMembership(tx, projectID, targetUserID)
		if err != nil {
			return err
		}
		if count == 0 {
			return response.NewBadRequest("Specified user is not in collaborators list.")
		}

		valid, err := s.roles.IsValidTx(tx, newRole)
		if err != nil {
			return err
		}
		if !valid {
			return response.NewBadRequest("Role unknown.")
		}

		return tx.Model(&models.Collaborator{}).
			Where("project_id = ? AND user_id = ?", projectID, canonicalID(targetUserID)).
			Update("role", newRole).Error
	})
	if err != nil {
		return "", err
	}

	s.policy.CollaboratorDataChanged()
	return "Successfully changed user role.", nil
}

// Remove deletes a collaborator row. Removing the project owner is forbidden;
// removing a non-member is a successful no-op without notification.
func (s *CollaboratorService) Remove(projectID, actingUserID, targetUserID string) (string, error) {
	var msg string
	var changed bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, "id = ?", projectID).Error; err != nil {
			return err
		}

		// Compared against the recorded owner, not the acting user, so the
		// guard still holds if callers beyond the owner are ever allowed.
		if sameIdentity(targetUserID, project.OwnerID) {
			return response.NewBadRequest("It's not allowed to delete the owner of the project from collaborators.")
		}

		count, err := countMembership(tx, projectID, targetUserID)
		if err != nil {
			return err
		}
		if count == 0 {
			msg = "Specified user is not in collaborators list."
			return nil
		}

		if err := tx.Where("project_id = ? AND user_id = ?", projectID, canonicalID(targetUserID)).
			Delete(&models.Collaborator{}).Error; err != nil {
			return err
		}

		msg = "Successfully removed user."
		changed = true
		return nil
	})
	if err != nil {
		return "", err
	}

	if changed {
		s.policy.CollaboratorDataChanged()
	}
	return msg, nil
}
