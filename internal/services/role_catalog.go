package services

import (
	"github.com/collabhub/backend/internal/models"
	"gorm.io/gorm"
)

// RoleCatalog exposes the dynamic set of valid collaborator roles. The set
// lives in the roles table and is re-read on every call; a store failure
// means no role validates (fail closed).
type RoleCatalog struct {
	db *gorm.DB
}

func NewRoleCatalog(db *gorm.DB) *RoleCatalog {
	return &RoleCatalog{db: db}
}

// List returns all role names ordered by catalog insertion.
func (r *RoleCatalog) List() ([]string, error) {
	return r.ListTx(r.db)
}

// ListTx is List running against the given transaction handle.
func (r *RoleCatalog) ListTx(tx *gorm.DB) ([]string, error) {
	var names []string
	if err := tx.Model(&models.Role{}).Order("id").Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// IsValid reports whether candidate is a current member of the catalog.
func (r *RoleCatalog) IsValid(candidate string) (bool, error) {
	return r.IsValidTx(r.db, candidate)
}

// IsValidTx is IsValid running against the given transaction handle.
func (r *RoleCatalog) IsValidTx(tx *gorm.DB, candidate string) (bool, error) {
	var count int64
	if err := tx.Model(&models.Role{}).Where("name = ?", candidate).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
