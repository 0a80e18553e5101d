package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is the scope collaborators are attached to. The owner is recorded
// on the project itself, not as a collaborator row, and is the identity the
// owner-removal guard compares against.
type Project struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	OwnerID   string    `gorm:"type:varchar(36);index;not null" json:"owner_id"`
	Owner     *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Public    bool      `gorm:"default:false" json:"public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
