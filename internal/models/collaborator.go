package models

import "time"

// Collaborator grants a user a role on a project. The composite unique index
// on (project_id, user_id) keeps at most one role per user per project; rows
// are hard-deleted so the idempotent on-conflict insert stays correct.
type Collaborator struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID string    `gorm:"type:varchar(36);uniqueIndex:idx_project_user;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    string    `gorm:"type:varchar(36);uniqueIndex:idx_project_user;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      string    `gorm:"size:50;default:Developer" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Collaborator) TableName() string { return "collaborators" }
