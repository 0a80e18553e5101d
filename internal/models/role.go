package models

import "time"

// Role is one entry of the dynamic collaborator role catalog. Roles are data,
// not code: the valid set lives in this table so it can evolve without a
// deploy, and every write-time validation reads the current rows.
type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Role) TableName() string { return "roles" }
