package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an identity owned by the external identity subsystem. This service
// reads users to resolve usernames and render collaborator lists; the only
// local write paths are admin provisioning and the seeded admin account.
type User struct {
	ID        string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username  string     `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Name      string     `gorm:"size:200" json:"name"`
	Email     string     `gorm:"size:255" json:"email"`
	AvatarURL string     `gorm:"size:500" json:"avatar_url"`
	Password  string     `gorm:"size:255" json:"-"`               // bcrypt hash
	Role      string     `gorm:"size:50;default:user" json:"role"` // admin, user
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
