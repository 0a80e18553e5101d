package models

import (
	"fmt"

	"github.com/collabhub/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&Project{},
		&Collaborator{},
		&Role{},
		&SystemLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData inserts the default role catalog entries if they are
// missing. Deployments may add further roles directly in the table.
func SeedDefaultData() error {
	defaultRoles := []Role{
		{Name: "Developer", Description: "Can view the project and trigger builds"},
		{Name: "Admin", Description: "Can additionally manage project settings and secrets"},
	}

	for _, role := range defaultRoles {
		var count int64
		DB.Model(&Role{}).Where("name = ?", role.Name).Count(&count)
		if count == 0 {
			if err := DB.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
