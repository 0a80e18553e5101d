package main

import (
	"github.com/collabhub/backend/internal/config"
	"github.com/collabhub/backend/internal/handlers"
	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/internal/services"
	"github.com/collabhub/backend/internal/utils"
	"github.com/collabhub/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	policyService *services.PolicyService
	policyQueue   services.PolicyQueue
	policyWorker  *services.PolicyWorker
	authHandler   *handlers.AuthHandler
	userHandler   *handlers.UserHandler
	projectHandler *handlers.ProjectHandler
	collabHandler *handlers.CollaboratorHandler
	logHandler    *handlers.SystemLogHandler
	healthHandler *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default roles")
	}

	db := models.GetDB()
	services.InitSystemLogger(db)

	// Policy sync: queued through Redis when enabled, inline otherwise.
	policyService := services.NewPolicyService(db, &cfg.Policy)
	policyQueue := services.NewPolicyQueue(&cfg.Redis, policyService)
	policyService.SetQueue(policyQueue)
	policyService.StartResyncScheduler()

	var policyWorker *services.PolicyWorker
	if cfg.Redis.Enabled && policyQueue.IsAsync() {
		policyWorker = services.NewPolicyWorker(&cfg.Redis, policyService)
		if policyWorker != nil {
			policyWorker.Start()
		}
	}

	roleCatalog := services.NewRoleCatalog(db)
	collabService := services.NewCollaboratorService(db, roleCatalog, policyService)
	projectService := services.NewProjectService(db, policyService)
	authService := services.NewAuthService(db, &cfg.JWT)

	if err := authService.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		policyService:  policyService,
		policyQueue:    policyQueue,
		policyWorker:   policyWorker,
		authHandler:    handlers.NewAuthHandler(db, authService),
		userHandler:    handlers.NewUserHandler(db),
		projectHandler: handlers.NewProjectHandler(projectService),
		collabHandler:  handlers.NewCollaboratorHandler(collabService),
		logHandler:     handlers.NewSystemLogHandler(db),
		healthHandler:  handlers.NewHealthHandler(db),
	}
}

// shutdown gracefully stops all background components.
func (s *appServices) shutdown() {
	s.policyService.StopResyncScheduler()
	if s.policyWorker != nil {
		s.policyWorker.Stop()
	}
	if s.policyQueue != nil {
		s.policyQueue.Close()
	}
	logger.Info().Msg("All background components stopped")
}
