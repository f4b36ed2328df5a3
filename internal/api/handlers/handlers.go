package handlers

import (
	"github.com/Krushna2656/agentic-honeypot/internal/config"
	"github.com/Krushna2656/agentic-honeypot/internal/domain/services"
	"github.com/Krushna2656/agentic-honeypot/internal/infrastructure/cache"
	"github.com/Krushna2656/agentic-honeypot/internal/infrastructure/database"
	"github.com/Krushna2656/agentic-honeypot/internal/infrastructure/database/repository"
	"github.com/Krushna2656/agentic-honeypot/internal/session"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Honeypot *HoneypotHandler
	Sessions *SessionsHandler
	Patterns *PatternsHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Config     config.Config
	Engine     *services.HoneypotEngine
	Classifier *services.StageClassifier
	Store      *session.Store
	Cache      *cache.RedisCache
	DB         *database.PostgresDB
	Repo       *repository.TurnRepository
	Logger     *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Cache, deps.DB, deps.Store, deps.Config.App.Version, deps.Logger),
		Honeypot: NewHoneypotHandler(deps.Engine, deps.Logger),
		Sessions: NewSessionsHandler(deps.Store, deps.Cache, deps.Repo, deps.Logger),
		Patterns: NewPatternsHandler(deps.Classifier, deps.Logger),
	}
}
