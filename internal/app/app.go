package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/questline/questline/internal/ai"
	"github.com/questline/questline/internal/config"
	"github.com/questline/questline/internal/db"
	"github.com/questline/questline/internal/repository"
	"github.com/questline/questline/internal/service"
	"github.com/questline/questline/internal/storage"
)

type App struct {
	Cfg                 *config.Config
	DB                  *sqlx.DB
	AuthService         *service.AuthService
	GamificationService *service.GamificationService
	JourneyService      *service.JourneyService
	VerificationService *service.VerificationService
	GroupService        *service.GroupService
	FileService         *service.FileService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	targetRepository := repository.NewTargetRepository(database)
	journeyRepository := repository.NewJourneyRepository(database)
	groupRepository := repository.NewGroupRepository(database)
	fileRepository := repository.NewFileRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// AI client, shared by journey generation and photo verification
	aiClient := ai.NewClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout)

	// Services
	gamificationService := service.NewGamificationService(userRepository)
	fileService := service.NewFileService(fileRepository, fileStorage)
	authService := service.NewAuthService(
		userRepository,
		gamificationService,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.IsProduction(),
	)
	journeyService := service.NewJourneyService(journeyRepository, gamificationService, aiClient)
	verificationService := service.NewVerificationService(
		targetRepository,
		journeyRepository,
		fileService,
		gamificationService,
		aiClient,
	)
	groupService := service.NewGroupService(groupRepository, userRepository, gamificationService)

	return &App{
		Cfg:                 cfg,
		DB:                  database,
		AuthService:         authService,
		GamificationService: gamificationService,
		JourneyService:      journeyService,
		VerificationService: verificationService,
		GroupService:        groupService,
		FileService:         fileService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
