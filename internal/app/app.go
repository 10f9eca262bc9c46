package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/skyvault/skyvault/internal/config"
	"github.com/skyvault/skyvault/internal/db"
	"github.com/skyvault/skyvault/internal/repository"
	"github.com/skyvault/skyvault/internal/service"
	"github.com/skyvault/skyvault/internal/storage"
)

type App struct {
	Cfg           *config.Config
	DB            *sqlx.DB
	AuthService   *service.AuthService
	AccessService *service.AccessService
	FileService   *service.FileService
	ShareService  *service.ShareService
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
	fileRepository := repository.NewFileRepository(database)
	shareRepository := repository.NewShareRepository(database)

	// Storage
	blobStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	authService := service.NewAuthService(
		userRepository,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
	)
	accessService := service.NewAccessService(fileRepository, shareRepository)
	fileService := service.NewFileService(fileRepository, shareRepository, accessService, blobStorage)
	shareService := service.NewShareService(fileRepository, shareRepository, userRepository)

	return &App{
		Cfg:           cfg,
		DB:            database,
		AuthService:   authService,
		AccessService: accessService,
		FileService:   fileService,
		ShareService:  shareService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
