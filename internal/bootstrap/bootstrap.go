// Package bootstrap wires configuration, database, repositories, services,
// controllers and routes into a runnable application.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/osasdev/osas/internal/app/controllers"
	appMigrations "github.com/osasdev/osas/internal/app/migrations"
	appRepos "github.com/osasdev/osas/internal/app/repositories"
	appRoutes "github.com/osasdev/osas/internal/app/routes"
	appServices "github.com/osasdev/osas/internal/app/services"
	"github.com/osasdev/osas/internal/config"
	"github.com/osasdev/osas/internal/db"
	appMiddleware "github.com/osasdev/osas/internal/middleware"
	pkgAuth "github.com/osasdev/osas/internal/pkg/auth"
	"github.com/osasdev/osas/internal/pkg/helpers"
	"github.com/osasdev/osas/internal/pkg/logger"
	"github.com/osasdev/osas/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos *appRepos.Repositories

	AuthService         *appServices.AuthService
	DashboardService    *appServices.DashboardService
	StudentService      *appServices.StudentService
	DepartmentService   *appServices.DepartmentService
	SectionService      *appServices.SectionService
	ViolationService    *appServices.ViolationService
	ReportService       *appServices.ReportService
	AnnouncementService *appServices.AnnouncementService
	SettingService      *appServices.SettingService

	AuthController         *appControllers.AuthController
	DashboardController    *appControllers.DashboardController
	StudentController      *appControllers.StudentController
	DepartmentController   *appControllers.DepartmentController
	SectionController      *appControllers.SectionController
	ViolationController    *appControllers.ViolationController
	ReportController       *appControllers.ReportController
	AnnouncementController *appControllers.AnnouncementController
	SettingController      *appControllers.SettingController

	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(context.Background(), migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Seeding is best-effort; the schema itself is in place.
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	dbPool := database.Pool

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.JWTService,
		lgr,
	)

	deps.StudentService = appServices.NewStudentService(
		deps.Repos.StudentRepository,
		deps.Repos.DepartmentRepository,
		deps.Repos.SectionRepository,
		lgr,
	)
	deps.DepartmentService = appServices.NewDepartmentService(deps.Repos.DepartmentRepository)
	deps.SectionService = appServices.NewSectionService(deps.Repos.SectionRepository, deps.Repos.DepartmentRepository)
	deps.ViolationService = appServices.NewViolationService(
		deps.Repos.ViolationRepository,
		deps.Repos.StudentRepository,
		database,
		cfg.DuplicateWindow(),
		lgr,
	)
	deps.ReportService = appServices.NewReportService(deps.Repos.ReportRepository, lgr)
	deps.AnnouncementService = appServices.NewAnnouncementService(deps.Repos.AnnouncementRepository)
	deps.SettingService = appServices.NewSettingService(deps.Repos.SettingRepository)
	deps.DashboardService = appServices.NewDashboardService(
		deps.Repos.StudentRepository,
		deps.Repos.ViolationRepository,
		deps.Repos.AnnouncementRepository,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.DashboardController = appControllers.NewDashboardController(deps.DashboardService)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService)
	deps.DepartmentController = appControllers.NewDepartmentController(deps.DepartmentService)
	deps.SectionController = appControllers.NewSectionController(deps.SectionService)
	deps.ViolationController = appControllers.NewViolationController(deps.ViolationService)
	deps.ReportController = appControllers.NewReportController(deps.ReportService)
	deps.AnnouncementController = appControllers.NewAnnouncementController(deps.AnnouncementService)
	deps.SettingController = appControllers.NewSettingController(deps.SettingService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(gin.Recovery())

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.DashboardController,
		deps.StudentController,
		deps.DepartmentController,
		deps.SectionController,
		deps.ViolationController,
		deps.ReportController,
		deps.AnnouncementController,
		deps.SettingController,
		deps.AuthMiddleware,
	)

	return router
}
