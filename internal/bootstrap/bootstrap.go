package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/filechat/internal/app/controllers"
	appMigrations "github.com/yigit/filechat/internal/app/migrations"
	appRepos "github.com/yigit/filechat/internal/app/repositories"
	appRoutes "github.com/yigit/filechat/internal/app/routes"
	appServices "github.com/yigit/filechat/internal/app/services"
	"github.com/yigit/filechat/internal/config"
	"github.com/yigit/filechat/internal/db"
	appMiddleware "github.com/yigit/filechat/internal/middleware"
	pkgAuth "github.com/yigit/filechat/internal/pkg/auth"
	"github.com/yigit/filechat/internal/pkg/filestorage"
	"github.com/yigit/filechat/internal/pkg/helpers"
	"github.com/yigit/filechat/internal/pkg/logger"
)

// DefaultConfigPath is used when no --config flag is given
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	MessageService    appServices.MessageService
	MessageController *appControllers.MessageController
	AuthMiddleware    *appMiddleware.AuthMiddleware
	JWTService        *pkgAuth.JWTService
	ObjectStorage     *filestorage.ObjectStorage
	Store             *Store
	Logger            zerolog.Logger
}

// Store is the opened document store behind the repositories
type Store struct {
	Repos    *appRepos.Repositories
	postgres *db.PostgresDB
	badger   *badger.DB
}

// Close releases the repositories and then the underlying database
func (s *Store) Close() error {
	var errs []error
	if s.Repos != nil {
		errs = append(errs, s.Repos.Close())
	}
	if s.postgres != nil {
		s.postgres.Close()
	}
	if s.badger != nil {
		errs = append(errs, s.badger.Close())
	}
	return errors.Join(errs...)
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:   cfg.Logging.Level,
		Pretty:  strings.EqualFold(cfg.Logging.Format, "text"),
		Service: "filechat",
	})

	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// OpenPostgres connects to Postgres without touching the schema
func OpenPostgres(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("dbname", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations applies the SQL migrations directory to Postgres
func RunMigrations(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database, lgr).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	return nil
}

// SetupStore opens the configured document store. Postgres is migrated before use.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Store, error) {
	switch cfg.Database.Driver {
	case config.DriverBadger:
		lgr.Info().Str("path", cfg.Database.BadgerPath).Msg("Opening embedded message store...")
		database, err := db.NewBadgerDB(cfg, lgr)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to open embedded message store")
			return nil, err
		}
		repos, err := appRepos.NewBadgerRepositories(database)
		if err != nil {
			_ = database.Close()
			return nil, err
		}
		return &Store{Repos: repos, badger: database}, nil

	default:
		database, err := OpenPostgres(ctx, cfg, lgr)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(ctx, cfg, database, lgr); err != nil {
			database.Close()
			return nil, err
		}
		return &Store{Repos: appRepos.NewPostgresRepositories(database.Pool), postgres: database}, nil
	}
}

// NewJWTService builds the token service from configuration
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

// BuildDependencies initializes the object store, services, and controllers.
func BuildDependencies(cfg *config.Config, store *Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Store: store, Logger: lgr}

	var err error
	deps.ObjectStorage, err = filestorage.NewS3Storage(filestorage.S3Config{
		Endpoint:    cfg.Storage.Endpoint,
		Region:      cfg.Storage.Region,
		AccessKey:   cfg.Storage.AccessKey,
		SecretKey:   cfg.Storage.SecretKey,
		Bucket:      cfg.Storage.Bucket,
		UseSSL:      cfg.Storage.UseSSL,
		MaxFileSize: cfg.Storage.MaxFileSize,
	}, logger.WithComponent(lgr, "objectstorage"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize object storage")
		return nil, err
	}

	resolver := filestorage.NewURLResolver(cfg.Storage.PublicHost, cfg.Storage.ShareID, cfg.Storage.PathPrefix)

	deps.MessageService = appServices.NewMessageService(
		store.Repos.MessageRepository,
		deps.ObjectStorage,
		resolver,
		helpers.ParseDuration(cfg.Storage.UploadTimeout, 30*time.Second),
		logger.WithComponent(lgr, "messages"),
	)

	deps.JWTService = NewJWTService(cfg)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.MessageController = appControllers.NewMessageController(deps.MessageService, cfg.Storage.MaxFileSize, logger.WithComponent(lgr, "messages"))

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Server.MaxMultipartMemory
	router.Use(
		appMiddleware.RequestLogger(logger.WithComponent(lgr, "http")),
		appMiddleware.Recovery(lgr),
		appRoutes.CORS(cfg.Server.CORSOrigins),
	)

	appRoutes.SetupRouter(router, deps.MessageController, deps.AuthMiddleware)

	return router
}
