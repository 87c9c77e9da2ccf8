package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/rollcall/internal/app/auth"
	appControllers "github.com/yigit/rollcall/internal/app/controllers"
	appMigrations "github.com/yigit/rollcall/internal/app/migrations"
	appRepos "github.com/yigit/rollcall/internal/app/repositories"
	"github.com/yigit/rollcall/internal/app/repositories/memory"
	appRoutes "github.com/yigit/rollcall/internal/app/routes"
	appServices "github.com/yigit/rollcall/internal/app/services"
	"github.com/yigit/rollcall/internal/config"
	"github.com/yigit/rollcall/internal/db"
	appMiddleware "github.com/yigit/rollcall/internal/middleware"
	pkgAuth "github.com/yigit/rollcall/internal/pkg/auth"
	"github.com/yigit/rollcall/internal/pkg/email"
	"github.com/yigit/rollcall/internal/pkg/filestorage"
	"github.com/yigit/rollcall/internal/pkg/helpers"
	"github.com/yigit/rollcall/internal/pkg/logger"
	"github.com/yigit/rollcall/internal/pkg/orgcode"
	"github.com/yigit/rollcall/internal/pkg/validation"
	"github.com/yigit/rollcall/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	OrganizationService *appServices.OrganizationService
	AccountService      *appServices.AccountService
	InviteService       *appServices.InviteService
	AuthService         *appServices.AuthService
	Controllers         appRoutes.Controllers
	AuthMiddleware      *appMiddleware.AuthMiddleware
	Repos               *appRepos.Repositories
	JWTService          *pkgAuth.JWTService
	AuthzService        *appAuth.AuthorizationService
	Logger              zerolog.Logger
}

// Storage is the selected persistence backend and what must be closed with it
type Storage struct {
	Repos  *appRepos.Repositories
	closer func()
}

// Close releases the database pool and cache client, if any
func (s *Storage) Close() {
	if s.closer != nil {
		s.closer()
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:   cfg.Logging.Level,
		Format:  logger.Format(cfg.Logging.Format),
		Service: "rollcall",
	})
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStorage opens the configured store. Postgres gets its migrations
// applied; a reachable redis puts the organization cache in front of it.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Storage, error) {
	var closers []func()
	storage := &Storage{closer: func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}}

	switch cfg.Database.Driver {
	case config.DriverMemory:
		lgr.Warn().Msg("Using in-memory storage; data is lost on restart")
		storage.Repos = memory.NewRepositories()
	default:
		database, err := SetupDatabase(ctx, cfg, lgr)
		if err != nil {
			return nil, err
		}
		closers = append(closers, database.Close)
		storage.Repos = appRepos.NewRepositories(database)
	}

	if client := setupRedis(ctx, cfg, lgr); client != nil {
		closers = append(closers, func() { _ = client.Close() })
		ttl := helpers.ParseDuration(cfg.Redis.OrgCache, time.Hour)
		storage.Repos.Organizations = appRepos.NewCachedOrganizationStore(storage.Repos.Organizations, client, ttl, logger.Component("org_cache"))
	}
	return storage, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if _, err := os.Stat(migrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("dir", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// setupRedis returns a connected client, or nil when redis is unconfigured or unreachable
func setupRedis(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) *redis.Client {
	if cfg.Redis.URL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		lgr.Warn().Err(err).Msg("Invalid redis URL, organization cache disabled")
		return nil
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		lgr.Warn().Err(err).Msg("Redis unreachable, organization cache disabled")
		_ = client.Close()
		return nil
	}
	lgr.Info().Msg("Organization cache enabled")
	return client
}

// BuildDependencies initializes application services and controllers.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Repos: repos}

	authz, err := appAuth.NewAuthorizationService()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize authorization: %w", err)
	}
	deps.AuthzService = authz

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, pkgAuth.DefaultAccessTokenExp),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	hasher := pkgAuth.NewPasswordHasher(cfg.Password.BcryptCost, logger.Component("password"))
	mailer := email.NewSMTPSender(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, logger.Component("email"))

	deps.OrganizationService = appServices.NewOrganizationService(
		repos.Organizations,
		hasher,
		orgcode.NewGenerator(),
		mailer,
		cfg.Server.PublicURL,
		logger.Component("organizations"),
	)
	deps.AccountService = appServices.NewAccountService(repos.Accounts, repos.Organizations, hasher, logger.Component("accounts"))
	deps.InviteService = appServices.NewInviteService(
		repos.Invites,
		repos.Organizations,
		hasher,
		helpers.ParseDuration(cfg.Invite.TTL, appServices.DefaultInviteTTL),
		cfg.InviteURL,
		nil,
		logger.Component("invites"),
	)
	deps.AuthService = appServices.NewAuthService(repos.Organizations, repos.Accounts, hasher, deps.JWTService, logger.Component("auth"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthzService, logger.Component("auth_middleware"))

	files, err := filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.UploadsURL(), logger.Component("filestorage"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Controllers = appRoutes.Controllers{
		Auth:          appControllers.NewAuthController(deps.AuthService, deps.AccountService, files, lgr),
		Organizations: appControllers.NewOrganizationController(deps.OrganizationService, lgr),
		Accounts:      appControllers.NewAccountController(deps.AccountService, lgr),
		Invites:       appControllers.NewInviteController(deps.InviteService, lgr),
	}

	return deps, nil
}

// SeedDefaultData creates the configured seed organization. Failure is logged, not fatal.
func SeedDefaultData(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	if err := seed.CreateDefaultOrganization(ctx, cfg, deps.OrganizationService, deps.Logger); err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production", gin.ReleaseMode:
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	if err := validation.RegisterBindingRules(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(logger.Component("http")))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	lgr.Info().Str("mode", gin.Mode()).Msg("Router configured")
	return router, nil
}
