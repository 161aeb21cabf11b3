package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	appControllers "github.com/studyhub-il/studyhub/internal/app/controllers"
	appRepos "github.com/studyhub-il/studyhub/internal/app/repositories"
	appRoutes "github.com/studyhub-il/studyhub/internal/app/routes"
	appServices "github.com/studyhub-il/studyhub/internal/app/services"
	"github.com/studyhub-il/studyhub/internal/config"
	"github.com/studyhub-il/studyhub/internal/db"
	appMiddleware "github.com/studyhub-il/studyhub/internal/middleware"
	pkgAuth "github.com/studyhub-il/studyhub/internal/pkg/auth"
	"github.com/studyhub-il/studyhub/internal/pkg/cache"
	"github.com/studyhub-il/studyhub/internal/pkg/email"
	"github.com/studyhub-il/studyhub/internal/pkg/filestorage"
	"github.com/studyhub-il/studyhub/internal/pkg/helpers"
	"github.com/studyhub-il/studyhub/internal/pkg/logger"
	"github.com/studyhub-il/studyhub/internal/pkg/ratelimit"
	"github.com/studyhub-il/studyhub/internal/pkg/validation"
	"github.com/studyhub-il/studyhub/internal/pkg/websocket"
	"github.com/studyhub-il/studyhub/internal/seed"
)

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
	tokenCleanupInterval = time.Hour
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	Cache       *cache.Client // nil when Redis is not configured
	FileStorage filestorage.FileStorage
	Hub         *websocket.Hub
	Limiter     *ratelimit.KeyedLimiter
	Quota       ratelimit.Quota

	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
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

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, applies migrations and
// optionally seeds the default catalog.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	if err := database.RunMigrations(); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Database.SeedDefaults {
		if err := seed.CreateDefaultData(context.Background(), database.Pool, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return database, nil
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	if err := validation.RegisterGinValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	deps.Repos = appRepos.NewRepositories(database.Pool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 7*24*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 30*24*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	// Interfaces stay untyped nil when Redis is off so the services can test for it.
	var (
		statsCache appServices.Cache
		revoker    appServices.TokenRevoker
		blacklist  appMiddleware.TokenBlacklist
	)
	if cfg.RedisEnabled() {
		client, err := cache.NewClient(cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache connected")
		deps.Cache = client
		statsCache, revoker, blacklist = client, client, client
		deps.Quota = client
	} else {
		lgr.Warn().Msg("Redis not configured, using in-process quotas and no token blacklist")
		deps.Quota = ratelimit.NewLocalQuota()
	}

	storage, err := newFileStorage(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		deps.Close()
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	deps.FileStorage = storage

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		ClientURL: cfg.Server.ClientURL,
	}, lgr)
	if !cfg.SMTPEnabled() {
		lgr.Warn().Msg("SMTP not configured, emails will be logged only")
	}

	deps.Hub = websocket.NewHub(lgr)
	deps.Limiter = ratelimit.NewKeyedLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst, limiterIdleTTL)

	r := deps.Repos
	notificationService := appServices.NewNotificationService(r.NotificationRepository, deps.Hub, lgr)
	engagementService := appServices.NewEngagementService(r.EngagementRepository, r.SubscriptionRepository, notificationService, lgr)
	courseService := appServices.NewCourseService(r.CourseRepository, r.SummaryRepository, r.ForumRepository, lgr)
	authService := appServices.NewAuthService(r.UserRepository, r.TokenRepository, deps.JWTService, revoker, mailer, storage, lgr)
	userService := appServices.NewUserService(r.UserRepository, lgr)
	summaryService := appServices.NewSummaryService(r.SummaryRepository, r.UserRepository, r.FavoriteRepository, courseService, engagementService, storage, lgr)
	forumService := appServices.NewForumService(r.ForumRepository, r.SubscriptionRepository, engagementService, notificationService, storage, lgr)
	toolService := appServices.NewToolService(r.ToolRepository, r.FavoriteRepository, lgr)
	favoriteService := appServices.NewFavoriteService(r.FavoriteRepository, lgr)
	messageService := appServices.NewMessageService(r.MessageRepository, r.UserRepository, notificationService, deps.Hub, lgr)
	helpService := appServices.NewHelpRequestService(r.HelpRequestRepository, lgr)
	subscriptionService := appServices.NewSubscriptionService(r.SubscriptionRepository, lgr)
	reportService := appServices.NewReportService(r.ReportRepository, lgr)
	statsService := appServices.NewStatsService(r.StatsRepository, statsCache, lgr)
	adminService := appServices.NewAdminService(r.UserRepository, r.SummaryRepository, r.StatsRepository, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, blacklist)

	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(authService, lgr),
		User:       appControllers.NewUserController(userService),
		Course:     appControllers.NewCourseController(courseService),
		Summary:    appControllers.NewSummaryController(summaryService, lgr),
		Forum:      appControllers.NewForumController(forumService),
		Tool:       appControllers.NewToolController(toolService),
		Engagement: appControllers.NewEngagementController(engagementService),
		Social:     appControllers.NewSocialController(favoriteService, messageService, notificationService),
		Community:  appControllers.NewCommunityController(helpService, subscriptionService, reportService),
		Admin:      appControllers.NewAdminController(adminService, statsService, lgr),
		System: appControllers.NewSystemController(
			database.Pool,
			websocket.NewHandler(deps.Hub, cfg.Server.ClientURL, lgr),
			cfg.Server.Version,
		),
	}

	return deps, nil
}

func newFileStorage(ctx context.Context, cfg *config.Config) (filestorage.FileStorage, error) {
	if cfg.Storage.Driver == config.StorageDriverS3 {
		s3cfg := cfg.Storage.S3
		return filestorage.NewS3Storage(ctx, filestorage.S3Config{
			Bucket:          s3cfg.Bucket,
			Region:          s3cfg.Region,
			Endpoint:        s3cfg.Endpoint,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
			PublicURL:       s3cfg.PublicURL,
		})
	}
	baseURL := strings.TrimRight(cfg.Server.PublicURL, "/") + "/uploads"
	return filestorage.NewLocalStorage(cfg.Server.StoragePath, baseURL)
}

// StartBackground launches the realtime hub and periodic maintenance. All
// goroutines stop when ctx is cancelled.
func (d *Dependencies) StartBackground(ctx context.Context) {
	go d.Hub.Run(ctx)
	go d.Limiter.RunCleanup(ctx, limiterSweepInterval)
	go d.runTokenCleanup(ctx)
}

func (d *Dependencies) runTokenCleanup(ctx context.Context) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := d.Repos.TokenRepository.DeleteExpired(ctx, now)
			if err != nil {
				d.Logger.Error().Err(err).Msg("Failed to purge expired tokens")
				continue
			}
			if removed > 0 {
				d.Logger.Info().Int64("removed", removed).Msg("Purged expired tokens")
			}
		}
	}
}

// Close releases external clients
func (d *Dependencies) Close() {
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
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
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(),
		appMiddleware.CORS(cfg.Server.ClientURL),
		appMiddleware.RateLimit(deps.Limiter),
	)
	router.MaxMultipartMemory = 10 << 20

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.Quota)

	return router
}
