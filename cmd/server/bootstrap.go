package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/internal/api"
	"github.com/apartguide/apartguide/internal/app"
	"github.com/apartguide/apartguide/internal/app/maintenance"
	iauth "github.com/apartguide/apartguide/internal/auth"
	"github.com/apartguide/apartguide/internal/cache"
	"github.com/apartguide/apartguide/internal/database"
	"github.com/apartguide/apartguide/internal/middleware"
	"github.com/apartguide/apartguide/internal/services"
	"github.com/apartguide/apartguide/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Redis      cache.Store
	SessionSvc *iauth.SessionService
	Cleaner    *maintenance.Cleaner
	RateStore  middleware.RateStore
	Router     *gin.Engine
}

// bootstrapRuntime initialises the database, caches, services, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	dbStore := cache.NewDatabaseStore(stack.DB)

	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisClient(cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to database-backed operations", zap.Error(err))
			stack.Redis = nil
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	sessionCfg := cfg.Auth.SessionServiceConfig()
	switch {
	case stack.Redis != nil:
		sessionCfg.Cache = iauth.NewSessionStoreCache(stack.Redis)
	default:
		sessionCfg.Cache = iauth.NewSessionStoreCache(dbStore)
	}

	stack.SessionSvc, err = iauth.NewSessionService(stack.DB, jwtSvc, sessionCfg)
	if err != nil {
		return nil, fmt.Errorf("initialise session service: %w", err)
	}

	mailer, err := cfg.Email.Mailer()
	if err != nil {
		return nil, fmt.Errorf("initialise mailer: %w", err)
	}

	emailSvc, err := services.NewEmailService(stack.DB, mailer, services.WithEmailFrom(cfg.Email.From))
	if err != nil {
		return nil, fmt.Errorf("initialise email service: %w", err)
	}

	accountSvc, err := services.NewAccountService(stack.DB, emailSvc, services.WithAccountBaseURL(cfg.App.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("initialise account service: %w", err)
	}

	profileSvc, err := services.NewProfileService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise profile service: %w", err)
	}

	invitationSvc, err := services.NewInvitationService(stack.DB, emailSvc, services.WithInvitationBaseURL(cfg.App.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("initialise invitation service: %w", err)
	}

	memberSvc, err := services.NewTeamMemberService(stack.DB, accountSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise team member service: %w", err)
	}

	propertySvc, err := services.NewPropertyService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise property service: %w", err)
	}

	resetSvc, err := services.NewPasswordResetService(stack.DB, emailSvc, services.WithResetBaseURL(cfg.App.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("initialise password reset service: %w", err)
	}

	dashboardSvc, err := services.NewDashboardService(stack.DB, invitationSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise dashboard service: %w", err)
	}

	if cfg.Maintenance.Enabled {
		stack.Cleaner = maintenance.NewCleaner(stack.SessionSvc, invitationSvc, resetSvc, emailSvc,
			maintenance.WithEmailLogRetention(cfg.Maintenance.EmailLogRetention))
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	switch {
	case stack.Redis != nil:
		stack.RateStore = middleware.NewRedisRateStore(stack.Redis)
	default:
		stack.RateStore = middleware.NewDatabaseRateStore(dbStore)
	}

	stack.Router, err = api.NewRouter(api.Deps{
		DB:              stack.DB,
		JWT:             jwtSvc,
		Sessions:        stack.SessionSvc,
		Accounts:        accountSvc,
		Profiles:        profileSvc,
		Invitations:     invitationSvc,
		TeamMembers:     memberSvc,
		Properties:      propertySvc,
		Email:           emailSvc,
		Resets:          resetSvc,
		Dashboard:       dashboardSvc,
		RateStore:       stack.RateStore,
		RateLimitMax:    cfg.Server.RateLimit.MaxRequests,
		RateLimitWindow: cfg.Server.RateLimit.Window,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if stopCtx != nil {
			ctx = stopCtx
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if rc, ok := s.Redis.(*cache.RedisClient); ok && rc != nil {
		if err := rc.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.MySQL.Password)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
