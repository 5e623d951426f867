package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/damoang/angple-wiki/docs"
	"github.com/damoang/angple-wiki/internal/config"
	"github.com/damoang/angple-wiki/internal/handler"
	"github.com/damoang/angple-wiki/internal/middleware"
	"github.com/damoang/angple-wiki/internal/migration"
	"github.com/damoang/angple-wiki/internal/repository"
	"github.com/damoang/angple-wiki/internal/routes"
	"github.com/damoang/angple-wiki/internal/scheduler"
	"github.com/damoang/angple-wiki/internal/service"
	"github.com/damoang/angple-wiki/internal/ws"
	pkgcache "github.com/damoang/angple-wiki/pkg/cache"
	"github.com/damoang/angple-wiki/pkg/jwt"
	pkglogger "github.com/damoang/angple-wiki/pkg/logger"
	pkgredis "github.com/damoang/angple-wiki/pkg/redis"
	"github.com/damoang/angple-wiki/pkg/sealer"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           angple-wiki API
// @version         1.0
// @description     Wiki pages with role based access and an editorial approval workflow
//
// @license.name    MIT
//
// @host            localhost:8081
// @BasePath        /api
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	pkglogger.GetLogger().Info().Str("path", configPath).Fields(cfg.Summary()).Msg("config loaded")

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	pkglogger.Info("Connected to %s, schema up to date", cfg.Database.Driver)

	// Redis is optional: rate limits fall back to in-process limiters,
	// the settings cache to memory and review events stay on this instance.
	var redisClient *redis.Client
	var cacheService pkgcache.Service
	redisOpts := pkgredis.Options{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	if redisOpts.Enabled() {
		redisClient, err = pkgredis.NewClient(redisOpts)
		if err != nil {
			pkglogger.Warn("Redis unavailable: %v (continuing without Redis)", err)
			redisClient = nil
		} else {
			pkglogger.Info("Connected to Redis")
		}
	}
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	} else {
		cacheService = pkgcache.NewMemoryService(5 * time.Minute)
	}

	settingsSealer, err := sealer.New(cfg.Security.SettingsEncryptionKey)
	if err != nil {
		log.Fatalf("Invalid SETTINGS_ENCRYPTION_KEY: %v", err)
	}
	if !settingsSealer.Enabled() {
		pkglogger.Warn("SETTINGS_ENCRYPTION_KEY not set; encrypted settings cannot be stored")
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL())

	// Repositories
	userRepo := repository.NewUserRepository(db)
	pageRepo := repository.NewPageRepository(db)
	revisionRepo := repository.NewRevisionRepository(db)
	editRepo := repository.NewPendingEditRepository(db)
	rejectionRepo := repository.NewRejectionRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	searchRepo := repository.NewSearchRepository(db)

	// Services
	settingsService := service.NewSettingsService(settingRepo, settingsSealer, cacheService)
	settingsService.SetTimeout(cfg.NotificationTimeout())
	gate := service.NewApprovalGate(settingsService)

	pageService := service.NewPageService(db, pageRepo, revisionRepo, editRepo, rejectionRepo, gate)
	pendingEditService := service.NewPendingEditService(db, pageService, pageRepo, revisionRepo, editRepo)
	invitationService := service.NewInvitationService(
		db, invitationRepo, userRepo, service.NewNotifier(settingsService),
		cfg.Server.BaseURL, cfg.NotificationTimeout(),
	)
	userService := service.NewUserService(db, userRepo)
	authService := service.NewAuthService(db, userRepo, invitationService, jwtManager)
	searchService := service.NewSearchService(searchRepo)

	wsHub := ws.NewHub(redisClient)
	go wsHub.Run()
	pageService.SetEventPublisher(wsHub)
	pendingEditService.SetEventPublisher(wsHub)
	invitationService.SetEventPublisher(wsHub)

	if cfg.Admin.Username != "" {
		created, err := authService.EnsureAdmin(context.Background(), cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatalf("Failed to seed admin: %v", err)
		}
		if created {
			pkglogger.Info("Seeded admin account %q", cfg.Admin.Username)
		}
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.SecurityHeaders())
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.Origins(),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/ws", "/metrics"})))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", healthHandler(db, redisClient))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(router, routes.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Page:        handler.NewPageHandler(pageService),
		PendingEdit: handler.NewPendingEditHandler(pendingEditService),
		Invitation:  handler.NewInvitationHandler(invitationService),
		Settings:    handler.NewSettingsHandler(settingsService),
		User:        handler.NewUserHandler(userService),
		Search:      handler.NewSearchHandler(searchService),
		WS:          handler.NewWSHandler(wsHub, cfg.CORS.AllowOrigins),
	}, jwtManager, redisClient, cfg)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "not found"}})
	})

	jobs := scheduler.New()
	if cfg.Notification.PurgeSchedule != "" {
		retain := time.Duration(cfg.Notification.PurgeRetainDays) * 24 * time.Hour
		if err := jobs.AddInvitationPurge(cfg.Notification.PurgeSchedule, invitationService, retain); err != nil {
			log.Fatalf("Invalid invitation purge schedule: %v", err)
		}
	}
	jobs.Start()

	statsCtx, stopStats := context.WithCancel(context.Background())
	go recordDBStats(statsCtx, db)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		pkglogger.Info("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	pkglogger.Info("Received %s, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		pkglogger.Error("Server shutdown: %v", err)
	}
	wsHub.Stop()
	jobs.Stop()
	stopStats()

	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	pkglogger.Info("Server stopped")
}

// initDB opens the configured database and applies pool settings
func initDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "mysql":
		mysqlCfg, err := mysqldriver.ParseDSN(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		mysqlCfg.ParseTime = true
		if mysqlCfg.Collation == "" {
			mysqlCfg.Collation = "utf8mb4_unicode_ci"
		}
		dialector = mysql.Open(mysqlCfg.FormatDSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormLogLevel(cfg.Database.LogLevel)),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "sqlite" {
		// one writer; also keeps ":memory:" a single database
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	return db, nil
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// healthHandler reports database and Redis reachability
func healthHandler(db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok"}
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["database"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
		if redisClient != nil {
			checks["redis"] = "ok"
			if err := redisClient.Ping(ctx).Err(); err != nil {
				// degraded, not down
				checks["redis"] = "unavailable"
			}
		}

		state := "ok"
		if status != http.StatusOK {
			state = "unavailable"
		}
		c.JSON(status, gin.H{
			"status":  state,
			"service": "angple-wiki",
			"checks":  checks,
			"time":    time.Now().Unix(),
		})
	}
}

func recordDBStats(ctx context.Context, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			middleware.RecordDBStats(sqlDB.Stats())
		case <-ctx.Done():
			return
		}
	}
}
