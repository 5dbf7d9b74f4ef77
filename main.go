package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch-engine/pkg/audit"
	"github.com/scholarmatch/scholarmatch-engine/pkg/auth"
	"github.com/scholarmatch/scholarmatch-engine/pkg/config"
	"github.com/scholarmatch/scholarmatch-engine/pkg/database"
	"github.com/scholarmatch/scholarmatch-engine/pkg/handlers"
	"github.com/scholarmatch/scholarmatch-engine/pkg/llm"
	"github.com/scholarmatch/scholarmatch-engine/pkg/middleware"
	"github.com/scholarmatch/scholarmatch-engine/pkg/repositories"
	"github.com/scholarmatch/scholarmatch-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Local development convenience; ignored when no .env file exists
	_ = godotenv.Load()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.Bool("ai_configured", cfg.AI.IsConfigured()),
		zap.String("database", cfg.Database.Host),
		zap.String("redis", cfg.Redis.Host))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrationDB := stdlib.OpenDBFromPool(db.Pool)
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	redisClient, err := database.NewRedisClient(&database.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	var verifier *auth.Verifier
	if cfg.Auth.EnableVerification {
		verifier, err = auth.NewVerifier(ctx, cfg.Auth.JWKSURL, cfg.Auth.Issuer)
		if err != nil {
			logger.Fatal("Failed to initialize JWKS verifier", zap.Error(err))
		}
	} else {
		logger.Warn("Auth verification disabled; tokens are parsed but not verified")
		verifier = auth.NewDevVerifier()
	}
	authMiddleware := auth.NewMiddleware(verifier, logger)

	// Repositories
	profileRepo := repositories.NewStudentProfileRepository(db)
	scholarshipRepo := repositories.NewScholarshipRepository(db)
	applicationRepo := repositories.NewApplicationRepository(db)
	matchRepo := repositories.NewMatchResultRepository(db)
	rankRepo := repositories.NewRankResultRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// Matching pipeline
	chatClient, err := llm.NewChatClient(&llm.Config{
		Provider: cfg.AI.Provider,
		Endpoint: cfg.AI.Endpoint,
		Model:    cfg.AI.Model,
		APIKey:   cfg.AI.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create chat client", zap.Error(err))
	}
	if chatClient == nil {
		logger.Info("AI model not configured; matching and ranking use the deterministic engine")
	}

	fallback := services.NewFallbackEngine(logger)

	var matchCache services.MatchCache
	if redisClient != nil {
		matchCache = services.NewRedisMatchCache(redisClient, cfg.Cache.TTL(), logger)
	} else {
		matchCache = services.NewRecommendationCache(cfg.Cache.TTL(), cfg.Cache.Capacity)
	}

	matcher := services.NewMatchingService(chatClient, fallback, matchCache, matchRepo, logger)
	ranker := services.NewRankingService(chatClient, fallback, rankRepo, logger)
	auditor := audit.NewSecurityAuditor(logger)

	// HTTP surface
	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAssessmentHandler(profileRepo, matchCache, auditor, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewRecommendationsHandler(profileRepo, scholarshipRepo, matchRepo, matcher, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewScholarshipsHandler(scholarshipRepo, notificationRepo, matchCache, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewApplicationsHandler(applicationRepo, scholarshipRepo, profileRepo, notificationRepo, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewRankingHandler(applicationRepo, scholarshipRepo, rankRepo, ranker, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewNotificationsHandler(notificationRepo, logger).RegisterRoutes(mux, authMiddleware)

	handler := middleware.Recover(logger)(middleware.RequestLogger(logger)(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting scholarmatch-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
