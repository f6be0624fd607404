// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"lexsite-service/internal/config"
	"lexsite-service/internal/db"
	adminUserHandler "lexsite-service/internal/handlers/adminuser"
	authHandler "lexsite-service/internal/handlers/auth"
	blogHandler "lexsite-service/internal/handlers/blog"
	jobHandler "lexsite-service/internal/handlers/job"
	tagHandler "lexsite-service/internal/handlers/tag"
	wsHandler "lexsite-service/internal/handlers/websocket"
	"lexsite-service/internal/identity"
	"lexsite-service/internal/middleware"
	"lexsite-service/internal/pkg/authsession"
	"lexsite-service/internal/repository/postgres"
	adminUsecase "lexsite-service/internal/service/adminuser"
	authUsecase "lexsite-service/internal/service/auth"
	blogUsecase "lexsite-service/internal/service/blog"
	jobUsecase "lexsite-service/internal/service/job"
	tagUsecase "lexsite-service/internal/service/tag"
	"lexsite-service/internal/storage"
	"lexsite-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg         config.AppConfig
	engine      *gin.Engine
	logger      *zap.Logger
	authService *authUsecase.AuthService
	registry    *authsession.Registry
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.Default()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- PostgreSQL -----
	pool, err := postgres.ConnectDB()
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addresses: []string{s.cfg.RedisAddr},
		Password:  s.cfg.RedisPass,
		DB:        0,
		PoolSize:  10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("[REDIS] connected")

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- Identity provider -----
	provider := identity.NewHTTPProvider(
		s.cfg.IdentityBaseURL,
		s.cfg.IdentityAPIKey,
		s.cfg.IdentityJWTKey,
		logger,
	)

	// ----- Session infrastructure -----
	kv := storage.NewRedisKV(redisClient)
	registry := authsession.NewRegistry()
	s.registry = registry
	hub := websocket.NewHub(logger)

	// ----- Repositories -----
	adminUserRepo := postgres.NewAdminUserRepository(pool)
	blogRepo := postgres.NewBlogRepository(pool)
	jobRepo := postgres.NewJobRepository(pool)
	tagRepo := postgres.NewTagRepository(pool)

	// ----- Services (Usecases) -----
	authService := authUsecase.NewAuthService(
		provider,
		adminUserRepo,
		kv,
		registry,
		hub,
		s.cfg,
		logger,
	)
	s.authService = authService

	blogService := blogUsecase.NewBlogService(blogRepo, s.cfg.ListCacheTTL, logger)
	jobService := jobUsecase.NewJobService(jobRepo, s.cfg.ListCacheTTL, logger)
	tagService := tagUsecase.NewTagService(tagRepo, logger)
	adminUserService := adminUsecase.NewAdminUserService(adminUserRepo, provider, logger)

	// ----- Initialize Super Admin -----
	if err := s.initializeSuperAdmin(); err != nil {
		logger.Error("failed to initialize super admin", zap.Error(err))
		// Don't fail startup, just log the error
	}

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService, s.cfg.AdminLoginPath, logger)
	blogHandlerInst := blogHandler.NewBlogHandler(blogService, logger)
	jobHandlerInst := jobHandler.NewJobHandler(jobService, logger)
	tagHandlerInst := tagHandler.NewTagHandler(tagService, logger)
	adminUserHandlerInst := adminUserHandler.NewAdminUserHandler(adminUserService, logger)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService, s.cfg.AdminLoginPath)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:      authHandlerInst,
		BlogHandler:      blogHandlerInst,
		JobHandler:       jobHandlerInst,
		TagHandler:       tagHandlerInst,
		AdminUserHandler: adminUserHandlerInst,
		WSHandler:        wsHandlerInst,
		AuthMiddleware:   authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Shutdown closes every live session controller so their watcher
// goroutines stop.
func (s *Server) Shutdown(ctx context.Context) {
	if s.registry != nil {
		s.registry.CloseAll()
	}
	if s.logger != nil {
		s.logger.Info("server stopped")
	}
}

// initializeSuperAdmin creates the bootstrap super admin if missing
func (s *Server) initializeSuperAdmin() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	email := os.Getenv("SUPER_ADMIN_EMAIL")
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	fullName := os.Getenv("SUPER_ADMIN_NAME")

	if email == "" {
		s.logger.Warn("SUPER_ADMIN_EMAIL not set, skipping super admin bootstrap")
		return nil
	}
	if fullName == "" {
		fullName = "Super Administrator"
	}
	if len(password) < 8 {
		return fmt.Errorf("super admin password must be at least 8 characters")
	}

	if err := s.authService.EnsureSuperAdminExists(ctx, email, password, fullName); err != nil {
		return fmt.Errorf("failed to ensure super admin exists: %w", err)
	}
	return nil
}
