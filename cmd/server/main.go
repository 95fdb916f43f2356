package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"pressroom/internal/auth"
	"pressroom/internal/cache"
	"pressroom/internal/config"
	"pressroom/internal/db"
	"pressroom/internal/handler"
	"pressroom/internal/model"
	"pressroom/internal/repository"
	"pressroom/internal/router"
	"pressroom/internal/service"
	"pressroom/internal/session"
	"pressroom/internal/upload"
	"pressroom/internal/validation"
	"pressroom/internal/view"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	e := echo.New()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Article{},
		&model.Profile{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	renderer, err := view.New("web/templates")
	if err != nil {
		log.Fatalf("templates: %v", err)
	}
	e.Renderer = renderer

	uploads, err := upload.NewSaver(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("uploads: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	articleRepo := repository.NewArticleRepository(gormDB)
	profileRepo := repository.NewProfileRepository(gormDB)

	// Initialize session components
	sessionStore := session.NewRedisStore(cacheClient)
	flashRelay := session.NewFlashRelay(cacheClient)
	signer := auth.NewCookieSigner(cfg.SessionSecret, cfg.SessionTTL)

	// Initialize services
	pipeline := validation.New()
	authService := service.NewAuthService(userRepo, sessionStore, cfg.SessionTTL)
	articleService := service.NewArticleService(articleRepo)
	profileService := service.NewProfileService(profileRepo)

	// Initialize handlers
	pageHandler := handler.NewPageHandler(flashRelay)
	authHandler := handler.NewAuthHandler(authService, pipeline, signer, cfg.SessionTTL, flashRelay)
	articleHandler := handler.NewArticleHandler(articleService, pipeline, uploads, flashRelay)
	profileHandler := handler.NewProfileHandler(authService, profileService, articleService, pipeline, uploads, flashRelay)

	// Register routes
	m := router.NewMiddleware(signer, sessionStore, userRepo, flashRelay)
	router.Register(e, cfg, m, pageHandler, authHandler, articleHandler, profileHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
