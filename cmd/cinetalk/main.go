package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eudysgarcia/HDC-Server/internal/api"
	"github.com/eudysgarcia/HDC-Server/internal/config"
	"github.com/eudysgarcia/HDC-Server/internal/store"
	"github.com/eudysgarcia/HDC-Server/internal/tmdb"
	"github.com/eudysgarcia/HDC-Server/internal/translate"
	"github.com/eudysgarcia/HDC-Server/pkg/auth"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tokenManager, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to create token manager", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database connection", slog.String("error", err.Error()))
		}
	}()
	logger.Info("connected to PostgreSQL")

	userStore := store.NewPostgresUserStore(db, logger)
	reviewStore := store.NewPostgresReviewStore(db, logger)

	catalogClient := tmdb.NewClient(cfg.TMDBBaseURL, cfg.TMDBImageBaseURL, cfg.TMDBAccessToken, logger)
	translateClient := translate.NewClient(cfg.TranslateEndpoint, logger)

	validate := validator.New()
	authMW := api.NewAuthMiddleware(tokenManager, logger)

	router := api.NewRouter(api.RouterConfig{
		Auth:           api.NewAuthHandler(userStore, logger, validate, tokenManager),
		Users:          api.NewUserHandler(userStore, catalogClient, logger, validate, cfg.MaxAvatarBytes),
		Reviews:        api.NewReviewHandler(reviewStore, logger, validate),
		Catalog:        api.NewCatalogHandler(catalogClient, logger),
		Translate:      api.NewTranslateHandler(translateClient, logger),
		AuthMW:         authMW,
		Logger:         logger,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("CineTalk API starting", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("server stopped gracefully")
	}
}
