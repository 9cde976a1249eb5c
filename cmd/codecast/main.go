package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/codecast/codecast/internal/database"
	"github.com/codecast/codecast/internal/geoip"
	"github.com/codecast/codecast/internal/logger"
	"github.com/codecast/codecast/internal/model"
	"github.com/codecast/codecast/internal/server"
	"github.com/codecast/codecast/internal/storage"
	"github.com/codecast/codecast/internal/store"
	"github.com/codecast/codecast/internal/store/memory"
	"github.com/codecast/codecast/internal/store/postgres"
	"github.com/codecast/codecast/internal/video"
	"github.com/codecast/codecast/web"
)

func main() {
	_ = godotenv.Load()

	if err := logger.Initialize(getEnv("LOG_LEVEL", "info")); err != nil {
		fmt.Fprintf(os.Stderr, "logger initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Log.Sync()

	port := getEnv("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Log.Fatal("JWT_SECRET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		st     store.Store
		pinger server.Pinger
	)
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL != "" {
		db, err := database.Connect(ctx, databaseURL)
		if err != nil {
			logger.Log.Fatalw("database connection failed", "error", err)
		}
		defer db.Close()

		if err := db.Migrate(databaseURL); err != nil {
			logger.Log.Fatalw("database migration failed", "error", err)
		}
		logger.Log.Info("database migrations applied")

		st = postgres.New(db.Pool)
		pinger = db
	} else {
		logger.Log.Warn("DATABASE_URL not set, using in-memory store; data will not survive restarts")
		st = memory.New()
	}

	maxUploadBytes := getEnvInt64("MAX_UPLOAD_BYTES", 2*1024*1024*1024)

	var objStorage video.ObjectStorage
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		s3Store, err := storage.New(ctx, storage.Config{
			Endpoint:       endpoint,
			PublicEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
			Bucket:         getEnv("S3_BUCKET", "codecast"),
			AccessKey:      os.Getenv("S3_ACCESS_KEY"),
			SecretKey:      os.Getenv("S3_SECRET_KEY"),
			Region:         getEnv("S3_REGION", "eu-central-1"),
			MaxUploadBytes: maxUploadBytes,
		})
		if err != nil {
			logger.Log.Fatalw("storage initialization failed", "error", err)
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			logger.Log.Fatalw("storage bucket check failed", "error", err)
		}
		logger.Log.Info("storage bucket ready")
		objStorage = s3Store
	} else {
		logger.Log.Info("S3_ENDPOINT not set, file uploads disabled")
	}

	geoResolver, err := geoip.New(os.Getenv("GEOIP_DB_PATH"))
	if err != nil {
		logger.Log.Fatalw("geoip initialization failed", "error", err)
	}
	defer geoResolver.Close()

	if err := bootstrapAdmin(ctx, st); err != nil {
		logger.Log.Fatalw("admin bootstrap failed", "error", err)
	}

	var webFS fs.FS
	if sub, err := fs.Sub(web.DistFS, "dist"); err == nil {
		webFS = sub
		logger.Log.Info("embedded frontend loaded")
	} else {
		logger.Log.Info("no embedded frontend found, SPA serving disabled")
	}

	srv := server.New(server.Config{
		Store:           st,
		Pinger:          pinger,
		Storage:         objStorage,
		GeoResolver:     geoResolver,
		WebFS:           webFS,
		JWTSecret:       jwtSecret,
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
		MaxUploadBytes:  maxUploadBytes,
		StorageEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Log.Infow("codecast listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalw("server failed", "error", err)
		}
	}()

	<-shutdownCh
	logger.Log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatalw("shutdown failed", "error", err)
	}
	logger.Log.Info("shutdown complete")
}

// bootstrapAdmin creates the initial admin account when ADMIN_USERNAME,
// ADMIN_EMAIL, and ADMIN_PASSWORD are all set. An existing account with the
// same username or email is left untouched.
func bootstrapAdmin(ctx context.Context, st store.Store) error {
	username := os.Getenv("ADMIN_USERNAME")
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || email == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = st.CreateUser(ctx, model.NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	})
	if errors.Is(err, store.ErrConflict) {
		logger.Log.Infow("admin account already exists", "username", username)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Log.Infow("admin account created", "username", username)
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
