package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-social/backend/internal/blobstore"
	"github.com/anonto42/nano-social/backend/internal/cache"
	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/router"
	"github.com/anonto42/nano-social/backend/pkg/config"
	"github.com/anonto42/nano-social/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), config.Load(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run schema migrations before serving")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer config.CloseDB(db)
	if migrate {
		if err := config.Migrate(db); err != nil {
			return err
		}
	}

	var fb *firebase.App
	if cfg.FirebaseCredentialsPath != "" {
		fb, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return err
		}
	} else {
		slog.Warn("FIREBASE_CREDENTIALS_PATH not set; Firebase ID tokens will be rejected")
	}

	store, err := newBlobStore(ctx, cfg, fb)
	if err != nil {
		return err
	}

	viewCache, closeCache, err := newViewCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	deps := router.Dependencies{
		DB:              db,
		Store:           store,
		Cache:           viewCache,
		Metrics:         metrics,
		Gatherer:        registry,
		UploadRateLimit: cfg.UploadRateLimit,
	}
	if cfg.JWTSecret != "" {
		deps.Sessions = middleware.NewSessionTokens(cfg.JWTSecret)
		deps.Verifiers = append(deps.Verifiers, deps.Sessions)
	} else if cfg.IsProduction() {
		return errors.New("JWT_SECRET must be set in production")
	}
	if fb != nil {
		verifier := middleware.NewFirebaseVerifier(fb.AuthClient)
		deps.IDTokens = verifier
		deps.Verifiers = append(deps.Verifiers, verifier)
	}

	e := echo.New()
	e.HideBanner = true
	router.SetupMiddleware(e)
	router.SetupRoutes(e, deps)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newBlobStore(ctx context.Context, cfg *config.Config, fb *firebase.App) (blobstore.Store, error) {
	switch cfg.StorageDriver {
	case "gcs", "firebase":
		if fb == nil {
			return nil, errors.New("STORAGE_DRIVER=gcs requires FIREBASE_CREDENTIALS_PATH")
		}
		bucket, err := fb.Bucket(ctx, cfg.StorageBucket)
		if err != nil {
			return nil, err
		}
		return blobstore.NewGCSStore(bucket, cfg.StorageBucket, cfg.StoragePublicBaseURL), nil
	case "minio":
		return blobstore.NewMinioStore(blobstore.MinioConfig{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			UseSSL:        cfg.MinioUseSSL,
			Bucket:        cfg.StorageBucket,
			PublicBaseURL: cfg.StoragePublicBaseURL,
		})
	case "memory":
		if cfg.IsProduction() {
			return nil, errors.New("STORAGE_DRIVER=memory is not allowed in production")
		}
		// Objects are served by this process under /media, so a custom
		// base URL must still route there.
		base := cfg.StoragePublicBaseURL
		if base == "" {
			base = "http://localhost:" + cfg.Port + "/media"
		}
		return blobstore.NewMemory(base), nil
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

func newViewCache(ctx context.Context, cfg *config.Config) (cache.ViewCache, func(), error) {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set; view cache disabled")
		return cache.Noop{}, func() {}, nil
	}
	rc, err := cache.NewRedisCacheFromURL(ctx, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		return nil, nil, err
	}
	return rc, func() { _ = rc.Close() }, nil
}
