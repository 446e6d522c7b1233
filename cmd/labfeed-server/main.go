package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/labfeed/labfeed/internal/config"
	"github.com/labfeed/labfeed/internal/domain/anomaly"
	"github.com/labfeed/labfeed/internal/domain/audit"
	"github.com/labfeed/labfeed/internal/domain/ingest"
	"github.com/labfeed/labfeed/internal/domain/mapping"
	"github.com/labfeed/labfeed/internal/domain/report"
	"github.com/labfeed/labfeed/internal/domain/result"
	"github.com/labfeed/labfeed/internal/domain/review"
	"github.com/labfeed/labfeed/internal/platform/auth"
	"github.com/labfeed/labfeed/internal/platform/db"
	"github.com/labfeed/labfeed/internal/platform/middleware"
	"github.com/labfeed/labfeed/internal/platform/suggest"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "labfeed-server",
		Short: "Lab report ingestion and normalization API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware([]byte(cfg.JWTSigningKey)))
	}

	// Repositories
	reportRepo := report.NewRepoPG(pool)
	resultRepo := result.NewRepoPG(pool)
	reviewRepo := review.NewRepoPG(pool)
	auditRepo := audit.NewRepoPG(pool)
	entryRepo := mapping.NewEntryRepoPG(pool)

	// Code suggestion collaborator, disabled unless configured.
	var suggester suggest.CodeSuggester = suggest.Disabled{}
	if cfg.SuggestURL != "" {
		suggester = suggest.NewHTTPClient(cfg.SuggestURL, cfg.SuggestAPIKey, cfg.SuggestTimeout())
	}

	// Core services
	resolver := mapping.NewResolver(entryRepo, suggester, logger)
	builder := review.NewBuilder(cfg.ReviewThreshold)
	ingestSvc := ingest.NewService(
		reportRepo, resultRepo, reviewRepo, auditRepo,
		resolver, builder, db.NewPoolTxRunner(pool), logger,
	)
	reportSvc := report.NewService(reportRepo)
	reviewSvc := review.NewService(reviewRepo)
	anomalySvc := anomaly.NewService(resultRepo)

	// Routes
	apiV1 := e.Group("/api/v1")
	report.NewHandler(reportSvc).RegisterRoutes(apiV1)
	result.NewHandler(resultRepo, reportRepo).RegisterRoutes(apiV1)
	ingest.NewHandler(ingestSvc).RegisterRoutes(apiV1)
	mapping.NewHandler(resolver, entryRepo).RegisterRoutes(apiV1)
	review.NewHandler(reviewSvc, reportRepo).RegisterRoutes(apiV1)
	audit.NewHandler(auditRepo, reportRepo).RegisterRoutes(apiV1)
	anomaly.NewHandler(anomalySvc).RegisterRoutes(apiV1)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
