package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"healthcare-booking-server/internal/config"
	"healthcare-booking-server/internal/jobs"
	"healthcare-booking-server/internal/metrics"
	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/realtime"
	"healthcare-booking-server/internal/routes"
	"healthcare-booking-server/internal/seed"
	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/store"
	"healthcare-booking-server/internal/store/gormstore"
	"healthcare-booking-server/internal/store/mongostore"
	"healthcare-booking-server/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "healthcare-booking-server",
		Short: "Healthcare appointment booking API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

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
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema (tables or collection indexes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close(context.Background())

			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info().Str("backend", cfg.StorageBackend).Msg("migration complete")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load default departments, news and FAQs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close(context.Background())

			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			res, err := seed.Run(ctx, services.NewContentService(s))
			if err != nil {
				return err
			}
			log.Info().
				Int("departments", res.Departments).
				Int("news", res.News).
				Int("faqs", res.FAQs).
				Msg("seed complete")
			return nil
		},
	}
}

// bootstrap loads .env and the configuration and builds the process logger.
func bootstrap() (*config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, zerolog.Nop(), fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	return cfg, newLogger(cfg), nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	log := zerolog.New(os.Stdout)
	if cfg.IsDev() {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return log.Level(level).With().Timestamp().Str("service", "healthcare-booking-server").Logger()
}

// openStore connects the configured backend.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		s, err := mongostore.Connect(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		gormLevel := logger.Warn
		if cfg.IsDev() {
			gormLevel = logger.Info
		}
		db, err := models.InitDB(models.DatabaseConfig{
			Driver:   cfg.Database.Driver,
			DSN:      cfg.Database.DSN,
			LogLevel: gormLevel,
		})
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		return gormstore.New(db), nil
	}
}

func runServer() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to open store")
		return err
	}
	defer s.Close(context.Background())

	if err := s.Migrate(ctx); err != nil {
		log.Error().Err(err).Msg("failed to migrate store")
		return err
	}
	log.Info().Str("backend", cfg.StorageBackend).Msg("store ready")

	m := metrics.New()
	hub := realtime.NewHub(log.With().Str("component", "realtime").Logger())
	tokens := utils.NewTokenManager(cfg)

	svc := services.New(s, services.Options{
		Tokens:           tokens,
		Publisher:        hub,
		Recorder:         m,
		EnforceOwnership: cfg.EnforceStatusOwner,
		MaxUploadBytes:   cfg.MaxUploadBytes,
	})

	var reminders *jobs.ReminderJob
	if cfg.RemindersEnabled {
		reminders = jobs.NewReminderJob(s, svc.Notifications, m, log)
		if err := reminders.Start(cfg.ReminderSchedule); err != nil {
			log.Error().Err(err).Msg("failed to start reminder job")
			return err
		}
	}

	router := routes.NewRouter(routes.Dependencies{
		Config:   cfg,
		Store:    s,
		Services: svc,
		Tokens:   tokens,
		Hub:      hub,
		Metrics:  m,
		Logger:   log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Environment).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if reminders != nil {
		reminders.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
