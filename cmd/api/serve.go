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

	"github.com/BradenHooton/tiktok-automation/internal/auth"
	"github.com/BradenHooton/tiktok-automation/internal/automation"
	"github.com/BradenHooton/tiktok-automation/internal/background"
	"github.com/BradenHooton/tiktok-automation/internal/config"
	"github.com/BradenHooton/tiktok-automation/internal/database"
	"github.com/BradenHooton/tiktok-automation/internal/handlers"
	middlewareCustom "github.com/BradenHooton/tiktok-automation/internal/middleware"
	"github.com/BradenHooton/tiktok-automation/internal/repositories"
	"github.com/BradenHooton/tiktok-automation/internal/routes"
	"github.com/BradenHooton/tiktok-automation/internal/services"
	"github.com/BradenHooton/tiktok-automation/internal/storage"
	pkghttp "github.com/BradenHooton/tiktok-automation/pkg/http"
	pkglogger "github.com/BradenHooton/tiktok-automation/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateOnStart bool

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg.Server.LogLevel)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))
	if cfg.Auth.SecretGenerated {
		logger.Warn("JWT_SECRET_KEY not set, using a generated secret; tokens will not survive a restart")
	}

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	db, err := database.NewConnection(startCtx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if migrateOnStart {
		if err := db.Migrate(startCtx, database.MigrateUp); err != nil {
			return err
		}
	}

	videoStore, err := storage.New(startCtx, cfg.Storage)
	if err != nil {
		return err
	}
	if err := videoStore.Prepare(startCtx); err != nil {
		return fmt.Errorf("failed to prepare video storage: %w", err)
	}
	logger.Info("video storage ready", slog.String("location", videoStore.Location()))

	subsystem, closeSubsystem, err := newSubsystem(cfg.Automation, logger)
	if err != nil {
		return err
	}
	defer closeSubsystem()

	var notifier services.LockoutNotifier
	if cfg.Email.FromAddress != "" {
		sesNotifier, err := services.NewSESLockoutNotifier(startCtx, cfg.Email, cfg.Auth.LockoutWindow, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize lockout notifier: %w", err)
		}
		notifier = sesNotifier
	} else {
		logger.Info("EMAIL_FROM_ADDRESS not set, lockout notifications disabled")
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	accountRepo := repositories.NewTikTokAccountRepository(db)
	scheduleRepo := repositories.NewScheduleRepository(db)
	proxyRepo := repositories.NewProxyRepository(db)
	engagementRepo := repositories.NewEngagementRepository(db)
	cascade := repositories.NewCascade(db)

	// Services
	auditLogger := pkglogger.NewAuditLogger(logger)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret)

	authService := services.NewAuthService(userRepo, tokenManager, notifier, cfg.Auth, logger, auditLogger)
	userService := services.NewUserService(userRepo, accountRepo, scheduleRepo, cascade, videoStore, subsystem, logger, auditLogger)
	accountService := services.NewTikTokAccountService(accountRepo, scheduleRepo, cascade, videoStore, subsystem, logger, auditLogger)
	scheduleService := services.NewScheduleService(scheduleRepo, accountRepo, videoStore, subsystem, cfg.Storage.UploadDir, logger, auditLogger)
	proxyService := services.NewProxyService(proxyRepo, subsystem, logger, auditLogger)
	engagementService := services.NewEngagementService(engagementRepo, accountRepo, subsystem, logger)

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders)
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger, ipConfig))
	router.Use(middlewareCustom.Recoverer(logger))

	routes.RegisterRoutes(router, routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService, logger),
		User:          handlers.NewUserHandler(userService, logger),
		TikTokAccount: handlers.NewTikTokAccountHandler(accountService, logger),
		Schedule:      handlers.NewScheduleHandler(scheduleService, cfg.Storage.MaxUploadSize, logger),
		Proxy:         handlers.NewProxyHandler(proxyService, logger),
		Engagement:    handlers.NewEngagementHandler(engagementService, logger),
		Health:        handlers.NewHealthHandler(db, logger),
	}, authService, middlewareCustom.DefaultAuthRateLimit(cfg.Auth.LoginRateLimit, ipConfig))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	stopReaper := startReaper(ctx, cfg, engagementRepo, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			stopReaper()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	stopReaper()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// newSubsystem connects to the automation subsystem. Without an AMQP URL every
// call is accepted and dropped.
func newSubsystem(cfg config.AutomationConfig, logger *slog.Logger) (automation.Subsystem, func(), error) {
	if !cfg.Enabled() {
		logger.Warn("AUTOMATION_AMQP_URL not set, automation calls are not delivered")
		return automation.Noop{}, func() {}, nil
	}

	client, err := automation.DialRPC(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to automation subsystem: %w", err)
	}
	logger.Info("automation subsystem connected", slog.String("queue", cfg.Queue))

	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close automation client", slog.Any("error", err))
		}
	}, nil
}

// startReaper runs the engagement reaper when an automation subsystem is
// configured. Without one an engagement is never answered and pending is final.
func startReaper(ctx context.Context, cfg *config.Config, store background.StaleEngagementStore, logger *slog.Logger) func() {
	if !cfg.Automation.Enabled() {
		logger.Info("automation subsystem not configured, engagement reaper disabled")
		return func() {}
	}

	reaper := background.NewEngagementReaper(store, logger, cfg.Background.ReaperInterval, cfg.Background.EngagementStaleAfter)
	go reaper.Start(ctx)
	return reaper.Stop
}
