package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/workboard/pkg/api"
	"github.com/platinummonkey/workboard/pkg/audit"
	"github.com/platinummonkey/workboard/pkg/auth"
	"github.com/platinummonkey/workboard/pkg/config"
	"github.com/platinummonkey/workboard/pkg/events"
	"github.com/platinummonkey/workboard/pkg/jobs"
	"github.com/platinummonkey/workboard/pkg/middleware"
	"github.com/platinummonkey/workboard/pkg/notifications"
	"github.com/platinummonkey/workboard/pkg/observability"
	"github.com/platinummonkey/workboard/pkg/projects"
	"github.com/platinummonkey/workboard/pkg/rbac"
	"github.com/platinummonkey/workboard/pkg/storage"
	"github.com/platinummonkey/workboard/pkg/tasks"
	"github.com/platinummonkey/workboard/pkg/users"
	"github.com/platinummonkey/workboard/pkg/workspaces"
)

const gaugeRefreshTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		autoMigrate, err := cmd.Flags().GetBool("migrate")
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, autoMigrate)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, autoMigrate bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout).
		WithField("version", version)

	providers, err := observability.InitOTel(ctx, cfg.OTel(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := observability.ShutdownOTel(shutdownCtx, providers, logger); err != nil {
			logger.WithError(err).Warn("OpenTelemetry shutdown failed")
		}
	}()

	db, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := checkMigrations(ctx, db, logger, autoMigrate); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Storage.RedisURL != "" {
		if redisClient, err = storage.NewRedisClient(ctx, cfg.Storage); err != nil {
			return err
		}
		defer redisClient.Close()
	}

	var avatars users.AvatarStore
	if cfg.Storage.S3Bucket != "" {
		objects, err := storage.NewS3ObjectStore(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		avatars = objects
	} else {
		logger.Info("S3 bucket not configured, avatar upload disabled")
	}

	auditLogger, err := newAuditLogger(cfg.Audit)
	if err != nil {
		return err
	}
	defer auditLogger.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	dispatcher := events.NewDispatcher(logger, metrics)
	svc := newServices(db, cfg, tokens, avatars, redisClient, dispatcher, metrics, logger)
	dispatcher.Subscribe("notifications", svc.Notifications.Handle)
	dispatcher.Subscribe("audit", audit.NewSubscriber(auditLogger).Handle)

	server := api.NewServer(svc, api.Options{
		Tokens:       tokens,
		Limiter:      newLimiter(cfg.RateLimit, redisClient),
		Audit:        auditLogger,
		Metrics:      metrics,
		Logger:       logger,
		CORSOrigins:  cfg.Server.CORSOrigins,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db.DB, redisClient, version))
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	refresher := jobs.NewGaugeRefresher(db, metrics, logger)
	scheduler := cron.New()
	if err := refresher.Schedule(scheduler, cfg.Jobs.GaugeRefreshSchedule, gaugeRefreshTimeout); err != nil {
		return err
	}
	if err := refresher.Refresh(ctx); err != nil {
		logger.WithError(err).Warn("initial gauge refresh failed")
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("API server listening on %s", apiServer.Addr)
		return listen(apiServer)
	})
	g.Go(func() error {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		return listen(healthServer)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return errors.Join(apiServer.Shutdown(shutdownCtx), healthServer.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}

func listen(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", srv.Addr, err)
	}
	return nil
}

// checkMigrations applies pending migrations when asked to and otherwise
// warns about them
func checkMigrations(ctx context.Context, db *sqlx.DB, logger *observability.Logger, apply bool) error {
	m, err := newMigrator(ctx, db, logger)
	if err != nil {
		return err
	}
	pending := m.Pending()
	if pending == 0 {
		return nil
	}
	if !apply {
		logger.Warnf("%d pending migration(s), run `workboard migrate up`", pending)
		return nil
	}
	_, err = m.Up(ctx, 0)
	return err
}

func newServices(db *sqlx.DB, cfg *config.Config, tokens *auth.TokenManager, avatars users.AvatarStore,
	redisClient *redis.Client, publisher events.Publisher, metrics *observability.Metrics, logger *observability.Logger) api.Services {
	userStore := users.NewStore(db)
	wsStore := workspaces.NewStore(db)
	projectStore := projects.NewStore(db)
	resolver := rbac.NewResolver(wsStore)

	var realtime notifications.Realtime
	if redisClient != nil {
		realtime = notifications.NewRedisRealtime(redisClient)
	}

	userSvc := users.NewService(userStore, auth.NewHasher(cfg.Auth.BcryptCost), tokens, resolver, avatars, logger)
	wsSvc := workspaces.NewService(wsStore, userStore, resolver, publisher, logger)
	userSvc.SetProvisioner(wsSvc)

	return api.Services{
		Users:         userSvc,
		Workspaces:    wsSvc,
		Projects:      projects.NewService(projectStore, resolver, wsStore, publisher, logger),
		Tasks:         tasks.NewService(tasks.NewStore(db), projectStore, wsStore, resolver, wsStore, publisher, logger),
		Notifications: notifications.NewService(notifications.NewStore(db), wsStore, realtime, logger, metrics),
	}
}

// newLimiter returns nil when rate limiting is off. Limits are shared
// across replicas when Redis is configured.
func newLimiter(cfg config.RateLimitConfig, redisClient *redis.Client) middleware.Limiter {
	if !cfg.Enabled {
		return nil
	}
	rl := &middleware.RateLimitConfig{
		RequestsPerWindow: cfg.RequestsPerMinute,
		WindowDuration:    time.Minute,
		BurstSize:         cfg.RequestsPerMinute / 10,
		MaxKeys:           cfg.MaxTrackedClients,
	}
	if redisClient != nil {
		return middleware.NewDistributedRateLimiter(redisClient, rl, "workboard:ratelimit")
	}
	return middleware.NewRateLimiter(rl)
}

func newAuditLogger(cfg config.AuditConfig) (audit.Logger, error) {
	switch {
	case !cfg.Enabled:
		return audit.NopLogger{}, nil
	case cfg.Dir == "":
		return audit.NewJSONLogger(os.Stdout), nil
	}
	fl, err := audit.NewFileLogger(audit.FileLoggerConfig{
		BasePath: cfg.Dir,
		MaxSize:  cfg.MaxSize,
		MaxFiles: cfg.MaxFiles,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return fl, nil
}
