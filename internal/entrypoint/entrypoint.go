// Package entrypoint assembles the service from configuration: storage,
// authentication, background tasks and the HTTP router.
package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bookbrief/bookbrief/internal/admin"
	"github.com/bookbrief/bookbrief/internal/audit"
	"github.com/bookbrief/bookbrief/internal/auth"
	"github.com/bookbrief/bookbrief/internal/config"
	"github.com/bookbrief/bookbrief/internal/database"
	auditrepo "github.com/bookbrief/bookbrief/internal/database/audit"
	"github.com/bookbrief/bookbrief/internal/database/books"
	"github.com/bookbrief/bookbrief/internal/database/categories"
	"github.com/bookbrief/bookbrief/internal/database/readinglists"
	"github.com/bookbrief/bookbrief/internal/database/reviews"
	"github.com/bookbrief/bookbrief/internal/database/users"
	http_controllers "github.com/bookbrief/bookbrief/internal/http"
	"github.com/bookbrief/bookbrief/internal/log"
	"github.com/bookbrief/bookbrief/internal/scheduler"
	"github.com/bookbrief/bookbrief/internal/tasks"
)

// throttleIdle is how long a search client may stay quiet before its rate
// limiter is dropped.
const throttleIdle = 10 * time.Minute

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds the storage-backed services shared by the server and the
// maintenance commands.
type App struct {
	Config *config.Config

	DB           *database.Database
	Books        *books.Repository
	Categories   *categories.Repository
	Users        *users.Repository
	ReadingLists *readinglists.Repository
	Reviews      *reviews.Repository
	AuditEvents  *auditrepo.Repository

	Audit *audit.Service
	Auth  *auth.Service
}

// Open connects to the database and builds the repositories and services.
// An empty JWT secret is replaced by a random one, which invalidates every
// issued token on restart.
func Open(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" {
		secret, err := auth.NewSecret()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
		cfg.Auth.JWTSecret = hex.EncodeToString(secret)
		log.Warn("Generated token signing secret (set AUTH_JWT_SECRET to keep tokens valid across restarts)")
	}

	app := &App{
		Config:       cfg,
		DB:           db,
		Books:        books.NewRepository(db.DB),
		Categories:   categories.NewRepository(db.DB),
		Users:        users.NewRepository(db.DB),
		ReadingLists: readinglists.NewRepository(db.DB),
		Reviews:      reviews.NewRepository(db.DB),
		AuditEvents:  auditrepo.NewRepository(db.DB),
	}
	app.Audit = audit.NewService(app.AuditEvents)
	app.Auth = auth.NewService(app.Users, cfg.Auth)
	return app, nil
}

// Close flushes pending audit events and closes the database.
func (a *App) Close() {
	a.Audit.Wait()
	if err := a.DB.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
}

// csrfSecret decodes a hex session secret, falls back to its raw bytes, and
// generates one when none is configured.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	generated, err := auth.NewSecret()
	if err != nil {
		return nil, err
	}
	log.Info("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return generated, nil
}

// Serve runs srv until ctx is cancelled, then shuts it down within timeout.
func Serve(ctx context.Context, srv *http.Server, timeout time.Duration, onShutdown ShutdownFunc) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server", zap.Duration("timeout", timeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so nothing new is enqueued mid-shutdown.
	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("Server exiting")
	return nil
}

// Run starts the HTTP server and background workers and blocks until
// SIGINT or SIGTERM.
func Run(cfg *config.Config, version string) error {
	log.Info("Starting BookBrief", zap.String("version", version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := Open(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	sqlDB, err := app.DB.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}

	secret, err := csrfSecret(cfg.Auth.SessionSecret)
	if err != nil {
		return fmt.Errorf("failed to generate CSRF secret: %w", err)
	}

	if hasAdmins, err := app.Auth.HasAdmins(ctx); err == nil && !hasAdmins {
		log.Warn("No administrator accounts found. Run 'bookbrief create-admin' to create one.")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       app.DB.DB,
		Books:          app.Books,
		Categories:     app.Categories,
		ReadingLists:   app.ReadingLists,
		Reviews:        app.Reviews,
		Users:          app.Users,
		Audit:          app.Audit,
		Dashboard:      admin.NewDashboard(app.Books, app.Users, app.Categories, app.AuditEvents),
		AuthService:    app.Auth,
		SessionManager: sessionManager,
		AuthConfig:     cfg.Auth,
		CSRFSecret:     secret,
		Search:         cfg.Search,
		TaskDefaults: tasks.Defaults{
			PurgeRetentionDays: cfg.Purge.RetentionDays,
			AuditRetentionDays: cfg.Audit.RetentionDays,
			DailyReadsCount:    cfg.DailyReads.Count,
		},
		Version: version,
	}

	var taskClient *tasks.Client
	var dailyReads *scheduler.DailyReadsScheduler
	taskCtx, cancelTasks := context.WithCancel(context.Background())
	defer cancelTasks()

	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks))
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error("Error closing task client", zap.Error(err))
			}
		}()

		taskClient.Register(
			tasks.NewRotateDailyReadsQueue(app.Books, app.Audit),
			tasks.NewPurgeDeletedBooksQueue(app.Books, app.Audit),
			tasks.NewCleanupAuditEventsQueue(app.Audit, app.Audit),
		)
		go taskClient.Start(taskCtx)
		routerCfg.TaskQueue = taskClient

		dailyReads = scheduler.NewDailyReadsScheduler(taskClient, cfg.DailyReads)
		if err := dailyReads.Start(taskCtx); err != nil {
			return fmt.Errorf("failed to start daily reads scheduler: %w", err)
		}
	} else {
		log.Info("Task queue disabled; daily reads rotation will not run")
	}

	router := http_controllers.NewRouter(routerCfg)
	defer router.Stop()

	go sweepThrottle(ctx, router.SearchThrottle())

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	onShutdown := func(ctx context.Context) {
		if dailyReads != nil {
			dailyReads.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
			cancelTasks()
		}
	}

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	return Serve(ctx, srv, timeout, onShutdown)
}

func sweepThrottle(ctx context.Context, throttle *auth.Throttle) {
	ticker := time.NewTicker(throttleIdle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := throttle.Sweep(throttleIdle); n > 0 {
				log.Debug("Dropped idle search limiters", zap.Int("count", n))
			}
		}
	}
}
