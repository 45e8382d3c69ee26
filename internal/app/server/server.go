package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"careroster/internal/domain/accounts"
	"careroster/internal/domain/documents"
	"careroster/internal/domain/people"
	"careroster/internal/domain/reports"
	"careroster/internal/domain/teams"
	"careroster/internal/platform/cache"
	"careroster/internal/platform/config"
	"careroster/internal/platform/db"
	"careroster/internal/platform/identity"
	"careroster/internal/platform/logger"
	"careroster/internal/platform/metrics"
	"careroster/internal/platform/storage"
	clientshandler "careroster/internal/transport/http/handlers/clients"
	documentshandler "careroster/internal/transport/http/handlers/documents"
	signuphandler "careroster/internal/transport/http/handlers/signup"
	staffhandler "careroster/internal/transport/http/handlers/staff"
	teamshandler "careroster/internal/transport/http/handlers/teams"
	usershandler "careroster/internal/transport/http/handlers/users"
)

type App struct {
	Config  config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	Log     *zap.Logger
	Metrics *metrics.Collector
	Router  http.Handler
}

// New connects the backing services and wires every handler. Optional
// integrations (identity provider, document bucket) stay off when their
// settings are empty.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	gdb, err := db.Connect(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, gdb); err != nil {
			_ = db.Close(gdb)
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.RunSeed {
		companyID, err := db.Seed(ctx, gdb, cfg)
		if err != nil {
			_ = db.Close(gdb)
			return nil, fmt.Errorf("seed: %w", err)
		}
		log.Info("seed complete", zap.String("company_id", companyID))
	}

	rdb := cache.NewClient(cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	kv := cache.NewRedisKV(rdb)
	if err := kv.Ping(ctx); err != nil {
		log.Warn("redis not reachable, records will be served from the database", zap.Error(err))
	}

	collector := metrics.New()
	recordCache := people.NewRecordCache(kv, cfg.CacheTTL, collector)
	peopleSvc := people.NewService(people.NewStore(gdb), recordCache, log.Named("people"))

	var uploader documents.Uploader
	if cfg.DocumentBucket != "" {
		s3Store, err := storage.NewS3Store(ctx, cfg.DocumentBucket)
		if err != nil {
			_ = db.Close(gdb)
			_ = rdb.Close()
			return nil, fmt.Errorf("document storage: %w", err)
		}
		uploader = s3Store
	}

	var idp accounts.MetadataUpdater
	if cfg.IdentityAPIURL != "" {
		idp = identity.NewClient(cfg.IdentityAPIURL, cfg.IdentityAPIKey, log.Named("identity"))
	}

	handlers := Handlers{
		Users:     usershandler.NewHandler(peopleSvc, log),
		Staff:     staffhandler.NewHandler(peopleSvc, reports.NewService(peopleSvc), log),
		Clients:   clientshandler.NewHandler(peopleSvc, log),
		Teams:     teamshandler.NewHandler(teams.NewService(teams.NewStore(gdb), recordCache, log.Named("teams")), log),
		Documents: documentshandler.NewHandler(documents.NewService(documents.NewStore(gdb), peopleSvc.Resolver, uploader, log.Named("documents")), log),
		SignUp:    signuphandler.NewHandler(accounts.NewService(accounts.NewGormStore(gdb), peopleSvc, idp, log.Named("accounts")), log),
	}

	checks := map[string]ReadyCheck{
		"database": func(ctx context.Context) error { return db.Ping(ctx, gdb) },
		"redis":    kv.Ping,
	}

	return &App{
		Config:  cfg,
		DB:      gdb,
		Redis:   rdb,
		Log:     log,
		Metrics: collector,
		Router:  NewRouter(cfg, log, collector, handlers, checks),
	}, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, db.Close(a.DB))
	}
	return errors.Join(errs...)
}

// Run loads configuration, serves HTTP and shuts down on SIGINT or SIGTERM.
func Run() error {
	cfg := config.Load()
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("shutdown cleanup failed", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.Environment))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
