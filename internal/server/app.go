// Package server builds the files manager from its configuration: it opens
// PostgreSQL and Redis, applies migrations, selects the content store and
// runs the HTTP API, the gRPC health endpoint and the job workers until a
// termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/config"
	"github.com/dmitrijs2005/filesmanager/internal/server/httpapi"
	"github.com/dmitrijs2005/filesmanager/internal/server/jobs"
	"github.com/dmitrijs2005/filesmanager/internal/server/queue"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
	"github.com/dmitrijs2005/filesmanager/internal/server/sessions"
	"github.com/dmitrijs2005/filesmanager/internal/server/storage"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/filesmanager/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	redis       *redis.Client
	repomanager repomanager.RepositoryManager
	store       storage.ContentStore
	queue       *queue.Queue

	userService   *services.UserService
	fileService   *services.FileService
	statusService *services.StatusService
}

// NewApp connects every backing service. Nothing is served until Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("redis init error: %w", err)
	}

	store, err := newContentStore(ctx, c)
	if err != nil {
		_ = db.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	ss := sessions.NewStore(rdb, c.SessionTTL)
	q := queue.New(rdb)

	return &App{
		config:        c,
		logger:        logger,
		db:            db,
		redis:         rdb,
		repomanager:   rm,
		store:         store,
		queue:         q,
		userService:   services.NewUserService(db, rm, ss, q, c, logger),
		fileService:   services.NewFileService(db, rm, store, q, logger),
		statusService: services.NewStatusService(db, rm, ss),
	}, nil
}

func newContentStore(ctx context.Context, c *config.Config) (storage.ContentStore, error) {
	switch c.StorageBackend {
	case config.StorageS3:
		return storage.NewS3Store(ctx, storage.S3Config{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
		})
	default:
		return storage.NewLocalStore(c.FolderPath)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := httpapi.NewHandler(app.userService, app.fileService, app.statusService, app.logger)
	s := httpapi.NewServer(app.config.HTTPAddr, httpapi.NewRouter(h), httpapi.ServerOptions{
		ReadTimeout:     app.config.HTTPReadTimeout,
		WriteTimeout:    app.config.HTTPWriteTimeout,
		IdleTimeout:     app.config.HTTPIdleTimeout,
		ShutdownTimeout: app.config.ShutdownTimeout,
	}, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	probe := func(ctx context.Context) bool {
		st := app.statusService.Status(ctx)
		return st.DB && st.Redis
	}
	s := gs.NewHealthServer(app.config.GRPCAddr, app.logger, probe, 10*time.Second)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) workers() []*queue.Worker {
	opts := queue.WorkerOptions{
		Concurrency: app.config.WorkerConcurrency,
		MaxAttempts: app.config.JobMaxAttempts,
		PollTimeout: time.Second,
	}
	return []*queue.Worker{
		queue.NewWorker(app.redis, common.ThumbnailQueue,
			jobs.NewThumbnailHandler(app.db, app.repomanager, app.store, app.logger), app.logger, opts),
		queue.NewWorker(app.redis, common.WelcomeQueue,
			jobs.NewWelcomeHandler(app.db, app.repomanager, app.logger), app.logger, opts),
	}
}

func (app *App) startWorkers(ctx context.Context, wg *sync.WaitGroup, cancelFunc context.CancelFunc) {
	for _, w := range app.workers() {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
				cancelFunc()
			}
		}()
	}
}

// Run serves the HTTP API and the gRPC health endpoint, plus the job
// workers when enabled, until ctx is cancelled or a signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	if app.config.RunWorkers {
		app.startWorkers(ctx, &wg, cancelFunc)
	}

	wg.Wait()
	app.close(context.Background())
}

// RunWorkers only consumes the job queues.
func (app *App) RunWorkers(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting workers...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	app.startWorkers(ctx, &wg, cancelFunc)
	wg.Wait()

	app.close(context.Background())
}

func (app *App) close(ctx context.Context) {
	err := errors.Join(app.redis.Close(), app.db.Close())
	if err != nil {
		app.logger.Error(ctx, "close", "error", err)
		return
	}
	app.logger.Info(ctx, "App stopped")
}
