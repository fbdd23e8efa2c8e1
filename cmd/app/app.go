package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/qrdesk/qr-admin-api/internal/api"
	"github.com/qrdesk/qr-admin-api/internal/config"
	"github.com/qrdesk/qr-admin-api/internal/db"
	"github.com/qrdesk/qr-admin-api/internal/logger"
	"github.com/qrdesk/qr-admin-api/internal/queue"
	"github.com/qrdesk/qr-admin-api/internal/storage"
)

const (
	configPath      = "./cmd/app/config.yml"
	shutdownTimeout = 15 * time.Second
)

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	if err = logger.SetLevel(conf.API.LogLevel); err != nil {
		return fmt.Errorf("failed to set log level -> %w", err)
	}

	// Only the log level is applied live, everything else needs a restart.
	config.Watch(configPath, func(fresh *config.AppConfig) {
		if err := logger.SetLevel(fresh.API.LogLevel); err != nil {
			zap.L().Warn("log level not reloaded", zap.Error(err))
			return
		}
		zap.L().Info("log level reloaded", zap.String("level", fresh.API.LogLevel))
	}, func(err error) {
		zap.L().Warn("config not reloaded", zap.Error(err))
	})

	var postgresDB *gorm.DB
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	jobs, err := openQueue(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize job queue -> %w", err)
	}
	defer func() {
		if err := jobs.Close(); err != nil {
			zap.L().Warn("job queue not closed", zap.Error(err))
		}
	}()

	private, err := storage.NewOSDisk(filepath.Join(conf.Storage.Root, conf.Storage.PrivateDir))
	if err != nil {
		return fmt.Errorf("failed to initialize private storage -> %w", err)
	}
	public, err := storage.NewOSDisk(filepath.Join(conf.Storage.Root, conf.Storage.PublicDir))
	if err != nil {
		return fmt.Errorf("failed to initialize public storage -> %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := api.NewServer(conf, postgresDB, jobs, private, public)
	if err = s.EnsureAdmin(ctx); err != nil {
		return fmt.Errorf("failed to create bootstrap admin -> %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + conf.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}

		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return s.Pool.Run(gctx)
	})
	g.Go(func() error {
		return s.Hub.Run(gctx)
	})

	return g.Wait()
}

// openQueue picks redis when REDIS_URL is set or redis is enabled in the
// config, and an in-process queue otherwise.
func openQueue(conf *config.AppConfig) (queue.Queue, error) {
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		client, err := queue.NewRedisClientFromURL(redisURL)
		if err != nil {
			return nil, err
		}

		return pingedQueue(queue.NewRedisQueue(client, conf.Redis.QueueKey, conf.Worker.PollTimeout))
	}

	if conf.Redis.Enabled {
		client := queue.NewRedisClient(conf.Redis.Addr, conf.Redis.Password, conf.Redis.DB)

		return pingedQueue(queue.NewRedisQueue(client, conf.Redis.QueueKey, conf.Worker.PollTimeout))
	}

	zap.L().Info("redis disabled, jobs run in process")

	return queue.NewMemoryQueue(conf.Worker.QueueSize), nil
}

func pingedQueue(q *queue.RedisQueue) (queue.Queue, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := q.Ping(ctx); err != nil {
		return nil, fmt.Errorf("q.Ping -> %w", err)
	}

	return q, nil
}
