package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vietanh2810/medal-board-api/internal/api"
	"github.com/vietanh2810/medal-board-api/internal/config"
	"github.com/vietanh2810/medal-board-api/internal/db"
	"github.com/vietanh2810/medal-board-api/internal/eventbus"
	"github.com/vietanh2810/medal-board-api/internal/jobs"
	"github.com/vietanh2810/medal-board-api/internal/logger"
	"github.com/vietanh2810/medal-board-api/internal/metrics"
	"github.com/vietanh2810/medal-board-api/internal/repository/cache"
	"github.com/vietanh2810/medal-board-api/internal/repository/dao"
)

const shutdownTimeout = 10 * time.Second

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	if err = logger.SetLevel(conf.API.LogLevel); err != nil {
		zap.L().Warn("invalid log level, keeping default", zap.Error(err))
	}
	config.OnLogLevelChange(func(level string) {
		if err := logger.SetLevel(level); err != nil {
			zap.L().Warn("invalid log level in config", zap.String("level", level), zap.Error(err))
			return
		}
		zap.L().Info("log level changed", zap.String("level", level))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dsn != "" {
		postgresDB, err = db.OpenPostgresWithURL(dsn)
	} else {
		dsn = conf.Postgres.DSN()
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}
	if err = dao.InitTables(postgresDB); err != nil {
		return fmt.Errorf("failed to initialize tables -> %w", err)
	}

	scoreboardCache, err := openCache(ctx, conf.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize cache -> %w", err)
	}

	m := metrics.New()
	bus := eventbus.New()
	defer bus.Close()

	s, err := api.NewServer(conf, postgresDB, api.Deps{Bus: bus, Cache: scoreboardCache, Metrics: m})
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}

	if err = bus.Subscribe(ctx, "scoreboard-cache", s.Scoreboard.Invalidate, eventbus.Topics...); err != nil {
		return fmt.Errorf("failed to subscribe scoreboard cache -> %w", err)
	}
	go s.Live.Run(ctx)

	if conf.Jobs.Enabled {
		runner, err := startJobs(ctx, dsn, conf.Jobs, s, m)
		if err != nil {
			return fmt.Errorf("failed to start jobs -> %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := runner.Stop(stopCtx); err != nil {
				zap.L().Error("failed to stop jobs", zap.Error(err))
			}
		}()
	}

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))

	errCh := make(chan error, 1)
	go func() { errCh <- s.Router.Run(addr) }()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-ctx.Done():
		zap.L().Info("shutting down")
	}

	return nil
}

func openCache(ctx context.Context, conf *config.RedisConfig) (cache.ScoreboardCache, error) {
	if conf.Addr == "" {
		zap.L().Info("using in-memory scoreboard cache")
		return cache.NewMemoryCache(conf.TTL), nil
	}

	client, err := cache.NewRedisClient(ctx, conf.Addr, conf.Password, conf.DB)
	if err != nil {
		return nil, fmt.Errorf("cache.NewRedisClient -> %w", err)
	}

	zap.L().Info("using redis scoreboard cache", zap.String("addr", conf.Addr))
	return cache.NewRedisCache(client, conf.TTL), nil
}

func startJobs(ctx context.Context, dsn string, conf *config.JobsConfig, s *api.Server, m *metrics.Metrics) (*jobs.Runner, error) {
	pool, err := db.OpenPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("db.OpenPool -> %w", err)
	}

	if err = jobs.Migrate(ctx, pool); err != nil {
		return nil, fmt.Errorf("jobs.Migrate -> %w", err)
	}

	runner, err := jobs.NewRunner(pool, conf, s.Scoreboard, s.Roster, m)
	if err != nil {
		return nil, fmt.Errorf("jobs.NewRunner -> %w", err)
	}

	if err = runner.Start(ctx); err != nil {
		return nil, fmt.Errorf("runner.Start -> %w", err)
	}
	return runner, nil
}
