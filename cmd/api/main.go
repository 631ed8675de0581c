// Package main is the entry point for the vanish API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roguepikachu/vanish/internal/config"
	"github.com/roguepikachu/vanish/internal/data"
	"github.com/roguepikachu/vanish/internal/http/handler"
	"github.com/roguepikachu/vanish/internal/http/middleware"
	"github.com/roguepikachu/vanish/internal/http/router"
	"github.com/roguepikachu/vanish/internal/repository"
	"github.com/roguepikachu/vanish/internal/repository/memory"
	postgresRepo "github.com/roguepikachu/vanish/internal/repository/postgres"
	redisRepo "github.com/roguepikachu/vanish/internal/repository/redis"
	"github.com/roguepikachu/vanish/internal/service"
	"github.com/roguepikachu/vanish/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// store is the opened paste backend plus whatever clients it holds.
type store struct {
	repo  repository.PasteRepository
	pg    *pgxpool.Pool
	redis *redis.Client
}

func (s store) Close() {
	if s.pg != nil {
		s.pg.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
}

// openStore connects the backend selected by cfg.Store.
func openStore(ctx context.Context, cfg config.Config) (store, error) {
	switch cfg.Store {
	case config.StoreRedis:
		client := data.NewRedisClient(cfg)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return store{}, err
		}
		return store{repo: redisRepo.NewPasteRepository(client, cfg.RedisRetention), redis: client}, nil
	case config.StorePostgres:
		pool, err := data.NewPostgresPool(ctx, cfg)
		if err != nil {
			return store{}, err
		}
		repo := postgresRepo.NewPasteRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return store{}, err
		}
		return store{repo: repo, pg: pool}, nil
	default:
		return store{repo: memory.NewPasteRepository()}, nil
	}
}

// startJanitor launches the sweep loop when the store supports it. Test mode
// never sweeps: requests pin their own "now", and the janitor's wall clock
// would remove pastes that are still readable at the pinned time.
func startJanitor(ctx context.Context, cfg config.Config, repo repository.PasteRepository, clock service.Clock) bool {
	sweeper, ok := repo.(repository.Sweeper)
	if !ok || cfg.SweepInterval <= 0 {
		return false
	}
	if cfg.TestMode {
		logger.Info(ctx, "test mode: paste sweeping disabled")
		return false
	}
	go service.RunJanitor(ctx, sweeper, cfg.SweepInterval, clock)
	return true
}

func main() {
	logger.InitLogging()
	config.InitConf()
	cfg := config.Conf

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to open %s store: %v", cfg.Store, err)
	}
	defer st.Close()
	logger.Info(ctx, "using %s paste store", cfg.Store)

	clock := service.RealClock{}
	svc := service.NewService(st.repo, clock)

	startJanitor(ctx, cfg, st.repo, clock)

	if cfg.TestMode {
		logger.Warn(ctx, "test mode enabled: %s header controls the clock", middleware.HeaderTestNow)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.NewRouter(
		handler.NewHandler(svc, cfg.PublicBaseURL),
		handler.NewHealthHandler(st.pg, st.redis),
		router.Options{TestMode: cfg.TestMode, CORSOrigins: cfg.CORSOrigins},
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info(ctx, "listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "server forced to shutdown: %v", err)
	}
}
