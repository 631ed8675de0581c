// Package handler provides HTTP handler functions for the vanish API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roguepikachu/vanish/pkg"
	"github.com/roguepikachu/vanish/pkg/logger"
)

// Health reports process liveness. It never touches paste state.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Pinger is satisfied by any downstream dependency that can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides liveness and readiness probes checking downstream deps.
type HealthHandler struct {
	pg          Pinger
	redis       Pinger
	pingTimeout time.Duration
}

// NewHealthHandler constructs a HealthHandler. Either client may be nil when
// the configured store does not use it.
func NewHealthHandler(pg *pgxpool.Pool, redis *redis.Client) *HealthHandler {
	var pgPinger Pinger
	if pg != nil {
		pgPinger = pgPingerAdapter{pg}
	}
	var redisPinger Pinger
	if redis != nil {
		redisPinger = redisPingerAdapter{redis}
	}
	return &HealthHandler{
		pg:          pgPinger,
		redis:       redisPinger,
		pingTimeout: 1 * time.Second,
	}
}

type pgPingerAdapter struct{ pool *pgxpool.Pool }

func (p pgPingerAdapter) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

type redisPingerAdapter struct{ c *redis.Client }

func (r redisPingerAdapter) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

// Liveness reports that the process is up. Do not check external deps here.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, pkg.NewResponse(http.StatusOK, gin.H{"status": "alive"}, "ok"))
}

type check struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Err    string `json:"error,omitempty"`
}

// Readiness checks external dependencies to decide if we can serve traffic.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.pingTimeout)
	defer cancel()

	results := make([]check, 0, 2)
	ready := true
	probe := func(name string, p Pinger) {
		if p == nil {
			return
		}
		if err := p.Ping(ctx); err != nil {
			ready = false
			results = append(results, check{Name: name, Status: "down", Err: err.Error()})
			return
		}
		results = append(results, check{Name: name, Status: "up"})
	}
	probe("postgres", h.pg)
	probe("redis", h.redis)

	if ready {
		c.JSON(http.StatusOK, pkg.NewResponse(http.StatusOK, gin.H{"ready": true, "checks": results}, "ready"))
		return
	}
	logger.Warn(c.Request.Context(), "readiness failed: %+v", results)
	c.JSON(http.StatusServiceUnavailable, pkg.NewResponse(http.StatusServiceUnavailable, gin.H{"ready": false, "checks": results}, "not ready"))
}
