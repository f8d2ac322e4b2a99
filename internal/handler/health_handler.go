package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/opsdash/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency the health endpoint can probe, e.g. the Redis
// session backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	db      *sqlx.DB
	redis   Pinger
	version string
}

// NewHealthHandler creates a new HealthHandler. redis is nil when sessions
// are not kept in Redis.
func NewHealthHandler(db *sqlx.DB, redis Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, version: version}
}

// GetHealth responds with service, database and, when used, Redis status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	data := gin.H{
		"status":   "healthy",
		"version":  h.version,
		"uptime":   int(time.Since(startTime).Seconds()),
		"database": pingStatus(h.db.PingContext(ctx)),
	}
	if h.redis != nil {
		data["redis"] = pingStatus(h.redis.Ping(ctx))
	}

	utils.Success(c, http.StatusOK, "Service is healthy", data)
}

func pingStatus(err error) string {
	if err != nil {
		return "disconnected"
	}
	return "connected"
}
