package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handlers holds dependencies for the health endpoint.
type Handlers struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// JSON GET /health/json — reports dependency reachability so the feed
// operator can tell a dead service from a rejecting one.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	deps := fiber.Map{
		"database": h.databaseStatus(ctx),
		"redis":    h.redisStatus(ctx),
	}
	status := "ok"
	if deps["database"] == "down" {
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"service":      "autotelex-sync",
		"status":       status,
		"dependencies": deps,
	})
}

func (h *Handlers) databaseStatus(ctx context.Context) string {
	if h.DB == nil {
		return "disabled"
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		return "down"
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return "down"
	}
	return "up"
}

func (h *Handlers) redisStatus(ctx context.Context) string {
	if h.Rdb == nil {
		return "disabled"
	}
	if err := h.Rdb.Ping(ctx).Err(); err != nil {
		return "down"
	}
	return "up"
}
