package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sergio129/SaludDirecta/internal/infra"
	"github.com/sergio129/SaludDirecta/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports the mailer circuit breaker
// state; never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, mailerCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		// DLQ depth is informational: stuck jobs need an operator, not a 503.
		dlqFacturas, _ := worker.DLQLength(ctx, rdb, worker.QueueFactura)
		dlqEmails, _ := worker.DLQLength(ctx, rdb, worker.QueueEmail)

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":     status == http.StatusOK,
			"db":     dbStatus,
			"redis":  redisStatus,
			"mailer": mailerCB.State().String(),
			"dlq": gin.H{
				"facturas": dlqFacturas,
				"emails":   dlqEmails,
			},
		})
	}
}
