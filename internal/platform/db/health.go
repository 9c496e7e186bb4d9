package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats reports connection pool usage together with the aggregation
// fan-out budget. WorkerHeadroom is how many connections remain for regular
// request traffic once an all-patients aggregation claims its full worker
// count; it goes negative when the pool is already saturated.
type PoolStats struct {
	TotalConns       int32 `json:"total_conns"`
	IdleConns        int32 `json:"idle_conns"`
	AcquiredConns    int32 `json:"acquired_conns"`
	MaxConns         int32 `json:"max_conns"`
	AggregateWorkers int32 `json:"aggregate_workers"`
	WorkerHeadroom   int32 `json:"worker_headroom"`
	Healthy          bool  `json:"healthy"`
}

func workerHeadroom(maxConns, acquiredConns int32, workers int) int32 {
	return maxConns - acquiredConns - int32(workers)
}

// GetPoolStats snapshots the pool counters.
func GetPoolStats(pool *pgxpool.Pool, aggregateWorkers int) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:       stat.TotalConns(),
		IdleConns:        stat.IdleConns(),
		AcquiredConns:    stat.AcquiredConns(),
		MaxConns:         stat.MaxConns(),
		AggregateWorkers: int32(aggregateWorkers),
		WorkerHeadroom:   workerHeadroom(stat.MaxConns(), stat.AcquiredConns(), aggregateWorkers),
		Healthy:          stat.TotalConns() > 0,
	}
}

// HealthHandler returns the database health check endpoint.
func HealthHandler(pool *pgxpool.Pool, aggregateWorkers int) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		err := pool.Ping(ctx)
		stats := GetPoolStats(pool, aggregateWorkers)

		if err != nil {
			stats.Healthy = false
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
				"pool":   stats,
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"pool":   stats,
		})
	}
}
