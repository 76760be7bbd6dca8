package handlers

import (
	"database/sql"
	"math"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mimichub-backend/internal/http/response"
	"github.com/yungbote/mimichub-backend/internal/observability"
)

// PoolSettings echoes the configured pool limits on /performance.
type PoolSettings struct {
	PoolSize    int     `json:"pool_size"`
	MaxOverflow int     `json:"max_overflow"`
	PoolTimeout float64 `json:"pool_timeout"`
	PoolRecycle float64 `json:"pool_recycle"`
}

type HealthHandler struct {
	version string
	driver  string
	timings *observability.QueryTimings
	dbStats func() sql.DBStats
	pool    PoolSettings
}

func NewHealthHandler(version, driver string, timings *observability.QueryTimings, dbStats func() sql.DBStats, pool PoolSettings) *HealthHandler {
	if dbStats == nil {
		dbStats = func() sql.DBStats { return sql.DBStats{} }
	}
	return &HealthHandler{version: version, driver: driver, timings: timings, dbStats: dbStats, pool: pool}
}

// GET /
func (h *HealthHandler) Root(c *gin.Context) {
	response.RespondMessage(c, "Welcome to mimic hub API")
}

// GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	stats := h.dbStats()
	queries := h.timings.Total()
	response.RespondOK(c, gin.H{
		"status":   "healthy",
		"version":  h.version,
		"database": h.driver,
		"performance": gin.H{
			"connections": gin.H{
				"total":           stats.OpenConnections,
				"average_time_ms": avgWaitMs(stats),
			},
			"queries": gin.H{
				"total":           queries.Count,
				"average_time_ms": round2(queries.AvgMs),
			},
		},
	})
}

// GET /performance
func (h *HealthHandler) Performance(c *gin.Context) {
	stats := h.dbStats()
	response.RespondOK(c, gin.H{
		"database_performance": gin.H{
			"queries":    h.timings.Total(),
			"operations": h.timings.Snapshot(),
			"connections": gin.H{
				"open":             stats.OpenConnections,
				"in_use":           stats.InUse,
				"idle":             stats.Idle,
				"max_open":         stats.MaxOpenConnections,
				"wait_count":       stats.WaitCount,
				"wait_duration_ms": round2(float64(stats.WaitDuration) / float64(time.Millisecond)),
				"average_time_ms":  avgWaitMs(stats),
			},
		},
		"connection_method": "gorm/" + h.driver,
		"pool_settings":     h.pool,
	})
}

func avgWaitMs(s sql.DBStats) float64 {
	if s.WaitCount == 0 {
		return 0
	}
	return round2(float64(s.WaitDuration) / float64(time.Millisecond) / float64(s.WaitCount))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
