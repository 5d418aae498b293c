package controller

import (
	"net/http"

	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{DB: db, Redis: rdb}
}

// HealthCheck godoc
// @Summary Health check
// @Description Reports the state of the service and its dependencies
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	components := gin.H{"database": "up", "redis": "up"}
	healthy := true

	sqlDB, err := c.DB.DB()
	if err != nil || sqlDB.Ping() != nil {
		components["database"] = "down"
		healthy = false
	}

	if err := c.Redis.Ping(ctx.Request.Context()).Err(); err != nil {
		components["redis"] = "down"
		healthy = false
	}

	if !healthy {
		util.ErrorWithData(ctx, http.StatusServiceUnavailable, "degraded", components)
		return
	}
	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
	})
}
