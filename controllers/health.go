package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gateworks-backend/config"
	"gateworks-backend/storage"
)

const healthTimeout = 3 * time.Second

type HealthController struct {
	Store storage.ObjectStore
}

func (hc *HealthController) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	checks := gin.H{"database": "ok", "storage": "ok"}
	healthy := true

	if sqlDB, err := config.DB.DB(); err != nil {
		checks["database"], healthy = err.Error(), false
	} else if err := sqlDB.PingContext(ctx); err != nil {
		checks["database"], healthy = err.Error(), false
	}
	if hc.Store != nil {
		if err := hc.Store.Ping(ctx); err != nil {
			checks["storage"], healthy = err.Error(), false
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"healthy": healthy, "checks": checks})
}
