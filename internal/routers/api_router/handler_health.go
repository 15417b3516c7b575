// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"time"

	"github.com/haierkeys/interview-link-service/internal/app"
	"github.com/haierkeys/interview-link-service/internal/domain"
	pkgapp "github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// HealthHandler liveness and readiness of the service
type HealthHandler struct {
	*Handler
}

func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// HealthStatus 健康检查响应
type HealthStatus struct {
	Healthy      bool                           `json:"healthy"`
	Version      string                         `json:"version"`
	UptimeSecond int64                          `json:"uptimeSeconds"`
	Database     string                         `json:"database"` // ok | error
	Sessions     map[domain.SessionStatus]int64 `json:"sessions,omitempty"`
	WriteQueues  int                            `json:"writeQueues"`
	ShuttingDown bool                           `json:"shuttingDown"`
}

// Check reports database reachability and session counts by status.
// A shutting down instance reports unhealthy so load balancers drain it.
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} pkgapp.Res{data=HealthStatus}
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	status := HealthStatus{
		Healthy:      !h.App.IsShuttingDown(),
		Version:      h.App.Version().Version,
		UptimeSecond: int64(time.Since(h.App.StartTime) / time.Second),
		Database:     "ok",
		WriteQueues:  h.App.WriteQueueManager().QueueCount(),
		ShuttingDown: h.App.IsShuttingDown(),
	}

	counts, err := h.App.SessionRepo.CountByStatus(c.Request.Context())
	if err != nil {
		status.Healthy = false
		status.Database = "error"
	} else {
		status.Sessions = counts
	}

	if !status.Healthy {
		pkgapp.NewResponse(c).ToResponse(code.Failed.WithData(status))
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(status))
}
