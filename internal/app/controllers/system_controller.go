package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/middleware"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/logger"
	"github.com/studyhub-il/studyhub/internal/pkg/websocket"
)

// Pinger checks a backing dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemController serves the health check and the realtime endpoint
type SystemController struct {
	db      Pinger
	ws      *websocket.Handler
	version string
}

// NewSystemController creates a new SystemController; db may be nil
func NewSystemController(db Pinger, ws *websocket.Handler, version string) *SystemController {
	return &SystemController{db: db, ws: ws, version: version}
}

// Health godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse} "Healthy"
// @Failure 503 {object} dto.APIResponse{data=dto.HealthResponse} "Database unreachable"
// @Router /health [get]
func (c *SystemController) Health(ctx *gin.Context) {
	resp := dto.HealthResponse{
		Status:    "ok",
		Message:   "StudyHub API is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   c.version,
	}
	status := http.StatusOK

	if c.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.db.Ping(pingCtx); err != nil {
			logger.Warn().Err(err).Msg("Health check database ping failed")
			resp.Status = "degraded"
			resp.Message = "database unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	ctx.JSON(status, dto.APIResponse{Success: status == http.StatusOK, Data: resp, Timestamp: time.Now()})
}

// Realtime godoc
// @Summary Realtime events
// @Description Upgrades to a WebSocket bound to the caller. The access token may be passed as the "token" query parameter.
// @Tags system
// @Param token query string false "Access token"
// @Success 101 "Switching protocols"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /ws [get]
func (c *SystemController) Realtime(ctx *gin.Context) {
	actor := middleware.CurrentActor(ctx)
	if actor == nil {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return
	}
	c.ws.Serve(ctx, actor.UserID)
}
