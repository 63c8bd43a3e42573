package http

import (
	"net/http"
	"time"

	"beamcast/internal/core/ports"
	"beamcast/internal/infrastructure/monitoring"
	apperrors "beamcast/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ConnCounter reports the number of live transport connections.
type ConnCounter interface {
	Count() int
}

type StatusHandler struct {
	rooms   ports.RoomStore
	conns   ConnCounter
	checker *monitoring.HealthChecker
}

func NewStatusHandler(rooms ports.RoomStore, conns ConnCounter, checker *monitoring.HealthChecker) *StatusHandler {
	return &StatusHandler{
		rooms:   rooms,
		conns:   conns,
		checker: checker,
	}
}

func (h *StatusHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/", h.Status)
	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Status is the fixed readiness payload clients poll before opening a
// relay connection.
func (h *StatusHandler) Status(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "WebRTC signaling server running",
	})
}

func (h *StatusHandler) Health(c *gin.Context) {
	status := h.checker.CheckAll(c.Request.Context())
	if status.Status != "healthy" {
		c.Error(apperrors.NewAppError(apperrors.ErrCodeServiceUnavailable, "health checks failing", http.StatusServiceUnavailable))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      status.Status,
		"timestamp":   time.Now().Unix(),
		"rooms":       h.rooms.Count(c.Request.Context()),
		"connections": h.conns.Count(),
		"checks":      status.Checks,
	})
}
