package http

import (
	"net/http"

	"roomrelay/internal/core/domain"
	"roomrelay/internal/core/ports"
	"roomrelay/internal/infrastructure/monitoring"
	apperrors "roomrelay/pkg/errors"
	"roomrelay/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RoomHandler exposes read-only introspection over the live registry.
type RoomHandler struct {
	registry ports.RoomRegistry
	health   *monitoring.HealthChecker
	logger   *logger.ContextLogger
}

func NewRoomHandler(registry ports.RoomRegistry, health *monitoring.HealthChecker, log *logger.ContextLogger) *RoomHandler {
	return &RoomHandler{
		registry: registry,
		health:   health,
		logger:   log,
	}
}

func (h *RoomHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.GET("/rooms", h.ListRooms)
		api.GET("/rooms/:id", h.GetRoom)
	}

	router.GET("/health", h.Health)
}

func (h *RoomHandler) ListRooms(c *gin.Context) {
	ctx := c.Request.Context()

	rooms := h.registry.Rooms(ctx)
	h.logger.LogInfo(ctx, "listed rooms")

	c.JSON(http.StatusOK, gin.H{
		"rooms": rooms,
		"count": len(rooms),
	})
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := domain.RoomID(c.Param("id"))

	members, err := h.registry.Members(ctx, roomID)
	if err != nil {
		c.Error(apperrors.NewNotFoundError("room").WithContext("room_id", string(roomID)))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"roomId":       roomID,
		"participants": members,
	})
}

func (h *RoomHandler) Health(c *gin.Context) {
	status := h.health.Status(c.Request.Context())

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
