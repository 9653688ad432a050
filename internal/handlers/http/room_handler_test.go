package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roomrelay/internal/core/domain"
	"roomrelay/internal/infrastructure/middleware"
	"roomrelay/internal/infrastructure/monitoring"
	"roomrelay/internal/infrastructure/repositories/memory"
	"roomrelay/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubEndpoint struct {
	id domain.EndpointID
}

func (s *stubEndpoint) ID() domain.EndpointID     { return s.id }
func (s *stubEndpoint) Send(_ domain.Event) error { return nil }
func (s *stubEndpoint) Close() error              { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *memory.RoomRegistry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := memory.NewRoomRegistry()
	health := monitoring.NewHealthChecker()
	health.AddCheck("registry", func(ctx context.Context) (bool, error) {
		registry.Stats(ctx)
		return true, nil
	}, time.Second)

	log := zap.NewNop()
	cl := logger.NewContextLogger(log)
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log.Sugar()))
	router.Use(middleware.RequestLoggerMiddleware(cl))
	router.Use(middleware.ErrorHandlerMiddleware(cl))

	handler := NewRoomHandler(registry, health, cl)
	handler.SetupRoutes(router)
	return router, registry
}

func TestListRooms(t *testing.T) {
	router, registry := newTestRouter(t)
	ctx := context.Background()

	_, _ = registry.Join(ctx, "lobby", "alice", &stubEndpoint{id: "e1"})
	_, _ = registry.Join(ctx, "lobby", "bob", &stubEndpoint{id: "e2"})
	_, _ = registry.Join(ctx, "standup", "carol", &stubEndpoint{id: "e3"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Rooms []domain.RoomInfo `json:"rooms"`
		Count int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, domain.RoomID("lobby"), resp.Rooms[0].RoomID)
	assert.Equal(t, 2, resp.Rooms[0].Participants)
}

func TestGetRoom(t *testing.T) {
	router, registry := newTestRouter(t)
	ctx := context.Background()

	_, _ = registry.Join(ctx, "lobby", "alice", &stubEndpoint{id: "e1"})
	_, _, _ = registry.SetMuted(ctx, "alice", true)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/rooms/lobby", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		RoomID       domain.RoomID        `json:"roomId"`
		Participants []domain.Participant `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Participants, 1)
	assert.Equal(t, domain.UserID("alice"), resp.Participants[0].UserID)
	assert.True(t, resp.Participants[0].IsMuted)
}

func TestGetRoom_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/rooms/ghost", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp["error"])
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var status monitoring.HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["registry"])
}
