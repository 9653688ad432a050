package monitoring

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckAllReportsPerCheckResults(t *testing.T) {
	h := NewHealthChecker()
	h.AddCheck("registry", func(ctx context.Context) (bool, error) {
		return true, nil
	}, time.Second)
	h.AddCheck("connections", func(ctx context.Context) (bool, error) {
		return false, fmt.Errorf("too many connections")
	}, time.Second)

	status := h.CheckAll(context.Background())

	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["registry"])
	assert.Equal(t, "too many connections", status.Checks["connections"])
	assert.False(t, status.Timestamp.IsZero())
}

func TestStatusFallsBackToInlineCheck(t *testing.T) {
	h := NewHealthChecker()
	h.AddCheck("registry", func(ctx context.Context) (bool, error) {
		return true, nil
	}, time.Second)

	// No background loop has run yet.
	status := h.Status(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["registry"])
}

func TestRunRefreshesCachedStatus(t *testing.T) {
	h := NewHealthChecker()
	h.AddCheck("registry", func(ctx context.Context) (bool, error) {
		return true, nil
	}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		h.statusMu.RLock()
		defer h.statusMu.RUnlock()
		return !h.lastStatus.Timestamp.IsZero()
	}, time.Second, 5*time.Millisecond)

	status := h.Status(context.Background())
	assert.Equal(t, "healthy", status.Status)
}
