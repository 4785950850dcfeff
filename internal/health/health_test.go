// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vidresolve/internal/config"
)

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string { return m.name }

func (m *mockChecker) Check(context.Context) CheckResult {
	return CheckResult{Status: m.status}
}

func TestManager_Health(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "healthy", status: StatusHealthy})
	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.GreaterOrEqual(t, resp.Uptime, int64(0))
	assert.Nil(t, resp.Checks, "non-verbose liveness does not run checks")

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestManager_Ready(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []Status
		wantReady bool
		want      Status
	}{
		{"no checkers", nil, true, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, true, StatusHealthy},
		{"degraded is ready", []Status{StatusHealthy, StatusDegraded}, true, StatusDegraded},
		{"unhealthy wins over degraded", []Status{StatusUnhealthy, StatusDegraded}, false, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("v1")
			for i, s := range tt.statuses {
				m.RegisterChecker(&mockChecker{name: string(rune('a' + i)), status: s})
			}
			resp := m.Ready(context.Background())
			assert.Equal(t, tt.wantReady, resp.Ready)
			assert.Equal(t, tt.want, resp.Status)
		})
	}
}

func TestManager_DrainingFailsReadiness(t *testing.T) {
	m := NewManager("v1")
	require.True(t, m.Ready(context.Background()).Ready)

	m.MarkDraining()
	resp := m.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Equal(t, "draining", resp.Checks["shutdown"].Message)

	assert.Equal(t, StatusHealthy, m.Health(context.Background(), false).Status, "liveness is unaffected")
}

func TestManager_ServeEndpoints(t *testing.T) {
	m := NewManager("v1")
	m.RegisterChecker(&mockChecker{name: "redis", status: StatusUnhealthy})

	rec := httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Ready)
	assert.Equal(t, StatusUnhealthy, body.Checks["redis"].Status)
}

func TestPingChecker(t *testing.T) {
	ok := NewPingChecker("dep", func(context.Context) error { return nil }, 0, false)
	assert.Equal(t, StatusHealthy, ok.Check(context.Background()).Status)

	boom := errors.New("boom")
	required := NewPingChecker("dep", func(context.Context) error { return boom }, time.Second, false)
	res := required.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "boom", res.Error)

	optional := NewPingChecker("dep", func(context.Context) error { return boom }, time.Second, true)
	assert.Equal(t, StatusDegraded, optional.Check(context.Background()).Status)
}

func TestPingChecker_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := NewPingChecker("redis", func(ctx context.Context) error { return client.Ping(ctx).Err() }, time.Second, false)
	assert.Equal(t, StatusHealthy, c.Check(context.Background()).Status)

	mr.SetError("LOADING")
	assert.Equal(t, StatusUnhealthy, c.Check(context.Background()).Status)
}

func TestGaugeChecker(t *testing.T) {
	n := 3
	c := NewGaugeChecker("sessions", "active", func() int { return n })
	res := c.Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, "active=3", res.Message)
}

func TestPerformStartupChecks(t *testing.T) {
	cfg := config.Default()
	cfg.API.ListenAddr = "127.0.0.1:0"
	require.NoError(t, PerformStartupChecks(context.Background(), cfg))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	cfg.API.ListenAddr = ln.Addr().String()
	assert.ErrorContains(t, PerformStartupChecks(context.Background(), cfg), "cannot bind")
}
