package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error { return nil }

func down(msg string) Checker {
	return func(context.Context) error { return errors.New(msg) }
}

func ready(t *testing.T, h *Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLiveness_IgnoresDependencies(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("redis", down("dial tcp 127.0.0.1:6379: connection refused"))

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
	assert.False(t, resp.Timestamp.IsZero())
}

// The storefront registers its cart storage (redis or postgres) as critical
// and the event bus and search cluster as non-critical.
func TestReadiness_StorefrontDependencies(t *testing.T) {
	tests := []struct {
		name       string
		storage    Checker
		kafka      Checker
		search     Checker
		wantCode   int
		wantStatus Status
	}{
		{"all up", up, up, up, http.StatusOK, StatusUp},
		{"kafka down keeps serving carts", up, down("no leader for partition"), up, http.StatusOK, StatusDegraded},
		{"search down keeps serving carts", up, up, down("cluster red"), http.StatusOK, StatusDegraded},
		{"both optional down", up, down("no leader for partition"), down("cluster red"), http.StatusOK, StatusDegraded},
		{"cart storage down", down("connection refused"), up, up, http.StatusServiceUnavailable, StatusDown},
		{"everything down", down("connection refused"), down("no leader for partition"), down("cluster red"), http.StatusServiceUnavailable, StatusDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler()
			h.RegisterCritical("redis", tt.storage)
			h.RegisterNonCritical("kafka", tt.kafka)
			h.RegisterNonCritical("elasticsearch", tt.search)

			code, resp := ready(t, h)

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			require.Len(t, resp.Checks, 3)
			assert.True(t, resp.Checks["redis"].Critical)
			assert.False(t, resp.Checks["kafka"].Critical)
			assert.False(t, resp.Checks["elasticsearch"].Critical)
		})
	}
}

func TestReadiness_ReportsCheckError(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("postgres", down("FATAL: database \"storefront\" does not exist"))

	code, resp := ready(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, CheckResult{
		Status:   StatusDown,
		Critical: true,
		Error:    "FATAL: database \"storefront\" does not exist",
	}, resp.Checks["postgres"])
}

func TestReadiness_MemoryStorageHasNoChecks(t *testing.T) {
	code, resp := ready(t, NewHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestRegister_DefaultsToCriticalAndReplaces(t *testing.T) {
	h := NewHandler()
	h.Register("redis", down("connection refused"))

	code, _ := ready(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)

	h.RegisterNonCritical("redis", down("connection refused"))
	code, resp := ready(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusDegraded, resp.Status)
}

func TestReadiness_ChecksGetDeadline(t *testing.T) {
	h := NewHandler()
	var hadDeadline bool
	h.RegisterNonCritical("elasticsearch", func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	})

	ready(t, h)

	assert.True(t, hadDeadline)
}

func TestCheck_WithoutHTTP(t *testing.T) {
	h := NewHandler()
	h.RegisterNonCritical("kafka", down("no leader for partition"))

	resp := h.Check(context.Background())

	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, "no leader for partition", resp.Checks["kafka"].Error)
}
