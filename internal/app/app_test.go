package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShadEl7/her-essence-website/internal/config"
	"github.com/ShadEl7/her-essence-website/internal/domain"
	"github.com/ShadEl7/her-essence-website/pkg/database"
	"github.com/ShadEl7/her-essence-website/pkg/logger"
	"github.com/ShadEl7/her-essence-website/pkg/middleware"
)

func newApp(t *testing.T) *App {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)

	a, err := NewApp(cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a
}

func addItem(t *testing.T, h http.Handler, session, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.CartSessionHeader, session)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewApp_MemoryBackends(t *testing.T) {
	a := newApp(t)
	h := a.Handler()

	rec := addItem(t, h, uuid.NewString(), `{"id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Elegant Evening Dress")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/search?q=dress", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Elegant Evening Dress")

	req = httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewApp_RedisBackendPersistsCart(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("CART_TTL_HOURS", "24")

	a := newApp(t)
	session := uuid.NewString()

	rec := addItem(t, a.Handler(), session, `{"id":"2"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	raw, err := mr.Get("cartItems:" + session)
	require.NoError(t, err)

	var items domain.Items
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	require.Len(t, items, 1)
	assert.Equal(t, domain.ItemID("2"), items[0].ID)
	assert.Equal(t, int64(14900), items[0].Price)
	assert.Positive(t, mr.TTL("cartItems:"+session))
}

func TestNewApp_RemoteTrackingForwardsLookups(t *testing.T) {
	var paths []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"orderNumber":"HER-9","status":"shipped","lastUpdate":"today"}`))
	}))
	t.Cleanup(upstream.Close)

	t.Setenv("TRACKING_BACKEND", "remote")
	t.Setenv("TRACKING_REMOTE_URL", upstream.URL)
	a := newApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/order-status/HER-9", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"shipped"`)
	assert.Equal(t, []string{"/api/order-status/HER-9"}, paths)
}

func TestNewApp_ConfiguresSlowQueryLogging(t *testing.T) {
	t.Cleanup(func() { database.SetSlowQueryLogging(0, nil) })
	t.Setenv("POSTGRES_SLOW_QUERY_MS", "75")

	newApp(t)

	assert.Equal(t, 75*time.Millisecond, database.SlowQueryThreshold())
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", addr)

	cfg, err := config.Load()
	require.NoError(t, err)

	a, err := NewApp(cfg, logger.Discard())
	assert.Nil(t, a)
	assert.ErrorContains(t, err, "connect to redis")
}

func TestNewApp_UnknownCheckoutProvider(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.CheckoutProvider = "stripe"

	_, err = NewApp(cfg, logger.Discard())
	assert.ErrorContains(t, err, `unknown checkout provider "stripe"`)
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Setenv("HTTP_PORT", "38517")
	a := newApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, a.Run(ctx))
}
