package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveCORS(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	handler := CORS(cfg)(okHandler())
	req := httptest.NewRequest(method, "/api/v1/cart", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestCORS_AllowOrigin(t *testing.T) {
	prod := CORSConfig{
		AllowedOrigins: []string{"https://heressence.com", "https://www.heressence.com/"},
		Environment:    "production",
	}

	tests := []struct {
		name   string
		cfg    CORSConfig
		origin string
		want   string
	}{
		{"development allows any", CORSConfig{Environment: "development"}, "https://localhost:5500", "*"},
		{"wildcard in list", CORSConfig{AllowedOrigins: []string{"*"}, Environment: "production"}, "https://other.com", "*"},
		{"listed origin", prod, "https://heressence.com", "https://heressence.com"},
		{"trailing slash in config", prod, "https://www.heressence.com", "https://www.heressence.com"},
		{"unlisted origin", prod, "https://evil.com", ""},
		{"no origin header", prod, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveCORS(tt.cfg, http.MethodGet, tt.origin)
			assert.Equal(t, tt.want, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestCORS_ListedOriginSetsVary(t *testing.T) {
	rr := serveCORS(CORSConfig{AllowedOrigins: []string{"https://heressence.com"}}, http.MethodGet, "https://heressence.com")
	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
}

func TestCORS_PreflightReturns204WithoutCallingNext(t *testing.T) {
	called := false
	handler := CORS(DefaultCORSConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart/items/1", nil)
	req.Header.Set("Origin", "https://heressence.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.False(t, called)
}

func TestCORS_Defaults(t *testing.T) {
	rr := serveCORS(CORSConfig{Environment: "development"}, http.MethodGet, "")

	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "X-Cart-Session")
	assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_ExposedHeadersAndCredentials(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins:   []string{"https://heressence.com"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           600,
	}
	rr := serveCORS(cfg, http.MethodGet, "https://heressence.com")

	assert.Equal(t, "X-Correlation-ID", rr.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "600", rr.Header().Get("Access-Control-Max-Age"))
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Contains(t, cfg.AllowedHeaders, CartSessionHeader)
	assert.Equal(t, "development", cfg.Environment)
}
