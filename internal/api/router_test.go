package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recipe-planner/internal/infrastructure/config"
	"recipe-planner/internal/infrastructure/store/memory"
	"recipe-planner/internal/infrastructure/store/supabase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Debug: true, Version: "test"},
		Server: config.ServerConfig{
			MaxBodyBytes:   1 << 20,
			AllowedOrigins: []string{"*"},
		},
		Store:       config.StoreConfig{Driver: config.DriverMemory},
		Auth:        config.AuthConfig{AllowHeader: true},
		RateLimit:   config.RateLimitConfig{Enabled: true, Requests: 100, Window: time.Minute, Burst: 20},
		DedupWindow: time.Second,
	}
}

func serve(r http.Handler, method, path, body string, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, err := SetupRouter(testConfig(), memory.New())
	require.NoError(t, err)

	t.Run("health endpoints", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "", "").Code)
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ready", "", "").Code)
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/live", "", "").Code)
	})

	t.Run("request id", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/health", "", "")
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("api requires identity", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/shopping-list", "", "").Code)
	})

	t.Run("shopping list", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/api/v1/shopping-list/items", `{"name":"Bananas","amount":"6"}`, "router-user")
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"category":"Produce"`)

		w = serve(r, http.MethodGet, "/api/v1/shopping-list", "", "router-user")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Bananas")
	})

	t.Run("seeding routes", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/api/v1/recipes", `{"title":"Toast","ingredients":["2 slices bread"]}`, "router-user")
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/metrics", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "recipe_planner_list_mutations_total")
	})
}

func TestSetupRouterReadOnlyStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, err := supabase.New(supabase.Config{URL: "http://127.0.0.1:1", APIKey: "anon", Timeout: 200 * time.Millisecond})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Store.Driver = config.DriverSupabase
	r, err := SetupRouter(cfg, store)
	require.NoError(t, err)

	w := serve(r, http.MethodPost, "/api/v1/recipes", `{"title":"Toast"}`, "u1")
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = serve(r, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
