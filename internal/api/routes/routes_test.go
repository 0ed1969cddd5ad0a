package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gatewarden/gatewarden/internal/clock"
	"github.com/gatewarden/gatewarden/internal/config"
	"github.com/gatewarden/gatewarden/internal/models"
	"github.com/gatewarden/gatewarden/internal/pipeline"
	"github.com/gatewarden/gatewarden/internal/ratelimit"
	"github.com/gatewarden/gatewarden/internal/services"
	"github.com/gatewarden/gatewarden/internal/waf"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Domain{}, &models.SecurityLog{}, &models.AttackPattern{}))

	cfg := config.Config{
		Environment:    "test",
		ExemptPrefixes: []string{"/admin", "/health", "/metrics"},
		AdminPassword:  "hunter2",
		JWTSecret:      "test-secret",
	}

	vc := clock.NewVirtual(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 100, time.Hour, vc)
	audit := services.NewAuditService(db)
	t.Cleanup(audit.Close)

	p := pipeline.New(limiter, waf.NewInspector(waf.DefaultCatalog(), 0), audit, cfg.ExemptPrefixes, vc)

	router := gin.New()
	require.NoError(t, Register(router, cfg, Deps{
		DB:       db,
		Limiter:  limiter,
		Pipeline: p,
		Audit:    audit,
	}))
	return router
}

func login(t *testing.T, router *gin.Engine) string {
	t.Helper()
	req := httptest.NewRequest("POST", "/admin/login", strings.NewReader(`{"password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["access_token"])
	return body["access_token"]
}

func TestRoutes_Health(t *testing.T) {
	router := newTestEngine(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRoutes_Metrics(t *testing.T) {
	router := newTestEngine(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gatewarden_requests_total")
}

func TestRoutes_LoginRejectsWrongPassword(t *testing.T) {
	router := newTestEngine(t)

	req := httptest.NewRequest("POST", "/admin/login", strings.NewReader(`{"password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_AdminRequiresToken(t *testing.T) {
	router := newTestEngine(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/domains", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_DomainLifecycle(t *testing.T) {
	router := newTestEngine(t)
	token := login(t, router)

	create := httptest.NewRequest("POST", "/admin/domains",
		strings.NewReader(`{"domain_name":"example.local","target_url":"http://127.0.0.1:8081"}`))
	create.Header.Set("Content-Type", "application/json")
	create.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, create)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Domain
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.UUID)
	assert.Equal(t, 1000, created.RateLimit)

	list := httptest.NewRequest("GET", "/admin/domains", nil)
	list.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, list)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "example.local")

	del := httptest.NewRequest("DELETE", "/admin/domains/"+created.UUID, nil)
	del.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, del)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_WAFBlocksNonExemptPath(t *testing.T) {
	router := newTestEngine(t)

	req := httptest.NewRequest("GET", "/app?q=union%20select%201", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.RemoteAddr = "203.0.113.7:1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "SQL Injection")
}
