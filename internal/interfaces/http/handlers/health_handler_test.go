package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Liveness(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/healthz", NewHealthHandler().Liveness)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler_ReadinessAllHealthy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(
		HealthCheckFunc{CheckName: "postgres", Check: func(*gin.Context) error { return nil }},
		HealthCheckFunc{CheckName: "redis", Check: func(*gin.Context) error { return nil }},
	)
	engine := gin.New()
	engine.GET("/readyz", h.Readiness)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "ok", resp.Checks["postgres"])
}

func TestHealthHandler_ReadinessDegraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(
		HealthCheckFunc{CheckName: "postgres", Check: func(*gin.Context) error { return nil }},
		HealthCheckFunc{CheckName: "redis", Check: func(*gin.Context) error { return assert.AnError }},
	)
	engine := gin.New()
	engine.GET("/readyz", h.Readiness)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "ok", resp.Checks["postgres"])
	assert.NotEqual(t, "ok", resp.Checks["redis"])
}
