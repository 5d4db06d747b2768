package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bible-studies-api/internal/service"
	"github.com/noah-isme/bible-studies-api/pkg/middleware/requestid"
)

func TestWithResponseMetaCarriesRequestIDAndCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(requestid.Middleware(), WithResponseMeta())
	r.GET("/options", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, ExtractMeta(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/options", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, "req-42", meta["request_id"])
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestSetCacheHitWithoutMetaMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, ExtractMeta(c))
	SetCacheHit(c, false)
	meta := ExtractMeta(c)
	require.NotNil(t, meta)
	assert.Equal(t, false, meta["cache_hit"])
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/metrics"))
	r.GET("/lecturers/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	for _, path := range []string{"/lecturers/a", "/lecturers/b", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `http_requests_total{method="GET",path="/lecturers/:id",status="200"} 2`), body)
	assert.True(t, strings.Contains(body, `path="unmatched",status="404"`), body)
	assert.False(t, strings.Contains(body, `path="/metrics"`))
	assert.Equal(t, uint64(3), metrics.Snapshot().RequestsTotal)
}
