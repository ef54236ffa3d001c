package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tuition-center-api/internal/models"
	"github.com/noah-isme/tuition-center-api/internal/service"
)

type recordingAudit struct {
	logs []*models.AuditLog
}

func (r *recordingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func TestAuditRecordsSuccessfulWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := &recordingAudit{}
	r := gin.New()
	group := r.Group("/teachers", JWT(testTokens), Audit(audit, "teachers", nil))
	group.PUT("/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	group.POST("", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	group.GET("/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPut, "/teachers/t1", nil),
		httptest.NewRequest(http.MethodPost, "/teachers", nil),
		httptest.NewRequest(http.MethodGet, "/teachers/t1", nil),
	} {
		req.Header.Set("Authorization", "Bearer staff")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, audit.logs, 1)
	log := audit.logs[0]
	assert.Equal(t, models.AuditActionUpdate, log.Action)
	assert.Equal(t, "teachers", log.Resource)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "t1", *log.ResourceID)
	require.NotNil(t, log.UserID)
	assert.Equal(t, "s1", *log.UserID)
}

func TestAuditRecordsDeletes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := &recordingAudit{}
	r := gin.New()
	group := r.Group("/guardians", JWT(testTokens), Audit(audit, "guardians", nil))
	group.DELETE("/:id", func(c *gin.Context) {
		if c.Param("id") == "last" {
			c.Status(http.StatusConflict)
			return
		}
		c.Status(http.StatusNoContent)
	})

	for _, id := range []string{"g1", "last"} {
		req := httptest.NewRequest(http.MethodDelete, "/guardians/"+id, nil)
		req.Header.Set("Authorization", "Bearer staff")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionDelete, audit.logs[0].Action)
	require.NotNil(t, audit.logs[0].ResourceID)
	assert.Equal(t, "g1", *audit.logs[0].ResourceID)
}

func TestInvalidateOnWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	calls := 0
	r := gin.New()
	r.Use(InvalidateOnWrite(func(ctx context.Context) { calls++ }))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.DELETE("/x", func(c *gin.Context) { c.Status(http.StatusConflict) })

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, "/x", nil))
	}
	assert.Equal(t, 1, calls)
}

func TestResponseMetaCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/x", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, true, meta["cache_hit"])
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/students/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students/abc", nil))

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `path="/students/:id"`), body)
	assert.False(t, strings.Contains(body, "/students/abc"))
}
