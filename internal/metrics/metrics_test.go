package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddleware_RecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/api/books/id/:bookId", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/books/id/deep-work", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	body := scrape(t)
	assert.Contains(t, body, `bookbrief_http_requests_total{method="GET",path="/api/books/id/:bookId",status="204"}`)
	assert.Contains(t, body, `path="unmatched"`)
	assert.NotContains(t, body, "deep-work")
}

func TestTaskDone(t *testing.T) {
	TaskDone("purge_deleted_books", nil)
	TaskDone("purge_deleted_books", errors.New("boom"))

	body := scrape(t)
	assert.Contains(t, body, `bookbrief_tasks_processed_total{status="success",task="purge_deleted_books"}`)
	assert.Contains(t, body, `bookbrief_tasks_processed_total{status="failed",task="purge_deleted_books"}`)
}
