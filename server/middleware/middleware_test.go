package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dedupdomain "foodcatalog/internal/domain/dedup"
	"foodcatalog/internal/infrastructure/logging"
	apperrors "foodcatalog/server/errors"
)

var _ HTTPError = (*apperrors.AppError)(nil)

// setupGinTestRouter создает тестовый Gin роутер
func setupGinTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	router := setupGinTestRouter()
	router.Use(RequestID())
	var fromCtx string
	router.GET("/test", func(c *gin.Context) {
		fromCtx = logging.RequestID(c.Request.Context())
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		id := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, w.Body.String())
		assert.Equal(t, id, fromCtx)
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", fromCtx)
	})
}

func TestErrorResponder(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", fmt.Errorf("get: %w", dedupdomain.ErrProductNotFound), http.StatusNotFound},
		{"validation", dedupdomain.ErrSelfLink, http.StatusBadRequest},
		{"store", dedupdomain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"clustering", dedupdomain.ErrClusteringFailure, http.StatusUnprocessableEntity},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responder := NewErrorResponder(nil, nil)
			router := setupGinTestRouter()
			router.Use(RequestID())
			router.GET("/products/:id", func(c *gin.Context) {
				responder.Respond(c, tt.err)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/5", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			body := decodeError(t, w)
			assert.True(t, body.Error)
			assert.NotEmpty(t, body.Message)
			assert.Equal(t, w.Header().Get(RequestIDHeader), body.RequestID)

			snap := responder.Stats().Snapshot()
			assert.Equal(t, int64(1), snap.Total)
			assert.Equal(t, int64(1), snap.ByEndpoint["/products/:id"])
		})
	}
}

func TestRecovery(t *testing.T) {
	router := setupGinTestRouter()
	router.Use(RequestID(), Recovery(nil))
	router.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Internal server error", body.Message)
}

func TestCORS(t *testing.T) {
	t.Run("all origins", func(t *testing.T) {
		router := setupGinTestRouter()
		router.Use(CORS([]string{"*"}))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "http://dashboard.local")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("listed origin", func(t *testing.T) {
		router := setupGinTestRouter()
		router.Use(CORS([]string{"http://localhost:3000"}))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "http://evil.local")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	router := setupGinTestRouter()
	router.Use(RequestID())
	router.POST("/recluster", RateLimit(NewPerMinuteLimiter(2), NewErrorResponder(nil, nil)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recluster", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestLoggerDoesNotAlterResponse(t *testing.T) {
	router := setupGinTestRouter()
	router.Use(RequestID(), Logger(nil), Gzip())
	router.GET("/test", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}
