package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"foodcatalog/internal/infrastructure/logging"
)

const (
	// RequestIDHeader заголовок запроса и ответа с request ID
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID добавляет уникальный request ID к каждому запросу
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Генерируем или получаем request ID из заголовка
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		c.Set(requestIDKey, reqID)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), reqID))
		c.Header(RequestIDHeader, reqID)

		c.Next()
	}
}

// GetRequestID извлекает request ID из Gin context
func GetRequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Get(requestIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
