package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"foodcatalog/internal/infrastructure/logging"
	apperrors "foodcatalog/server/errors"
)

// HTTPError ошибка с HTTP статусом и сообщением для пользователя
type HTTPError interface {
	error
	StatusCode() int
	UserMessage() string
	Unwrap() error
}

// ErrorResponse тело ответа об ошибке
type ErrorResponse struct {
	Error     bool   `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponder пишет ошибки в едином формате, логирует и считает их
type ErrorResponder struct {
	logger *logging.Logger
	stats  *apperrors.ErrorStats
}

// NewErrorResponder создает обработчик ошибок
func NewErrorResponder(logger *logging.Logger, stats *apperrors.ErrorStats) *ErrorResponder {
	if logger == nil {
		logger = logging.NewNop()
	}
	if stats == nil {
		stats = apperrors.NewErrorStats(0)
	}
	return &ErrorResponder{logger: logger, stats: stats}
}

// Stats счетчики ошибок
func (r *ErrorResponder) Stats() *apperrors.ErrorStats {
	return r.stats
}

// Respond классифицирует ошибку и отправляет JSON ответ
func (r *ErrorResponder) Respond(c *gin.Context, err error) {
	appErr := apperrors.FromDomain(err)
	reqID := GetRequestID(c)
	r.stats.Record(appErr, c.FullPath(), reqID)

	log := r.logger.WithContext(c.Request.Context())
	fields := []interface{}{
		"status_code", appErr.StatusCode(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err,
	}
	if appErr.Context != "" {
		fields = append(fields, "context", appErr.Context)
	}
	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Error("HTTP error", fields...)
	} else {
		log.Warn("HTTP error", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.StatusCode(), ErrorResponse{
		Error:     true,
		Message:   appErr.UserMessage(),
		RequestID: reqID,
	})
}

// Recovery обрабатывает паники и отвечает 500
func Recovery(logger *logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNop()
	}
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				reqID := GetRequestID(c)
				logger.Error("panic recovered",
					"panic", rec,
					"stack", string(debug.Stack()),
					"request_id", reqID,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:     true,
					Message:   "Internal server error",
					RequestID: reqID,
				})
			}
		}()
		c.Next()
	}
}
