package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "foodcatalog/server/errors"
)

// NewPerMinuteLimiter ограничитель на perMinute запросов в минуту
func NewPerMinuteLimiter(perMinute int) *rate.Limiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

// RateLimit отклоняет запросы сверх лимита ответом 429
func RateLimit(limiter *rate.Limiter, responder *ErrorResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "60")
			responder.Respond(c, apperrors.NewTooManyRequestsError("Too many re-clustering requests"))
			return
		}
		c.Next()
	}
}
