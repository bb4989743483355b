package normalization

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	// DefaultRetryAttempts количество попыток повтора по умолчанию
	DefaultRetryAttempts = 3
	// DefaultRetryDelay задержка между попытками по умолчанию
	DefaultRetryDelay = 100 * time.Millisecond
	// MaxRetryDelay максимальная задержка между попытками
	MaxRetryDelay = 2 * time.Second
)

// RetryConfig конфигурация для retry логики
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64 // Множитель для экспоненциальной задержки
}

// DefaultRetryConfig возвращает конфигурацию retry по умолчанию
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultRetryAttempts,
		InitialDelay: DefaultRetryDelay,
		MaxDelay:     MaxRetryDelay,
		Multiplier:   2.0,
	}
}

// RetryableFunc функция, которую можно повторить при ошибке
type RetryableFunc func() error

// RetryPredicate решает, стоит ли повторять операцию после ошибки
type RetryPredicate func(err error) bool

// IsRetryableError проверяет сообщение ошибки на типичные временные сбои sqlite
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryableErrors := []string{
		"database is locked",
		"busy",
		"timeout",
		"connection",
		"temporary",
		"deadline exceeded",
	}

	for _, retryable := range retryableErrors {
		if strings.Contains(errStr, retryable) {
			return true
		}
	}

	return false
}

// RetryOn возвращает предикат, повторяющий операцию для любой из заданных ошибок
func RetryOn(targets ...error) RetryPredicate {
	return func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return IsRetryableError(err)
	}
}

// Retry выполняет функцию с retry логикой и экспоненциальной задержкой.
// Ожидание прерывается отменой контекста.
func Retry(ctx context.Context, fn RetryableFunc, config RetryConfig, retryable RetryPredicate) error {
	if retryable == nil {
		retryable = IsRetryableError
	}
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if !retryable(err) || attempt == attempts {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}

		// Увеличиваем задержку экспоненциально
		delay = time.Duration(float64(delay) * config.Multiplier)
		if config.MaxDelay > 0 && delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return lastErr
}
