package errors

import (
	"errors"
	"fmt"
	"net/http"

	dedupdomain "foodcatalog/internal/domain/dedup"
)

// AppError ошибка приложения с HTTP статусом и контекстом
type AppError struct {
	Code    int    `json:"status_code"` // HTTP статус код
	Message string `json:"message"`     // Сообщение для пользователя
	Err     error  `json:"-"`           // Внутренняя ошибка для логов, не сериализуется
	Context string `json:"-"`           // Операция, на которой произошла ошибка
}

// Error реализует интерфейс error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap возвращает вложенную ошибку для errors.Is и errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode возвращает HTTP статус код ошибки
func (e *AppError) StatusCode() int {
	return e.Code
}

// UserMessage возвращает сообщение для пользователя
func (e *AppError) UserMessage() string {
	return e.Message
}

// WithContext добавляет контекст к ошибке
func (e *AppError) WithContext(context string) *AppError {
	e.Context = context
	return e
}

func newAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError создает ошибку 404 Not Found
func NewNotFoundError(message string, err error) *AppError {
	return newAppError(http.StatusNotFound, message, err)
}

// NewValidationError создает ошибку 400 Bad Request
func NewValidationError(message string, err error) *AppError {
	return newAppError(http.StatusBadRequest, message, err)
}

// NewUnprocessableError создает ошибку 422 для пакета, который не удалось кластеризовать
func NewUnprocessableError(message string, err error) *AppError {
	return newAppError(http.StatusUnprocessableEntity, message, err)
}

// NewServiceUnavailableError создает ошибку 503 Service Unavailable
func NewServiceUnavailableError(message string, err error) *AppError {
	return newAppError(http.StatusServiceUnavailable, message, err)
}

// NewTooManyRequestsError создает ошибку 429
func NewTooManyRequestsError(message string) *AppError {
	return newAppError(http.StatusTooManyRequests, message, nil)
}

// NewInternalError создает ошибку 500 Internal Server Error.
// Пользователь видит общее сообщение, детали только в логах.
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "Internal server error",
		Err:     errors.Join(errors.New(message), err),
	}
}

// WrapError оборачивает существующую ошибку с контекстом.
// Если ошибка уже AppError, сохраняет ее статус, иначе классифицирует через FromDomain.
func WrapError(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
			Context: appErr.Context,
		}
	}

	return FromDomain(err).WithContext(message)
}

// FromDomain переводит доменную ошибку в HTTP ответ по ее классу
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, dedupdomain.ErrNotFound):
		return NewNotFoundError(rootMessage(err), err)
	case errors.Is(err, dedupdomain.ErrValidationFailure):
		return NewValidationError(rootMessage(err), err)
	case errors.Is(err, dedupdomain.ErrStoreUnavailable):
		return NewServiceUnavailableError("Product store is temporarily unavailable", err)
	case errors.Is(err, dedupdomain.ErrClusteringFailure):
		return NewUnprocessableError("Products could not be clustered", err)
	default:
		return NewInternalError("unclassified error", err)
	}
}

// rootMessage сообщение доменной ошибки без префиксов use case
func rootMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		dedupdomain.ErrSourceVerified,
		dedupdomain.ErrSourceAlreadyLinked,
		dedupdomain.ErrSelfLink,
		dedupdomain.ErrEmptyBatch,
		dedupdomain.ErrInvalidAssignment,
		dedupdomain.ErrLinkedProductVerify,
		dedupdomain.ErrInvalidProductID,
		dedupdomain.ErrTargetNotFound,
		dedupdomain.ErrProductNotFound,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return msg
}
