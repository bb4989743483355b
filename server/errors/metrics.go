package errors

import (
	"sync"
	"time"
)

// ErrorRecord запись об ошибке ответа
type ErrorRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Code      int       `json:"code"`
	Message   string    `json:"message"`
	Endpoint  string    `json:"endpoint"`
	RequestID string    `json:"request_id,omitempty"`
}

// ErrorStats счетчики ошибок HTTP ответов для /health
type ErrorStats struct {
	mu sync.RWMutex

	total      int64
	byCode     map[int]int64
	byEndpoint map[string]int64
	last       []ErrorRecord
	maxLast    int
	startTime  time.Time
}

// ErrorStatsSnapshot копия счетчиков
type ErrorStatsSnapshot struct {
	Total         int64            `json:"total"`
	ByCode        map[int]int64    `json:"by_code"`
	ByEndpoint    map[string]int64 `json:"by_endpoint"`
	Last          []ErrorRecord    `json:"last"`
	UptimeSeconds float64          `json:"uptime_seconds"`
}

// NewErrorStats создает счетчики, хранящие maxLast последних ошибок
func NewErrorStats(maxLast int) *ErrorStats {
	if maxLast <= 0 {
		maxLast = 20
	}
	return &ErrorStats{
		byCode:     make(map[int]int64),
		byEndpoint: make(map[string]int64),
		maxLast:    maxLast,
		startTime:  time.Now(),
	}
}

// Record учитывает ошибку
func (s *ErrorStats) Record(err *AppError, endpoint, requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	s.byCode[err.Code]++
	if endpoint != "" {
		s.byEndpoint[endpoint]++
	}

	record := ErrorRecord{
		Timestamp: time.Now(),
		Code:      err.Code,
		Message:   err.UserMessage(),
		Endpoint:  endpoint,
		RequestID: requestID,
	}
	s.last = append([]ErrorRecord{record}, s.last...)
	if len(s.last) > s.maxLast {
		s.last = s.last[:s.maxLast]
	}
}

// Snapshot возвращает копию счетчиков
func (s *ErrorStats) Snapshot() ErrorStatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := ErrorStatsSnapshot{
		Total:         s.total,
		ByCode:        make(map[int]int64, len(s.byCode)),
		ByEndpoint:    make(map[string]int64, len(s.byEndpoint)),
		Last:          make([]ErrorRecord, len(s.last)),
		UptimeSeconds: time.Since(s.startTime).Seconds(),
	}
	for k, v := range s.byCode {
		snap.ByCode[k] = v
	}
	for k, v := range s.byEndpoint {
		snap.ByEndpoint[k] = v
	}
	copy(snap.Last, s.last)
	return snap
}
