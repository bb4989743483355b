package dedup

import (
	"context"
	"sync"
	"time"

	"foodcatalog/internal/infrastructure/logging"
)

// Phase фаза триггера поступления данных
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseReconciling
)

func (p Phase) String() string {
	switch p {
	case PhaseReconciling:
		return "reconciling"
	default:
		return "idle"
	}
}

// TriggerState состояние триггера. Значение передается явно, глобального состояния нет.
type TriggerState struct {
	Phase     Phase
	LastCount int64
	Primed    bool
}

// Observe переход по очередному наблюдению размера каталога.
// Первое наблюдение только запоминает базу. Рост переводит в Reconciling
// и требует прохода. Уменьшение или отсутствие изменений проход не вызывает,
// база следует за последним наблюдением.
func Observe(state TriggerState, count int64) (TriggerState, bool) {
	if !state.Primed {
		return TriggerState{Phase: PhaseIdle, LastCount: count, Primed: true}, false
	}
	if count > state.LastCount {
		return TriggerState{Phase: PhaseReconciling, LastCount: count, Primed: true}, true
	}
	return TriggerState{Phase: state.Phase, LastCount: count, Primed: true}, false
}

// Settle возвращает триггер в Idle после прохода
func Settle(state TriggerState) TriggerState {
	state.Phase = PhaseIdle
	return state
}

// Abort возвращает триггер в Idle после неудачного прохода и восстанавливает
// прежнюю базу, чтобы следующее наблюдение того же размера снова запустило проход
func Abort(state TriggerState, baseline int64) TriggerState {
	state.Phase = PhaseIdle
	state.LastCount = baseline
	return state
}

// Counter источник размера каталога
type Counter interface {
	CountProducts(ctx context.Context) (int64, error)
}

// PassRunner выполняет проход кластеризации
type PassRunner interface {
	RunPass(ctx context.Context) (*PassResult, error)
}

// Poller периодически сравнивает размер каталога и запускает проход при росте
type Poller struct {
	counter  Counter
	runner   PassRunner
	interval time.Duration
	logger   *logging.Logger

	mu    sync.Mutex
	state TriggerState
}

// NewPoller создает опросчик
func NewPoller(counter Counter, runner PassRunner, interval time.Duration, logger *logging.Logger) *Poller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Poller{counter: counter, runner: runner, interval: interval, logger: logger}
}

// State текущее состояние триггера
func (p *Poller) State() TriggerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Run опрашивает каталог до отмены ctx
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("ingestion poller stopped")
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick одно наблюдение. Возвращает true, если был запущен проход.
func (p *Poller) Tick(ctx context.Context) bool {
	count, err := p.counter.CountProducts(ctx)
	if err != nil {
		p.logger.Warn("count products failed, tick skipped", "error", err)
		return false
	}

	p.mu.Lock()
	baseline := p.state.LastCount
	next, fire := Observe(p.state, count)
	p.state = next
	p.mu.Unlock()
	if !fire {
		return false
	}

	p.logger.Info("catalog grew, starting clustering pass", "count", count, "phase", next.Phase.String())
	_, err = p.runner.RunPass(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.logger.Error("clustering pass failed, will retry on next tick", "error", err, "baseline", baseline)
		p.state = Abort(p.state, baseline)
		return true
	}
	p.state = Settle(p.state)
	return true
}
