package dedup

import (
	"context"
	"fmt"

	"foodcatalog/internal/domain/repositories"
	"foodcatalog/normalization"
)

// Ledger записывает результаты прохода кластеризации построчно.
// Каждая строка перезаписывается целиком и независимо от остальных;
// сбой одной строки попадает в итог прохода и не откатывает другие.
type Ledger struct {
	store ClusterFieldWriter
	retry normalization.RetryConfig
}

// NewLedger создает журнал кластеров
func NewLedger(store ClusterFieldWriter, retry normalization.RetryConfig) *Ledger {
	return &Ledger{store: store, retry: retry}
}

// ApplyClusteringPass перезаписывает cluster_id и cluster_count для каждой строки прохода.
// Повторное применение того же результата не меняет состояние.
func (l *Ledger) ApplyClusteringPass(ctx context.Context, assignments []repositories.ClusterAssignment) (*PassSummary, error) {
	if len(assignments) == 0 {
		return nil, ErrEmptyBatch
	}

	summary := &PassSummary{Total: len(assignments), Failures: []RowFailure{}}
	for _, a := range assignments {
		if err := l.applyRow(ctx, a); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, RowFailure{ID: a.ID, Error: err.Error(), Err: err})
			continue
		}
		summary.Updated++
	}

	return summary, nil
}

func (l *Ledger) applyRow(ctx context.Context, a repositories.ClusterAssignment) error {
	if a.ID <= 0 {
		return fmt.Errorf("%w: id %d", ErrInvalidProductID, a.ID)
	}

	a = normalizeAssignment(a)
	if a.ClusterCount < 1 {
		return fmt.Errorf("%w: cluster_count %d for cluster %d", ErrInvalidAssignment, a.ClusterCount, a.ClusterID)
	}

	var updated bool
	err := normalization.Retry(ctx, func() error {
		var err error
		updated, err = l.store.UpdateClusterFields(ctx, a)
		return err
	}, l.retry, normalization.RetryOn(ErrStoreUnavailable))
	if err != nil {
		return fmt.Errorf("failed to update cluster fields for product %d: %w", a.ID, err)
	}
	if !updated {
		return fmt.Errorf("%w: id %d", ErrProductNotFound, a.ID)
	}
	return nil
}

// normalizeAssignment приводит любую отрицательную метку к -1 с размером группы 1
func normalizeAssignment(a repositories.ClusterAssignment) repositories.ClusterAssignment {
	if a.ClusterID < 0 {
		a.ClusterID = repositories.NoCluster
		a.ClusterCount = 1
	}
	return a
}
