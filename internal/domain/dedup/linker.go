package dedup

import (
	"context"
	"fmt"

	"foodcatalog/internal/domain/repositories"
	"foodcatalog/normalization"
)

// Linker протокол объединения дубликатов.
// Связать можно только непроверенную (active=0) и еще не связанную строку;
// ссылка всегда указывает ровно на один шаг.
type Linker struct {
	store LinkStore
	retry normalization.RetryConfig
}

// NewLinker создает протокол связывания
func NewLinker(store LinkStore, retry normalization.RetryConfig) *Linker {
	return &Linker{store: store, retry: retry}
}

// Link помечает sourceID как дубликат targetID (link_to = targetID)
func (l *Linker) Link(ctx context.Context, sourceID, targetID int64) (*LinkOutcome, error) {
	if sourceID <= 0 || targetID <= 0 {
		return nil, fmt.Errorf("%w: source %d, target %d", ErrInvalidProductID, sourceID, targetID)
	}
	if sourceID == targetID {
		return nil, fmt.Errorf("%w: id %d", ErrSelfLink, sourceID)
	}

	source, err := l.get(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, sourceID)
	}
	if err := checkLinkable(source); err != nil {
		return nil, err
	}

	target, err := l.get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%w: id %d", ErrTargetNotFound, targetID)
	}

	var updated bool
	err = l.withRetry(ctx, func() error {
		var err error
		updated, err = l.store.SetLinkTo(ctx, sourceID, targetID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to link product %d to %d: %w", sourceID, targetID, err)
	}
	if !updated {
		// строка изменилась между чтением и записью
		return nil, l.explainRejected(ctx, sourceID, checkLinkable)
	}

	id := sourceID
	return &LinkOutcome{SourceID: sourceID, TargetID: targetID, Success: true, UpdatedID: &id}, nil
}

// LinkMany связывает набор строк с одной целью. Каждая строка обрабатывается
// независимо, результат возвращается по каждой строке. Повторы id обрабатываются один раз.
func (l *Linker) LinkMany(ctx context.Context, targetID int64, sourceIDs []int64) ([]LinkOutcome, error) {
	if len(sourceIDs) == 0 {
		return nil, ErrEmptyBatch
	}

	seen := make(map[int64]bool, len(sourceIDs))
	outcomes := make([]LinkOutcome, 0, len(sourceIDs))
	for _, sourceID := range sourceIDs {
		if seen[sourceID] {
			continue
		}
		seen[sourceID] = true

		outcome, err := l.Link(ctx, sourceID, targetID)
		if err != nil {
			outcomes = append(outcomes, LinkOutcome{
				SourceID: sourceID,
				TargetID: targetID,
				Error:    err.Error(),
				Err:      err,
			})
			continue
		}
		outcomes = append(outcomes, *outcome)
	}

	return outcomes, nil
}

// Verify помечает строку как проверенную каноническую запись (active = 1).
// Связанную строку проверить нельзя. Повторная проверка ничего не меняет.
func (l *Linker) Verify(ctx context.Context, id int64) (*repositories.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id %d", ErrInvalidProductID, id)
	}

	product, err := l.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}
	if err := checkVerifiable(product); err != nil {
		return nil, err
	}
	if product.IsVerified() {
		return product, nil
	}

	var updated bool
	err = l.withRetry(ctx, func() error {
		var err error
		updated, err = l.store.SetActive(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify product %d: %w", id, err)
	}
	if !updated {
		return nil, l.explainRejected(ctx, id, checkVerifiable)
	}

	product.Active = 1
	return product, nil
}

func checkLinkable(p *repositories.Product) error {
	if p.Active != 0 {
		return fmt.Errorf("%w: id %d", ErrSourceVerified, p.ID)
	}
	if p.LinkTo != nil {
		return fmt.Errorf("%w: id %d links to %d", ErrSourceAlreadyLinked, p.ID, *p.LinkTo)
	}
	return nil
}

func checkVerifiable(p *repositories.Product) error {
	if p.LinkTo != nil {
		return fmt.Errorf("%w: id %d links to %d", ErrLinkedProductVerify, p.ID, *p.LinkTo)
	}
	return nil
}

// explainRejected перечитывает строку после отклоненного условного обновления
func (l *Linker) explainRejected(ctx context.Context, id int64, check func(*repositories.Product) error) error {
	current, err := l.get(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}
	if err := check(current); err != nil {
		return err
	}
	return fmt.Errorf("%w: concurrent update of product %d", ErrValidationFailure, id)
}

func (l *Linker) get(ctx context.Context, id int64) (*repositories.Product, error) {
	var product *repositories.Product
	err := l.withRetry(ctx, func() error {
		var err error
		product, err = l.store.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return product, nil
}

func (l *Linker) withRetry(ctx context.Context, fn normalization.RetryableFunc) error {
	return normalization.Retry(ctx, fn, l.retry, normalization.RetryOn(ErrStoreUnavailable))
}
