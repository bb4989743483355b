package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	dedupdomain "foodcatalog/internal/domain/dedup"
	"foodcatalog/internal/domain/repositories"
	"foodcatalog/internal/infrastructure/logging"
	"foodcatalog/normalization/algorithms"
)

const passKey = "clustering-pass"

// Options параметры проходов кластеризации
type Options struct {
	TextFields []string
	Workers    int
}

// UseCase координирует каталог: выборки, проходы кластеризации и связывание
type UseCase struct {
	repo          repositories.ProductRepository
	canonicalizer *algorithms.TextCanonicalizer
	clusterer     dedupdomain.Clusterer
	ledger        dedupdomain.ClusterLedger
	linker        dedupdomain.LinkProtocol
	textFields    []string
	workers       int
	logger        *logging.Logger

	passes singleflight.Group
}

// NewUseCase создает новый use case для дедупликации
func NewUseCase(
	repo repositories.ProductRepository,
	canonicalizer *algorithms.TextCanonicalizer,
	clusterer dedupdomain.Clusterer,
	ledger dedupdomain.ClusterLedger,
	linker dedupdomain.LinkProtocol,
	opts Options,
	logger *logging.Logger,
) *UseCase {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &UseCase{
		repo:          repo,
		canonicalizer: canonicalizer,
		clusterer:     clusterer,
		ledger:        ledger,
		linker:        linker,
		textFields:    append([]string(nil), opts.TextFields...),
		workers:       opts.Workers,
		logger:        logger,
	}
}

// PassResult итог одного прохода кластеризации
type PassResult struct {
	PassID      string                           `json:"pass_id"`
	StartedAt   time.Time                        `json:"started_at"`
	Duration    time.Duration                    `json:"duration"`
	Summary     dedupdomain.PassSummary          `json:"summary"`
	Clusters    int                              `json:"clusters"`
	Assignments []repositories.ClusterAssignment `json:"-"`
	// Состояние строк до прохода
	Before []repositories.Product `json:"-"`
}

// ReclusterEntry продукт, у которого после прохода появились похожие
type ReclusterEntry struct {
	ID           int64   `json:"id"`
	Name         *string `json:"name"`
	ClusterID    int     `json:"cluster_id"`
	ClusterCount int     `json:"cluster_count"`
	Siblings     int     `json:"siblings"`
}

// ReclusterReport результат ручного прохода
type ReclusterReport struct {
	PassID   string                  `json:"pass_id"`
	Summary  dedupdomain.PassSummary `json:"summary"`
	Clusters int                     `json:"clusters"`
	Grown    []ReclusterEntry        `json:"grown"`
}

// ListProducts возвращает страницу каталога
func (uc *UseCase) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]repositories.Product, error) {
	result, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return result, nil
}

// ListIncomplete возвращает незаполненные продукты
func (uc *UseCase) ListIncomplete(ctx context.Context, filter repositories.ProductFilter) ([]repositories.Product, error) {
	result, err := uc.repo.ListIncomplete(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomplete products: %w", err)
	}
	return result, nil
}

// ListIncompleteWithCluster очередь проверки: незаполненные непроверенные
// несвязанные продукты, у которых есть похожие
func (uc *UseCase) ListIncompleteWithCluster(ctx context.Context) ([]repositories.Product, error) {
	result, err := uc.repo.ListIncompleteWithCluster(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomplete products with cluster: %w", err)
	}
	return result, nil
}

// ListIncompleteUnique незаполненные продукты без группы
func (uc *UseCase) ListIncompleteUnique(ctx context.Context) ([]repositories.Product, error) {
	result, err := uc.repo.ListIncompleteUnique(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unique incomplete products: %w", err)
	}
	return result, nil
}

// ListAlike продукты той же группы, кроме самого productID
func (uc *UseCase) ListAlike(ctx context.Context, productID int64, clusterID int) ([]repositories.Product, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: id %d", dedupdomain.ErrInvalidProductID, productID)
	}
	result, err := uc.repo.ListAlike(ctx, productID, clusterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alike products: %w", err)
	}
	return result, nil
}

// GetProduct возвращает продукт по ID
func (uc *UseCase) GetProduct(ctx context.Context, id int64) (*repositories.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id %d", dedupdomain.ErrInvalidProductID, id)
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: id %d", dedupdomain.ErrProductNotFound, id)
	}
	return product, nil
}

// GetLatest возвращает последний добавленный продукт
func (uc *UseCase) GetLatest(ctx context.Context) (*repositories.Product, error) {
	product, err := uc.repo.GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: catalog is empty", dedupdomain.ErrProductNotFound)
	}
	return product, nil
}

// CountProducts возвращает размер каталога
func (uc *UseCase) CountProducts(ctx context.Context) (int64, error) {
	count, err := uc.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// Ping проверяет доступность хранилища
func (uc *UseCase) Ping(ctx context.Context) error {
	if err := uc.repo.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping product store: %w", err)
	}
	return nil
}

// UpdateClusterFields применяет внешний результат кластеризации
func (uc *UseCase) UpdateClusterFields(ctx context.Context, assignments []repositories.ClusterAssignment) (*dedupdomain.PassSummary, error) {
	summary, err := uc.ledger.ApplyClusteringPass(ctx, assignments)
	if err != nil {
		return nil, fmt.Errorf("failed to update cluster fields: %w", err)
	}
	if summary.Failed > 0 {
		uc.logger.WithContext(ctx).Warn("cluster fields partially updated",
			"updated", summary.Updated, "failed", summary.Failed)
	}
	return summary, nil
}

// Link связывает source с target
func (uc *UseCase) Link(ctx context.Context, sourceID, targetID int64) (*dedupdomain.LinkOutcome, error) {
	outcome, err := uc.linker.Link(ctx, sourceID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to link product %d to %d: %w", sourceID, targetID, err)
	}
	uc.logger.WithContext(ctx).Info("product linked", "source_id", sourceID, "target_id", targetID)
	return outcome, nil
}

// LinkMany связывает выбранные продукты с target, результат по каждой строке
func (uc *UseCase) LinkMany(ctx context.Context, targetID int64, sourceIDs []int64) ([]dedupdomain.LinkOutcome, error) {
	outcomes, err := uc.linker.LinkMany(ctx, targetID, sourceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to link products to %d: %w", targetID, err)
	}
	linked := 0
	for _, o := range outcomes {
		if o.Success {
			linked++
		}
	}
	uc.logger.WithContext(ctx).Info("batch link finished",
		"target_id", targetID, "requested", len(outcomes), "linked", linked)
	return outcomes, nil
}

// Verify отмечает продукт как проверенный
func (uc *UseCase) Verify(ctx context.Context, id int64) (*repositories.Product, error) {
	product, err := uc.linker.Verify(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to verify product %d: %w", id, err)
	}
	return product, nil
}

// RunPass выполняет проход кластеризации по всем несвязанным продуктам.
// Одновременные вызовы получают результат одного прохода. Проход не
// прерывается отменой ctx вызывающего.
func (uc *UseCase) RunPass(ctx context.Context) (*PassResult, error) {
	passCtx := context.WithoutCancel(ctx)
	v, err, shared := uc.passes.Do(passKey, func() (interface{}, error) {
		return uc.runPass(passCtx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		uc.logger.WithContext(ctx).Debug("joined in-flight clustering pass")
	}
	return v.(*PassResult), nil
}

func (uc *UseCase) runPass(ctx context.Context) (*PassResult, error) {
	result := &PassResult{
		PassID:    uuid.NewString(),
		StartedAt: time.Now(),
		Summary:   dedupdomain.PassSummary{Failures: []dedupdomain.RowFailure{}},
	}
	log := uc.logger.WithContext(ctx).With("pass_id", result.PassID)

	rows, err := uc.repo.ListForClustering(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products for clustering: %w", err)
	}
	result.Before = rows
	if len(rows) == 0 {
		log.Info("clustering pass skipped: catalog is empty")
		result.Duration = time.Since(result.StartedAt)
		return result, nil
	}

	batch := make([][]*string, len(rows))
	for i := range rows {
		batch[i] = dedupdomain.ProductFields(&rows[i], uc.textFields)
	}
	canonical, err := uc.canonicalizer.CanonicalizeBatch(ctx, batch, uc.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize products: %w", err)
	}

	texts := make([]dedupdomain.LabeledText, len(rows))
	for i := range rows {
		texts[i] = dedupdomain.LabeledText{ID: rows[i].ID, Text: canonical[i]}
	}

	assignments, err := uc.clusterer.Cluster(ctx, texts)
	if err != nil {
		log.Error("clustering failed", "rows", len(rows), "error", err)
		return nil, fmt.Errorf("failed to cluster products: %w", err)
	}
	result.Assignments = assignments
	result.Clusters = len(dedupdomain.Groups(assignments))

	summary, err := uc.ledger.ApplyClusteringPass(ctx, assignments)
	if err != nil {
		return nil, fmt.Errorf("failed to apply clustering pass: %w", err)
	}
	result.Summary = *summary
	result.Duration = time.Since(result.StartedAt)

	log.Info("clustering pass finished",
		"rows", len(rows),
		"clusters", result.Clusters,
		"updated", summary.Updated,
		"failed", summary.Failed,
		"duration", result.Duration)
	for _, f := range summary.Failures {
		log.Warn("cluster fields not written", "product_id", f.ID, "error", f.Error)
	}

	return result, nil
}

// Recluster выполняет проход вручную и сообщает, у каких продуктов выросла группа
func (uc *UseCase) Recluster(ctx context.Context) (*ReclusterReport, error) {
	result, err := uc.RunPass(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to recluster: %w", err)
	}
	return BuildReclusterReport(result), nil
}

// BuildReclusterReport сравнивает размеры групп до и после прохода.
// Строки, запись которых не удалась, в отчет не попадают.
func BuildReclusterReport(result *PassResult) *ReclusterReport {
	report := &ReclusterReport{
		PassID:   result.PassID,
		Summary:  result.Summary,
		Clusters: result.Clusters,
		Grown:    []ReclusterEntry{},
	}

	failed := make(map[int64]bool, len(result.Summary.Failures))
	for _, f := range result.Summary.Failures {
		failed[f.ID] = true
	}
	before := make(map[int64]*repositories.Product, len(result.Before))
	for i := range result.Before {
		before[result.Before[i].ID] = &result.Before[i]
	}

	for _, a := range result.Assignments {
		prev, ok := before[a.ID]
		if !ok || failed[a.ID] || a.ClusterID == repositories.NoCluster {
			continue
		}
		if a.ClusterCount > prev.DisplayClusterCount() {
			report.Grown = append(report.Grown, ReclusterEntry{
				ID:           a.ID,
				Name:         prev.Name,
				ClusterID:    a.ClusterID,
				ClusterCount: a.ClusterCount,
				Siblings:     a.ClusterCount - 1,
			})
		}
	}
	return report
}
