package container

import (
	"foodcatalog/importer"
	dedupapp "foodcatalog/internal/application/dedup"
	dedupdomain "foodcatalog/internal/domain/dedup"
	"foodcatalog/internal/infrastructure/persistence"
	"foodcatalog/normalization"
	"foodcatalog/normalization/algorithms"
)

// initDedupComponents инициализирует компоненты dedup domain
func (c *Container) initDedupComponents() error {
	dedupCfg := c.Config.Dedup
	retry := dedupCfg.RetryConfig()

	// 1. Репозиторий (infrastructure layer)
	c.ProductRepo = persistence.NewProductRepository(c.DB)

	// 2. Доменные компоненты; журнал и протокол связывания единственные писатели своих полей
	c.Canonicalizer = algorithms.NewTextCanonicalizer()
	c.Clusterer = dedupdomain.NewSimilarityClusterer()
	c.Ledger = dedupdomain.NewLedger(c.ProductRepo, retry)
	c.Linker = dedupdomain.NewLinker(c.ProductRepo, retry)

	// 3. Application use case
	c.DedupUseCase = dedupapp.NewUseCase(
		c.ProductRepo,
		c.Canonicalizer,
		c.Clusterer,
		c.Ledger,
		c.Linker,
		dedupapp.Options{TextFields: dedupCfg.TextFields, Workers: dedupCfg.Workers},
		c.Logger.With("component", "dedup"),
	)

	// 4. Триггер поступления данных
	c.Poller = dedupapp.NewPoller(c.DedupUseCase, c.DedupUseCase, dedupCfg.PollInterval, c.Logger.With("component", "poller"))

	c.Importer = importer.NewProductImporter(c.ProductRepo, c.Logger.With("component", "importer"))
	c.Exporter = normalization.NewExporter()
	return nil
}
