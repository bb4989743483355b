package importer

import (
	"context"
	"fmt"
	"time"

	"foodcatalog/internal/domain/repositories"
	"foodcatalog/internal/infrastructure/logging"
)

// ImportResult результат импорта
type ImportResult struct {
	Total     int           `json:"total"`
	Success   int           `json:"success"`
	Errors    []string      `json:"errors"`
	Ignored   []string      `json:"ignored_columns,omitempty"`
	Started   time.Time     `json:"started"`
	Completed time.Time     `json:"completed"`
	Duration  time.Duration `json:"duration"`
}

// ProductImporter добавляет разобранные продукты в каталог
type ProductImporter struct {
	repo   repositories.ProductRepository
	logger *logging.Logger
}

// NewProductImporter создает импортер продуктов
func NewProductImporter(repo repositories.ProductRepository, logger *logging.Logger) *ProductImporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ProductImporter{repo: repo, logger: logger}
}

// Import создает продукты по одному; ошибка строки не останавливает импорт
func (pi *ProductImporter) Import(ctx context.Context, products []repositories.Product) (*ImportResult, error) {
	result := &ImportResult{
		Total:   len(products),
		Errors:  make([]string, 0),
		Started: time.Now(),
	}

	// Логируем прогресс каждые 500 записей
	const logInterval = 500

	for idx := range products {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("import interrupted after %d rows: %w", idx, err)
		}

		p := products[idx]
		if err := pi.repo.Create(ctx, &p); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s: %v", idx+1, derefName(p.Name), err))
			continue
		}
		result.Success++

		if (idx+1)%logInterval == 0 {
			pi.logger.Info("import progress", "processed", idx+1, "total", len(products))
		}
	}

	result.Completed = time.Now()
	result.Duration = result.Completed.Sub(result.Started)

	pi.logger.Info("import completed",
		"success", result.Success, "total", result.Total, "errors", len(result.Errors))

	return result, nil
}

func derefName(s *string) string {
	if s == nil {
		return "<no name>"
	}
	return *s
}
