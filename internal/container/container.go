package container

import (
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"foodcatalog/database"
	"foodcatalog/importer"
	"foodcatalog/internal/api/handlers/products"
	dedupapp "foodcatalog/internal/application/dedup"
	"foodcatalog/internal/config"
	dedupdomain "foodcatalog/internal/domain/dedup"
	"foodcatalog/internal/domain/repositories"
	"foodcatalog/internal/infrastructure/logging"
	"foodcatalog/normalization"
	"foodcatalog/normalization/algorithms"
	apperrors "foodcatalog/server/errors"
	"foodcatalog/server/middleware"
)

// Container контейнер зависимостей приложения.
// Управляет жизненным циклом всех компонентов.
type Container struct {
	mu sync.RWMutex

	// Конфигурация
	Config *config.Config
	Logger *logging.Logger

	// База данных
	DB          *database.ProductDB
	ProductRepo repositories.ProductRepository

	// Домен дедупликации
	Canonicalizer *algorithms.TextCanonicalizer
	Clusterer     dedupdomain.Clusterer
	Ledger        dedupdomain.ClusterLedger
	Linker        dedupdomain.LinkProtocol
	DedupUseCase  *dedupapp.UseCase
	Poller        *dedupapp.Poller

	// Импорт и выгрузка
	Importer *importer.ProductImporter
	Exporter *normalization.Exporter

	// HTTP
	ErrorStats       *apperrors.ErrorStats
	Responder        *middleware.ErrorResponder
	ProductsHandler  *products.Handler
	ReclusterLimiter *rate.Limiter

	initialized bool
}

// NewContainer создает новый контейнер зависимостей
func NewContainer(cfg *config.Config, logger *logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Container{Config: cfg, Logger: logger}, nil
}

// Initialize инициализирует все зависимости контейнера
// в порядке от хранилища к обработчикам
func (c *Container) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return fmt.Errorf("container already initialized")
	}

	// Шаг 1: база каталога
	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Шаг 2: домен дедупликации
	if err := c.initDedupComponents(); err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize dedup components: %w", err)
	}

	// Шаг 3: обработчики
	c.initHandlers()

	c.initialized = true
	c.Logger.Info("container initialized", "database", c.Config.DatabasePath)
	return nil
}

// initDatabase открывает базу каталога
func (c *Container) initDatabase() error {
	db, err := database.NewProductDBWithConfig(c.Config.DatabasePath, database.DBConfig{
		MaxOpenConns:    c.Config.MaxOpenConns,
		MaxIdleConns:    c.Config.MaxIdleConns,
		ConnMaxLifetime: c.Config.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	c.DB = db
	c.Logger.Debug("product database opened", "migrations", db.AppliedMigrations())
	return nil
}

// initHandlers создает HTTP обработчики
func (c *Container) initHandlers() {
	c.ErrorStats = apperrors.NewErrorStats(0)
	c.Responder = middleware.NewErrorResponder(c.Logger, c.ErrorStats)
	c.ProductsHandler = products.NewHandler(c.DedupUseCase, c.Exporter, c.Responder)
	c.ReclusterLimiter = middleware.NewPerMinuteLimiter(c.Config.Dedup.ReclusterPerMin)
}

// IsInitialized проверяет, инициализирован ли контейнер
func (c *Container) IsInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// Close освобождает ресурсы контейнера
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.closeDatabase()
	c.initialized = false
	return err
}

func (c *Container) closeDatabase() error {
	if c.DB == nil {
		return nil
	}
	err := c.DB.Close()
	c.DB = nil
	if err != nil {
		return fmt.Errorf("failed to close product database: %w", err)
	}
	return nil
}
