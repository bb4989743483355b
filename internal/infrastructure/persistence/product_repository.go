package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"foodcatalog/database"
	"foodcatalog/internal/domain/repositories"
)

// productRepository реализация репозитория для продуктов
// Адаптер между domain интерфейсом и infrastructure (database.ProductDB)
type productRepository struct {
	db *database.ProductDB
}

// NewProductRepository создает новый репозиторий продуктов
func NewProductRepository(db *database.ProductDB) repositories.ProductRepository {
	return &productRepository{db: db}
}

// storeError оборачивает ошибку драйвера в ErrStoreUnavailable
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, repositories.ErrStoreUnavailable, err)
}

// Create создает продукт и заполняет ID и отметки времени
func (r *productRepository) Create(ctx context.Context, product *repositories.Product) error {
	row := toRow(product)
	if err := r.db.CreateProduct(ctx, row); err != nil {
		return storeError("create product", err)
	}
	product.ID = row.ID
	product.Created = row.Created
	product.Updated = row.Updated
	return nil
}

// GetByID возвращает продукт по ID, nil если не найден
func (r *productRepository) GetByID(ctx context.Context, id int64) (*repositories.Product, error) {
	row, err := r.db.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeError("get product", err)
	}
	return toDomain(row), nil
}

// GetLatest возвращает последний добавленный продукт, nil для пустого каталога
func (r *productRepository) GetLatest(ctx context.Context) (*repositories.Product, error) {
	row, err := r.db.GetLatestProduct(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeError("get latest product", err)
	}
	return toDomain(row), nil
}

// Count количество продуктов в каталоге
func (r *productRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.db.CountProducts(ctx)
	if err != nil {
		return 0, storeError("count products", err)
	}
	return count, nil
}

// Ping проверяет доступность хранилища
func (r *productRepository) Ping(ctx context.Context) error {
	if err := r.db.GetDB().PingContext(ctx); err != nil {
		return storeError("ping", err)
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, filter repositories.ProductFilter) ([]repositories.Product, error) {
	return r.list("list products", func() ([]*database.ProductRow, error) {
		return r.db.ListProducts(ctx, filter.Limit, filter.Offset)
	})
}

func (r *productRepository) ListIncomplete(ctx context.Context, filter repositories.ProductFilter) ([]repositories.Product, error) {
	return r.list("list incomplete products", func() ([]*database.ProductRow, error) {
		return r.db.ListIncompleteProducts(ctx, filter.Limit, filter.Offset)
	})
}

func (r *productRepository) ListIncompleteWithCluster(ctx context.Context) ([]repositories.Product, error) {
	return r.list("list incomplete products with cluster", func() ([]*database.ProductRow, error) {
		return r.db.ListIncompleteWithCluster(ctx)
	})
}

func (r *productRepository) ListIncompleteUnique(ctx context.Context) ([]repositories.Product, error) {
	return r.list("list unique incomplete products", func() ([]*database.ProductRow, error) {
		return r.db.ListIncompleteUnique(ctx)
	})
}

func (r *productRepository) ListAlike(ctx context.Context, productID int64, clusterID int) ([]repositories.Product, error) {
	return r.list("list alike products", func() ([]*database.ProductRow, error) {
		return r.db.ListAlike(ctx, productID, clusterID)
	})
}

func (r *productRepository) ListForClustering(ctx context.Context) ([]repositories.Product, error) {
	return r.list("list products for clustering", func() ([]*database.ProductRow, error) {
		return r.db.ListForClustering(ctx)
	})
}

// UpdateClusterFields перезаписывает cluster_id и cluster_count одной строки
func (r *productRepository) UpdateClusterFields(ctx context.Context, a repositories.ClusterAssignment) (bool, error) {
	ok, err := r.db.UpdateClusterFields(ctx, a.ID, a.ClusterID, a.ClusterCount)
	if err != nil {
		return false, storeError("update cluster fields", err)
	}
	return ok, nil
}

// SetLinkTo условно связывает строку с целью
func (r *productRepository) SetLinkTo(ctx context.Context, sourceID, targetID int64) (bool, error) {
	ok, err := r.db.SetLinkTo(ctx, sourceID, targetID)
	if err != nil {
		return false, storeError("set link_to", err)
	}
	return ok, nil
}

// SetActive условно помечает строку как проверенную
func (r *productRepository) SetActive(ctx context.Context, id int64) (bool, error) {
	ok, err := r.db.SetActive(ctx, id)
	if err != nil {
		return false, storeError("set active", err)
	}
	return ok, nil
}

func (r *productRepository) list(op string, query func() ([]*database.ProductRow, error)) ([]repositories.Product, error) {
	rows, err := query()
	if err != nil {
		return nil, storeError(op, err)
	}
	products := make([]repositories.Product, len(rows))
	for i, row := range rows {
		products[i] = *toDomain(row)
	}
	return products, nil
}

// toDomain преобразует строку таблицы в доменную модель
func toDomain(row *database.ProductRow) *repositories.Product {
	p := &repositories.Product{
		ID:           row.ID,
		Active:       row.Active,
		ClusterID:    row.ClusterID,
		ClusterCount: row.ClusterCount,
		LinkTo:       row.LinkTo,
		Created:      row.Created,
		Updated:      row.Updated,
	}
	for i, target := range p.TextTargets() {
		if i < len(row.Texts) {
			*target = row.Texts[i]
		}
	}
	for i, target := range p.Nutrition.Targets() {
		if i < len(row.Nutrients) {
			*target = row.Nutrients[i]
		}
	}
	return p
}

// toRow преобразует доменную модель в строку таблицы
func toRow(p *repositories.Product) *database.ProductRow {
	row := database.NewProductRow()
	row.ID = p.ID
	row.Active = p.Active
	row.ClusterID = p.ClusterID
	row.ClusterCount = p.ClusterCount
	row.LinkTo = p.LinkTo
	for i, target := range p.TextTargets() {
		row.Texts[i] = *target
	}
	row.Nutrients = p.Nutrition.Values()
	if row.ClusterID == 0 && row.ClusterCount == 0 {
		// нулевое значение модели: продукт еще не кластеризован
		row.ClusterID = repositories.NoCluster
		row.ClusterCount = 1
	}
	return row
}
