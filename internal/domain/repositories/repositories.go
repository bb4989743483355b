package repositories

import (
	"context"
	"errors"
)

// ErrStoreUnavailable временная ошибка хранилища; операцию можно повторить
var ErrStoreUnavailable = errors.New("product store unavailable")

// ProductRepository интерфейс хранилища продуктов.
// Отсутствующая запись возвращается как (nil, nil), сбои хранилища
// оборачивают ErrStoreUnavailable.
type ProductRepository interface {
	// Основные операции
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetLatest(ctx context.Context) (*Product, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error

	// Выборки
	List(ctx context.Context, filter ProductFilter) ([]Product, error)
	ListIncomplete(ctx context.Context, filter ProductFilter) ([]Product, error)
	ListIncompleteWithCluster(ctx context.Context) ([]Product, error)
	ListIncompleteUnique(ctx context.Context) ([]Product, error)
	ListAlike(ctx context.Context, productID int64, clusterID int) ([]Product, error)
	ListForClustering(ctx context.Context) ([]Product, error)

	// Поля кластеризации; false, если строки нет
	UpdateClusterFields(ctx context.Context, assignment ClusterAssignment) (bool, error)

	// Связывание и проверка. Обновление условное: false, если строка
	// не существует или уже не удовлетворяет условию
	SetLinkTo(ctx context.Context, sourceID, targetID int64) (bool, error)
	SetActive(ctx context.Context, id int64) (bool, error)
}
