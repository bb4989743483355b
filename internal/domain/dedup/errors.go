package dedup

import (
	"errors"
	"fmt"

	"foodcatalog/internal/domain/repositories"
)

// Классы доменных ошибок. Конкретные ошибки ниже оборачивают один из них,
// поэтому классификация выполняется через errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidationFailure = errors.New("validation failure")
	ErrStoreUnavailable  = repositories.ErrStoreUnavailable
	ErrClusteringFailure = errors.New("clustering failure")
)

// Доменные ошибки для Dedup Domain
var (
	ErrProductNotFound     = fmt.Errorf("product %w", ErrNotFound)
	ErrTargetNotFound      = fmt.Errorf("link target %w", ErrNotFound)
	ErrInvalidProductID    = fmt.Errorf("%w: invalid product id", ErrValidationFailure)
	ErrSourceVerified      = fmt.Errorf("%w: source product is verified (active=1)", ErrValidationFailure)
	ErrSourceAlreadyLinked = fmt.Errorf("%w: source product is already linked", ErrValidationFailure)
	ErrSelfLink            = fmt.Errorf("%w: product cannot be linked to itself", ErrValidationFailure)
	ErrEmptyBatch          = fmt.Errorf("%w: empty batch", ErrValidationFailure)
	ErrInvalidAssignment   = fmt.Errorf("%w: invalid cluster assignment", ErrValidationFailure)
	ErrLinkedProductVerify = fmt.Errorf("%w: linked product cannot be verified", ErrValidationFailure)
)
