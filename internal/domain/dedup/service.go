package dedup

import (
	"context"

	"foodcatalog/internal/domain/repositories"
)

// Clusterer группирует похожие продукты пакета.
// Метки действительны только внутри одного прохода.
type Clusterer interface {
	Cluster(ctx context.Context, texts []LabeledText) ([]repositories.ClusterAssignment, error)
}

// ClusterLedger единственный писатель полей cluster_id и cluster_count
type ClusterLedger interface {
	ApplyClusteringPass(ctx context.Context, assignments []repositories.ClusterAssignment) (*PassSummary, error)
}

// LinkProtocol единственный писатель полей link_to и active
type LinkProtocol interface {
	Link(ctx context.Context, sourceID, targetID int64) (*LinkOutcome, error)
	LinkMany(ctx context.Context, targetID int64, sourceIDs []int64) ([]LinkOutcome, error)
	Verify(ctx context.Context, id int64) (*repositories.Product, error)
}

// ClusterFieldWriter часть хранилища, нужная журналу кластеров
type ClusterFieldWriter interface {
	UpdateClusterFields(ctx context.Context, assignment repositories.ClusterAssignment) (bool, error)
}

// LinkStore часть хранилища, нужная протоколу связывания
type LinkStore interface {
	GetByID(ctx context.Context, id int64) (*repositories.Product, error)
	SetLinkTo(ctx context.Context, sourceID, targetID int64) (bool, error)
	SetActive(ctx context.Context, id int64) (bool, error)
}

// LabeledText канонический текст продукта для кластеризации
type LabeledText struct {
	ID   int64
	Text string
}

// RowFailure ошибка записи одной строки
type RowFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
	Err   error  `json:"-"`
}

// PassSummary итог применения прохода кластеризации
type PassSummary struct {
	Total    int          `json:"total"`
	Updated  int          `json:"updated"`
	Failed   int          `json:"failed"`
	Failures []RowFailure `json:"failures"`
}

// LinkOutcome результат связывания одной строки
type LinkOutcome struct {
	SourceID  int64  `json:"source_id"`
	TargetID  int64  `json:"target_id"`
	Success   bool   `json:"success"`
	UpdatedID *int64 `json:"updated_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Err       error  `json:"-"`
}
