package dedup

import (
	"context"
	"fmt"
	"sort"

	"foodcatalog/internal/domain/repositories"
	"foodcatalog/normalization/algorithms"
)

// SimilarityClusterer TF-IDF + DBSCAN по косинусному расстоянию.
// Словарь и веса обучаются на каждом пакете заново.
type SimilarityClusterer struct {
	eps        float64
	minSamples int
}

// NewSimilarityClusterer создает кластеризатор с параметрами каталога (eps=0.3, min_samples=3)
func NewSimilarityClusterer() *SimilarityClusterer {
	return &SimilarityClusterer{
		eps:        algorithms.DefaultEps,
		minSamples: algorithms.DefaultMinSamples,
	}
}

// Cluster возвращает метку и размер группы для каждой строки пакета.
// Шум получает cluster_id = -1 и cluster_count = 1.
// Любая ошибка векторизации или кластеризации отменяет весь результат.
func (c *SimilarityClusterer) Cluster(ctx context.Context, texts []LabeledText) ([]repositories.ClusterAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Сортировка по ID: одинаковый пакет дает одинаковое разбиение
	rows := make([]LabeledText, len(texts))
	copy(rows, texts)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	corpus := make([]string, len(rows))
	for i, r := range rows {
		corpus[i] = r.Text
	}

	vectors, err := algorithms.NewTFIDFVectorizer().FitTransform(corpus)
	if err != nil {
		return nil, fmt.Errorf("%w: vectorize: %w", ErrClusteringFailure, err)
	}

	dbscan := &algorithms.DBSCAN{Eps: c.eps, MinSamples: c.minSamples}
	labels, err := dbscan.FitPredict(vectors)
	if err != nil {
		return nil, fmt.Errorf("%w: dbscan: %w", ErrClusteringFailure, err)
	}
	if len(labels) != len(rows) {
		return nil, fmt.Errorf("%w: got %d labels for %d rows", ErrClusteringFailure, len(labels), len(rows))
	}

	sizes := make(map[int]int)
	for _, label := range labels {
		if label != algorithms.NoiseLabel {
			sizes[label]++
		}
	}

	assignments := make([]repositories.ClusterAssignment, len(rows))
	for i, r := range rows {
		a := repositories.ClusterAssignment{ID: r.ID, ClusterID: repositories.NoCluster, ClusterCount: 1}
		if labels[i] != algorithms.NoiseLabel {
			a.ClusterID = labels[i]
			a.ClusterCount = sizes[labels[i]]
		}
		assignments[i] = a
	}

	return assignments, nil
}

// Groups группирует назначения по cluster_id, шум не включается
func Groups(assignments []repositories.ClusterAssignment) map[int][]int64 {
	groups := make(map[int][]int64)
	for _, a := range assignments {
		if a.ClusterID == repositories.NoCluster {
			continue
		}
		groups[a.ClusterID] = append(groups[a.ClusterID], a.ID)
	}
	return groups
}
