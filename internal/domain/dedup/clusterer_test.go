package dedup

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodcatalog/internal/domain/repositories"
	"foodcatalog/normalization/algorithms"
)

func byID(assignments []repositories.ClusterAssignment) map[int64]repositories.ClusterAssignment {
	out := make(map[int64]repositories.ClusterAssignment, len(assignments))
	for _, a := range assignments {
		out[a.ID] = a
	}
	return out
}

// partition множество групп в виде отсортированных списков id
func partition(assignments []repositories.ClusterAssignment) [][]int64 {
	var out [][]int64
	for _, ids := range Groups(assignments) {
		sorted := append([]int64(nil), ids...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		out = append(out, sorted)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func TestSimilarityClusterer_ThreeDuplicatesOneUnique(t *testing.T) {
	c := algorithms.NewTextCanonicalizer()
	texts := []LabeledText{
		{ID: 10, Text: c.CanonicalizeStrings("Organic Peanut Butter 500g, Smooth", "Calvé")},
		{ID: 11, Text: c.CanonicalizeStrings("organic peanut butter, smooth 350 g", "Calvé")},
		{ID: 12, Text: c.CanonicalizeStrings("Organic Peanut-Butter (smooth)", "CALVÉ")},
		{ID: 13, Text: c.CanonicalizeStrings("Halfvolle melk", "Campina")},
	}

	assignments, err := NewSimilarityClusterer().Cluster(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, assignments, 4)

	rows := byID(assignments)
	assert.NotEqual(t, repositories.NoCluster, rows[10].ClusterID)
	assert.Equal(t, rows[10].ClusterID, rows[11].ClusterID)
	assert.Equal(t, rows[10].ClusterID, rows[12].ClusterID)
	assert.Equal(t, 3, rows[10].ClusterCount)
	assert.Equal(t, 3, rows[12].ClusterCount)

	assert.Equal(t, repositories.NoCluster, rows[13].ClusterID)
	assert.Equal(t, 1, rows[13].ClusterCount)
}

func TestSimilarityClusterer_TrailingPunctuationStillDuplicate(t *testing.T) {
	c := algorithms.NewTextCanonicalizer()
	texts := []LabeledText{
		{ID: 1, Text: c.CanonicalizeStrings("Lay's Paprika Chips!")},
		{ID: 2, Text: c.CanonicalizeStrings("Lays paprika chips")},
		{ID: 3, Text: c.CanonicalizeStrings("Lays paprika chips")},
		{ID: 4, Text: c.CanonicalizeStrings("Lays paprika chips")},
	}

	assignments, err := NewSimilarityClusterer().Cluster(context.Background(), texts)
	require.NoError(t, err)

	assert.Equal(t, [][]int64{{1, 2, 3, 4}}, partition(assignments))
	assert.Equal(t, 4, byID(assignments)[1].ClusterCount)
}

func TestSimilarityClusterer_PartitionIndependentOfInputOrder(t *testing.T) {
	texts := []LabeledText{
		{ID: 1, Text: "organ peanut butter smooth"},
		{ID: 2, Text: "organ peanut butter"},
		{ID: 3, Text: "peanut butter smooth organ"},
		{ID: 4, Text: "appel schil groen"},
		{ID: 5, Text: "appel schil groen"},
		{ID: 6, Text: "appel groen schil"},
		{ID: 7, Text: "halfvol melk"},
	}
	reversed := make([]LabeledText, len(texts))
	for i := range texts {
		reversed[len(texts)-1-i] = texts[i]
	}

	clusterer := NewSimilarityClusterer()
	first, err := clusterer.Cluster(context.Background(), texts)
	require.NoError(t, err)
	second, err := clusterer.Cluster(context.Background(), reversed)
	require.NoError(t, err)

	assert.Equal(t, partition(first), partition(second))
	assert.Contains(t, partition(first), []int64{4, 5, 6})
}

func TestSimilarityClusterer_EmptyVocabularyFails(t *testing.T) {
	_, err := NewSimilarityClusterer().Cluster(context.Background(), []LabeledText{
		{ID: 1, Text: ""},
		{ID: 2, Text: "a b"},
	})

	assert.ErrorIs(t, err, ErrClusteringFailure)
	assert.ErrorIs(t, err, algorithms.ErrEmptyVocabulary)
}

func TestSimilarityClusterer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimilarityClusterer().Cluster(ctx, []LabeledText{{ID: 1, Text: "melk"}})
	assert.ErrorIs(t, err, context.Canceled)
}
