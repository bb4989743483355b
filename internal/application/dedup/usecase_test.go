package dedup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodcatalog/database"
	dedupdomain "foodcatalog/internal/domain/dedup"
	"foodcatalog/internal/domain/repositories"
	"foodcatalog/internal/infrastructure/persistence"
	"foodcatalog/normalization"
	"foodcatalog/normalization/algorithms"
)

func strPtr(s string) *string { return &s }

func testRetryConfig() normalization.RetryConfig {
	cfg := normalization.DefaultRetryConfig()
	cfg.InitialDelay = 0
	return cfg
}

func newTestUseCase(t *testing.T) (*UseCase, repositories.ProductRepository) {
	t.Helper()
	db, err := database.NewProductDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := persistence.NewProductRepository(db)
	uc := NewUseCase(
		repo,
		algorithms.NewTextCanonicalizer(),
		dedupdomain.NewSimilarityClusterer(),
		dedupdomain.NewLedger(repo, testRetryConfig()),
		dedupdomain.NewLinker(repo, testRetryConfig()),
		Options{TextFields: []string{"name", "brands"}, Workers: 2},
		nil,
	)
	return uc, repo
}

// seedPeanutButter три варианта одного продукта и один посторонний
func seedPeanutButter(t *testing.T, repo repositories.ProductRepository) []int64 {
	t.Helper()
	rows := []*repositories.Product{
		{Name: strPtr("Organic Peanut Butter 500g, Smooth"), Brands: strPtr("Calvé")},
		{Name: strPtr("organic peanut butter, smooth 350 g"), Brands: strPtr("Calvé")},
		{Name: strPtr("Organic Peanut-Butter (smooth)"), Brands: strPtr("CALVÉ")},
		{Name: strPtr("Halfvolle melk"), Brands: strPtr("Campina")},
	}
	ids := make([]int64, len(rows))
	for i, p := range rows {
		require.NoError(t, repo.Create(context.Background(), p))
		ids[i] = p.ID
	}
	return ids
}

func ids(products []repositories.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestRunPass_GroupsDuplicates(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()
	seeded := seedPeanutButter(t, repo)

	result, err := uc.RunPass(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, result.PassID)
	assert.Equal(t, 4, result.Summary.Total)
	assert.Equal(t, 4, result.Summary.Updated)
	assert.Equal(t, 1, result.Clusters)

	first, err := uc.GetProduct(ctx, seeded[0])
	require.NoError(t, err)
	assert.NotEqual(t, repositories.NoCluster, first.ClusterID)
	assert.Equal(t, 3, first.ClusterCount)

	alike, err := uc.ListAlike(ctx, seeded[0], first.ClusterID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{seeded[1], seeded[2]}, ids(alike))

	unique, err := uc.ListIncompleteUnique(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{seeded[3]}, ids(unique))
}

func TestRunPass_IsIdempotent(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()
	seedPeanutButter(t, repo)

	_, err := uc.RunPass(ctx)
	require.NoError(t, err)
	before, err := uc.ListProducts(ctx, repositories.ProductFilter{Limit: -1})
	require.NoError(t, err)

	_, err = uc.RunPass(ctx)
	require.NoError(t, err)
	after, err := uc.ListProducts(ctx, repositories.ProductFilter{Limit: -1})
	require.NoError(t, err)

	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ClusterID, after[i].ClusterID)
		assert.Equal(t, before[i].ClusterCount, after[i].ClusterCount)
	}
}

func TestRunPass_EmptyCatalogIsNoop(t *testing.T) {
	uc, _ := newTestUseCase(t)

	result, err := uc.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Summary.Total)
	assert.Empty(t, result.Assignments)
}

func TestRunPass_DetachedFromCallerCancellation(t *testing.T) {
	uc, repo := newTestUseCase(t)
	seedPeanutButter(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := uc.RunPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Summary.Updated)
}

func TestReviewQueueExcludesLinkedAndVerified(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()
	seeded := seedPeanutButter(t, repo)

	_, err := uc.RunPass(ctx)
	require.NoError(t, err)

	queue, err := uc.ListIncompleteWithCluster(ctx)
	require.NoError(t, err)
	assert.Equal(t, seeded[:3], ids(queue))

	outcome, err := uc.Link(ctx, seeded[1], seeded[0])
	require.NoError(t, err)
	assert.True(t, outcome.Success)

	_, err = uc.Verify(ctx, seeded[2])
	require.NoError(t, err)

	queue, err = uc.ListIncompleteWithCluster(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{seeded[0]}, ids(queue))

	linked, err := uc.GetProduct(ctx, seeded[1])
	require.NoError(t, err)
	require.NotNil(t, linked.LinkTo)
	assert.Equal(t, seeded[0], *linked.LinkTo)
	assert.Equal(t, 0, linked.Active)
}

func TestLink_VerifiedSourceRejected(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()
	seeded := seedPeanutButter(t, repo)

	_, err := uc.Verify(ctx, seeded[0])
	require.NoError(t, err)

	_, err = uc.Link(ctx, seeded[0], seeded[1])
	require.Error(t, err)
	assert.True(t, errors.Is(err, dedupdomain.ErrValidationFailure))

	got, err := uc.GetProduct(ctx, seeded[0])
	require.NoError(t, err)
	assert.Nil(t, got.LinkTo)
	assert.Equal(t, 1, got.Active)
}

func TestLinkMany_PerRowOutcomes(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()
	seeded := seedPeanutButter(t, repo)

	outcomes, err := uc.LinkMany(ctx, seeded[0], []int64{seeded[1], 9999, seeded[2]})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Success)
	assert.False(t, outcomes[1].Success)
	assert.True(t, errors.Is(outcomes[1].Err, dedupdomain.ErrNotFound))
	assert.True(t, outcomes[2].Success)
}

func TestRecluster_ReportsGrownGroups(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()
	seeded := seedPeanutButter(t, repo)

	report, err := uc.Recluster(ctx)
	require.NoError(t, err)
	require.Len(t, report.Grown, 3)
	for _, entry := range report.Grown {
		assert.Contains(t, seeded[:3], entry.ID)
		assert.Equal(t, 3, entry.ClusterCount)
		assert.Equal(t, 2, entry.Siblings)
	}

	// без новых данных группы не растут
	report, err = uc.Recluster(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Grown)
}

func TestBuildReclusterReport_SkipsFailedRows(t *testing.T) {
	result := &PassResult{
		PassID: "p1",
		Before: []repositories.Product{
			{ID: 1, ClusterID: repositories.NoCluster, ClusterCount: 1},
			{ID: 2, ClusterID: 4, ClusterCount: 2},
			{ID: 3, ClusterID: repositories.NoCluster, ClusterCount: 1},
		},
		Assignments: []repositories.ClusterAssignment{
			{ID: 1, ClusterID: 0, ClusterCount: 3},
			{ID: 2, ClusterID: 0, ClusterCount: 3},
			{ID: 3, ClusterID: 0, ClusterCount: 3},
		},
		Summary: dedupdomain.PassSummary{
			Total: 3, Updated: 2, Failed: 1,
			Failures: []dedupdomain.RowFailure{{ID: 3, Error: "store unavailable"}},
		},
	}

	report := BuildReclusterReport(result)
	require.Len(t, report.Grown, 2)
	assert.Equal(t, int64(1), report.Grown[0].ID)
	assert.Equal(t, int64(2), report.Grown[1].ID)
	assert.Equal(t, 2, report.Grown[1].Siblings)
}

func TestGetProduct_Errors(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	_, err := uc.GetProduct(ctx, 0)
	assert.True(t, errors.Is(err, dedupdomain.ErrValidationFailure))

	_, err = uc.GetProduct(ctx, 42)
	assert.True(t, errors.Is(err, dedupdomain.ErrNotFound))

	_, err = uc.GetLatest(ctx)
	assert.True(t, errors.Is(err, dedupdomain.ErrNotFound))
}

func TestUpdateClusterFields_EmptyBatch(t *testing.T) {
	uc, _ := newTestUseCase(t)

	_, err := uc.UpdateClusterFields(context.Background(), nil)
	assert.True(t, errors.Is(err, dedupdomain.ErrValidationFailure))
}

func TestCountAndLatest(t *testing.T) {
	uc, repo := newTestUseCase(t)
	ctx := context.Background()
	seeded := seedPeanutButter(t, repo)

	count, err := uc.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	latest, err := uc.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, seeded[3], latest.ID)
	assert.NoError(t, uc.Ping(ctx))
}
