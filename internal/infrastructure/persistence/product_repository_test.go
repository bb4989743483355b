package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodcatalog/database"
	"foodcatalog/internal/domain/repositories"
)

func newTestRepository(t *testing.T) (repositories.ProductRepository, *database.ProductDB) {
	t.Helper()
	db, err := database.NewProductDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProductRepository(db), db
}

func strPtr(s string) *string { return &s }

func TestColumnOrderMatchesDomain(t *testing.T) {
	assert.Equal(t, database.TextColumns, repositories.ProductTextFields)
	assert.Equal(t, database.NutrientColumns, repositories.NutritionFields)
}

func TestProductRepository_CreateAndGet(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	salt := 1.2
	p := &repositories.Product{Name: strPtr("Pindakaas"), Brands: strPtr("Calvé")}
	p.Salt = &salt
	require.NoError(t, repo.Create(ctx, p))
	require.NotZero(t, p.ID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Pindakaas", *got.Name)
	assert.Equal(t, "Calvé", *got.Brands)
	assert.Nil(t, got.Remarks)
	require.NotNil(t, got.Salt)
	assert.InDelta(t, 1.2, *got.Salt, 1e-9)
	assert.Equal(t, repositories.NoCluster, got.ClusterID)
	assert.Equal(t, 1, got.ClusterCount)
	assert.True(t, got.IsIncomplete())

	missing, err := repo.GetByID(ctx, p.ID+1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductRepository_ClusterAndLinkWrites(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	target := &repositories.Product{Name: strPtr("kaas")}
	source := &repositories.Product{Name: strPtr("kaas")}
	require.NoError(t, repo.Create(ctx, target))
	require.NoError(t, repo.Create(ctx, source))

	ok, err := repo.UpdateClusterFields(ctx, repositories.ClusterAssignment{ID: source.ID, ClusterID: 2, ClusterCount: 3})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SetLinkTo(ctx, source.ID, target.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ClusterID)
	assert.Equal(t, 3, got.ClusterCount)
	require.NotNil(t, got.LinkTo)
	assert.Equal(t, target.ID, *got.LinkTo)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	latest, err := repo.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, source.ID, latest.ID)
}

func TestProductRepository_StoreUnavailable(t *testing.T) {
	repo, db := newTestRepository(t)
	require.NoError(t, db.Close())

	_, err := repo.Count(context.Background())
	assert.ErrorIs(t, err, repositories.ErrStoreUnavailable)

	_, err = repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, repositories.ErrStoreUnavailable)

	_, err = repo.List(context.Background(), repositories.ProductFilter{})
	assert.ErrorIs(t, err, repositories.ErrStoreUnavailable)
}
