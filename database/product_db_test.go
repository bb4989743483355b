package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *ProductDB {
	t.Helper()
	db, err := NewProductDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// completeRow строка, в которой заполнены все поля
func completeRow(name string) *ProductRow {
	row := NewProductRow()
	for i := range row.Texts {
		row.Texts[i] = strPtr(name)
	}
	for i := range row.Nutrients {
		row.Nutrients[i] = floatPtr(float64(i))
	}
	return row
}

func incompleteRow(name string) *ProductRow {
	row := completeRow(name)
	row.Nutrients[3] = nil
	return row
}

func insert(t *testing.T, db *ProductDB, row *ProductRow) int64 {
	t.Helper()
	require.NoError(t, db.CreateProduct(context.Background(), row))
	return row.ID
}

func ids(rows []*ProductRow) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestNewProductDB_MigrationsAppliedOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	db, err := NewProductDB(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_create_product", "002_product_indexes"}, db.AppliedMigrations())
	require.NoError(t, db.Close())

	db, err = NewProductDB(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Empty(t, db.AppliedMigrations())
}

func TestBuildDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_busy_timeout=5000&_foreign_keys=on", buildDSN(":memory:"))
	assert.Equal(t,
		"file:memdb?mode=memory&cache=shared&_busy_timeout=5000&_foreign_keys=on",
		buildDSN("file:memdb?mode=memory&cache=shared"))
	assert.Equal(t, "catalog.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL", buildDSN("catalog.db"))
}

func TestNewProductDB_PragmasOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	db, err := NewProductDBWithConfig(filepath.Join(t.TempDir(), "catalog.db"), DBConfig{MaxOpenConns: 4, MaxIdleConns: 4})
	require.NoError(t, err)
	defer db.Close()

	// держим соединения открытыми, чтобы пул выдал разные
	conns := make([]*sql.Conn, 3)
	for i := range conns {
		conns[i], err = db.conn.Conn(ctx)
		require.NoError(t, err)
		defer conns[i].Close()
	}

	for i, c := range conns {
		var timeout, foreignKeys int
		var journal string
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys))
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journal))
		assert.Equal(t, 5000, timeout, "conn %d", i)
		assert.Equal(t, 1, foreignKeys, "conn %d", i)
		assert.Equal(t, "wal", journal, "conn %d", i)
	}
}

func TestProductDB_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	row := incompleteRow("Pindakaas")
	row.Texts[2] = nil
	id := insert(t, db, row)

	got, err := db.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Pindakaas", *got.Texts[0])
	assert.Nil(t, got.Texts[2])
	assert.Nil(t, got.Nutrients[3])
	assert.InDelta(t, 4.0, *got.Nutrients[4], 1e-9)
	assert.Equal(t, -1, got.ClusterID)
	assert.Equal(t, 1, got.ClusterCount)
	assert.Nil(t, got.LinkTo)
	assert.False(t, got.Created.IsZero())

	_, err = db.GetProduct(ctx, id+100)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	latest, err := db.GetLatestProduct(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, latest.ID)

	count, err := db.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestProductDB_ListPaging(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		insert(t, db, completeRow("melk"))
	}

	all, err := db.ListProducts(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	page, err := db.ListProducts(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(page))
}

func TestProductDB_IncompleteListings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	complete := insert(t, db, completeRow("kaas"))
	unique := insert(t, db, incompleteRow("brood"))
	review := insert(t, db, incompleteRow("appel"))
	verified := insert(t, db, incompleteRow("appel"))
	linked := insert(t, db, incompleteRow("appel"))

	for _, id := range []int64{review, verified, linked, complete} {
		ok, err := db.UpdateClusterFields(ctx, id, 3, 4)
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := db.SetActive(ctx, verified)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = db.SetLinkTo(ctx, linked, verified)
	require.NoError(t, err)
	require.True(t, ok)

	incomplete, err := db.ListIncompleteProducts(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{unique, review, verified, linked}, ids(incomplete))

	withCluster, err := db.ListIncompleteWithCluster(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{review}, ids(withCluster))

	uniques, err := db.ListIncompleteUnique(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{unique}, ids(uniques))

	alike, err := db.ListAlike(ctx, review, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{complete, verified}, sortedIDs(alike))

	forClustering, err := db.ListForClustering(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids(forClustering), linked)
	assert.Len(t, forClustering, 4)
}

func sortedIDs(rows []*ProductRow) []int64 {
	out := ids(rows)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestProductDB_ConditionalLinkAndVerify(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	target := insert(t, db, completeRow("kaas"))
	source := insert(t, db, completeRow("kaas"))
	verified := insert(t, db, completeRow("kaas"))

	ok, err := db.SetActive(ctx, verified)
	require.NoError(t, err)
	require.True(t, ok)

	// проверенную строку связать нельзя
	ok, err = db.SetLinkTo(ctx, verified, target)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = db.SetLinkTo(ctx, source, target)
	require.NoError(t, err)
	assert.True(t, ok)

	// повторное связывание отклоняется
	ok, err = db.SetLinkTo(ctx, source, verified)
	require.NoError(t, err)
	assert.False(t, ok)

	// связанную строку нельзя проверить
	ok, err = db.SetActive(ctx, source)
	require.NoError(t, err)
	assert.False(t, ok)

	row, err := db.GetProduct(ctx, source)
	require.NoError(t, err)
	require.NotNil(t, row.LinkTo)
	assert.Equal(t, target, *row.LinkTo)
	assert.Equal(t, 0, row.Active)

	ok, err = db.SetLinkTo(ctx, 999, target)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductDB_CheckConstraintGuardsLinkedRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	target := insert(t, db, completeRow("kaas"))
	source := insert(t, db, completeRow("kaas"))
	ok, err := db.SetLinkTo(ctx, source, target)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = db.GetDB().ExecContext(ctx, "UPDATE product SET active = 1 WHERE id = ?", source)
	assert.Error(t, err)
}

func TestProductDB_UpdateClusterFieldsMissingRow(t *testing.T) {
	db := newTestDB(t)

	ok, err := db.UpdateClusterFields(context.Background(), 42, 1, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductDB_CreateRejectsMalformedRow(t *testing.T) {
	db := newTestDB(t)

	err := db.CreateProduct(context.Background(), &ProductRow{})
	assert.Error(t, err)
}
