package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProductRow строка таблицы product.
// Texts и Nutrients идут в порядке TextColumns и NutrientColumns.
type ProductRow struct {
	ID           int64
	Texts        []*string
	Nutrients    []*float64
	Active       int
	ClusterID    int
	ClusterCount int
	LinkTo       *int64
	Created      time.Time
	Updated      time.Time
}

// NewProductRow создает пустую строку с полями нужной длины
func NewProductRow() *ProductRow {
	return &ProductRow{
		Texts:        make([]*string, len(TextColumns)),
		Nutrients:    make([]*float64, len(NutrientColumns)),
		ClusterID:    -1,
		ClusterCount: 1,
	}
}

var (
	selectColumns       = strings.Join(allColumns(), ", ")
	incompletePredicate = buildIncompletePredicate()
	unlinkedPredicate   = "link_to IS NULL"
	errRowShapeMismatch = errors.New("product row field count mismatch")
)

func allColumns() []string {
	cols := []string{"id"}
	cols = append(cols, TextColumns...)
	cols = append(cols, NutrientColumns...)
	return append(cols, "active", "cluster_id", "cluster_count", "link_to", "created", "updated")
}

func buildIncompletePredicate() string {
	var parts []string
	for _, c := range TextColumns {
		parts = append(parts, c+" IS NULL")
	}
	for _, c := range NutrientColumns {
		parts = append(parts, c+" IS NULL")
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (*ProductRow, error) {
	row := NewProductRow()
	var created, updated sql.NullTime

	dest := []any{&row.ID}
	for i := range row.Texts {
		dest = append(dest, &row.Texts[i])
	}
	for i := range row.Nutrients {
		dest = append(dest, &row.Nutrients[i])
	}
	dest = append(dest, &row.Active, &row.ClusterID, &row.ClusterCount, &row.LinkTo, &created, &updated)

	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	row.Created = created.Time
	row.Updated = updated.Time
	return row, nil
}

func (db *ProductDB) queryProducts(ctx context.Context, query string, args ...any) ([]*ProductRow, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []*ProductRow
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return result, nil
}

// normalizeLimit: в SQLite LIMIT -1 означает выборку без ограничения
func normalizeLimit(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// CreateProduct вставляет строку и заполняет ID и отметки времени
func (db *ProductDB) CreateProduct(ctx context.Context, row *ProductRow) error {
	if len(row.Texts) != len(TextColumns) || len(row.Nutrients) != len(NutrientColumns) {
		return errRowShapeMismatch
	}

	now := time.Now().UTC()
	cols := allColumns()[1:]
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	args := make([]any, 0, len(cols))
	for _, t := range row.Texts {
		args = append(args, t)
	}
	for _, n := range row.Nutrients {
		args = append(args, n)
	}
	args = append(args, row.Active, row.ClusterID, row.ClusterCount, row.LinkTo, now, now)

	query := fmt.Sprintf("INSERT INTO product (%s) VALUES (%s)", strings.Join(cols, ", "), placeholders)
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get product id: %w", err)
	}
	row.ID = id
	row.Created = now
	row.Updated = now
	return nil
}

// GetProduct возвращает строку по ID или sql.ErrNoRows
func (db *ProductDB) GetProduct(ctx context.Context, id int64) (*ProductRow, error) {
	query := fmt.Sprintf("SELECT %s FROM product WHERE id = ?", selectColumns)
	return scanProduct(db.conn.QueryRowContext(ctx, query, id))
}

// GetLatestProduct возвращает последнюю добавленную строку или sql.ErrNoRows
func (db *ProductDB) GetLatestProduct(ctx context.Context) (*ProductRow, error) {
	query := fmt.Sprintf("SELECT %s FROM product ORDER BY id DESC LIMIT 1", selectColumns)
	return scanProduct(db.conn.QueryRowContext(ctx, query))
}

// CountProducts количество строк каталога
func (db *ProductDB) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM product").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// ListProducts постраничная выборка всех строк
func (db *ProductDB) ListProducts(ctx context.Context, limit, offset int) ([]*ProductRow, error) {
	limit, offset = normalizeLimit(limit, offset)
	query := fmt.Sprintf("SELECT %s FROM product ORDER BY id LIMIT ? OFFSET ?", selectColumns)
	return db.queryProducts(ctx, query, limit, offset)
}

// ListIncompleteProducts строки, у которых не заполнено хотя бы одно поле
func (db *ProductDB) ListIncompleteProducts(ctx context.Context, limit, offset int) ([]*ProductRow, error) {
	limit, offset = normalizeLimit(limit, offset)
	query := fmt.Sprintf("SELECT %s FROM product WHERE %s ORDER BY id LIMIT ? OFFSET ?", selectColumns, incompletePredicate)
	return db.queryProducts(ctx, query, limit, offset)
}

// ListIncompleteWithCluster незаполненные непроверенные несвязанные строки,
// у которых есть похожие продукты (очередь проверки оператором)
func (db *ProductDB) ListIncompleteWithCluster(ctx context.Context) ([]*ProductRow, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM product WHERE %s AND cluster_id != -1 AND active = 0 AND %s ORDER BY cluster_id, id",
		selectColumns, incompletePredicate, unlinkedPredicate,
	)
	return db.queryProducts(ctx, query)
}

// ListIncompleteUnique незаполненные несвязанные строки без похожих продуктов
func (db *ProductDB) ListIncompleteUnique(ctx context.Context) ([]*ProductRow, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM product WHERE %s AND cluster_id = -1 AND %s ORDER BY id",
		selectColumns, incompletePredicate, unlinkedPredicate,
	)
	return db.queryProducts(ctx, query)
}

// ListAlike строки той же группы, кроме самой productID.
// Связанные строки не участвуют в проходах, их метка устарела, поэтому они исключаются.
func (db *ProductDB) ListAlike(ctx context.Context, productID int64, clusterID int) ([]*ProductRow, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM product WHERE cluster_id = ? AND id != ? AND %s ORDER BY id",
		selectColumns, unlinkedPredicate,
	)
	return db.queryProducts(ctx, query, clusterID, productID)
}

// ListForClustering строки, участвующие в проходе кластеризации
func (db *ProductDB) ListForClustering(ctx context.Context) ([]*ProductRow, error) {
	query := fmt.Sprintf("SELECT %s FROM product WHERE %s ORDER BY id", selectColumns, unlinkedPredicate)
	return db.queryProducts(ctx, query)
}

// UpdateClusterFields перезаписывает поля кластера одной строки.
// Возвращает false, если строки нет.
func (db *ProductDB) UpdateClusterFields(ctx context.Context, id int64, clusterID, clusterCount int) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		"UPDATE product SET cluster_id = ?, cluster_count = ? WHERE id = ?",
		clusterID, clusterCount, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update cluster fields: %w", err)
	}
	return affected(res)
}

// SetLinkTo связывает непроверенную несвязанную строку с целью.
// Условие проверяется в том же UPDATE, false означает, что условие не выполнено.
func (db *ProductDB) SetLinkTo(ctx context.Context, sourceID, targetID int64) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		"UPDATE product SET link_to = ?, updated = ? WHERE id = ? AND active = 0 AND link_to IS NULL",
		targetID, time.Now().UTC(), sourceID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set link_to: %w", err)
	}
	return affected(res)
}

// SetActive помечает несвязанную строку как проверенную
func (db *ProductDB) SetActive(ctx context.Context, id int64) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		"UPDATE product SET active = 1, updated = ? WHERE id = ? AND link_to IS NULL",
		time.Now().UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set active: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
