package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// TextColumns текстовые колонки таблицы product в порядке хранения
var TextColumns = []string{
	"name", "name_search", "remarks", "synonyms", "brands",
	"brands_search", "categories", "bron", "barcode", "unit",
}

// NutrientColumns колонки пищевой ценности в порядке хранения
var NutrientColumns = []string{
	"energy", "energy_kcal", "protein", "vegetable_protein", "animal_protein",
	"fat", "saturated_fat", "mono_unsaturated_fat", "poly_unsaturated_fat", "trans_fat",
	"cholesterol", "carbohydrates", "sugars", "added_sugars", "starch",
	"polyols", "fiber", "water", "alcohol", "salt",
	"sodium", "potassium", "calcium", "magnesium", "iron",
	"zinc", "vitamin_a", "vitamin_b12", "vitamin_c", "vitamin_d",
}

// productMigrations миграции схемы каталога
func productMigrations() []Migration {
	return []Migration{
		{Name: "001_create_product", Apply: createProductTable},
		{Name: "002_product_indexes", Apply: createProductIndexes},
	}
}

func createProductTable(tx *sql.Tx) error {
	var cols []string
	cols = append(cols, "id INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, c := range TextColumns {
		cols = append(cols, c+" TEXT")
	}
	for _, c := range NutrientColumns {
		cols = append(cols, c+" REAL")
	}
	cols = append(cols,
		"active INTEGER NOT NULL DEFAULT 0",
		"cluster_id INTEGER NOT NULL DEFAULT -1",
		"cluster_count INTEGER NOT NULL DEFAULT 1",
		"link_to INTEGER REFERENCES product(id)",
		"created TIMESTAMP DEFAULT CURRENT_TIMESTAMP",
		"updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP",
		// связанная строка всегда остается непроверенной
		"CHECK (link_to IS NULL OR active = 0)",
	)

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS product (\n\t%s\n)", strings.Join(cols, ",\n\t"))
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create product table: %w", err)
	}
	return nil
}

func createProductIndexes(tx *sql.Tx) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_product_cluster ON product(cluster_id)`,
		`CREATE INDEX IF NOT EXISTS idx_product_link_to ON product(link_to)`,
		`CREATE INDEX IF NOT EXISTS idx_product_active ON product(active)`,
	}
	for _, q := range indexes {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
