package importer

import (
	"fmt"
	"strconv"
	"strings"

	"foodcatalog/internal/domain/repositories"
)

// columnMap сопоставляет индекс колонки файла с полем продукта
type columnMap struct {
	text     map[int]int // колонка -> индекс в ProductTextFields
	nutrient map[int]int // колонка -> индекс в NutritionFields
	ignored  []string
}

// normalizeHeader приводит заголовок к имени колонки: "Energy kcal" -> "energy_kcal"
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	return h
}

func buildColumnMap(headers []string) (*columnMap, error) {
	textIdx := make(map[string]int, len(repositories.ProductTextFields))
	for i, f := range repositories.ProductTextFields {
		textIdx[f] = i
	}
	nutrientIdx := make(map[string]int, len(repositories.NutritionFields))
	for i, f := range repositories.NutritionFields {
		nutrientIdx[f] = i
	}

	cm := &columnMap{text: make(map[int]int), nutrient: make(map[int]int)}
	for col, header := range headers {
		name := normalizeHeader(header)
		if i, ok := textIdx[name]; ok {
			cm.text[col] = i
			continue
		}
		if i, ok := nutrientIdx[name]; ok {
			cm.nutrient[col] = i
			continue
		}
		if name != "" {
			cm.ignored = append(cm.ignored, header)
		}
	}

	if _, ok := cm.textColumn("name"); !ok {
		return nil, fmt.Errorf("required column 'name' not found in headers")
	}
	return cm, nil
}

func (cm *columnMap) textColumn(field string) (int, bool) {
	for col, i := range cm.text {
		if repositories.ProductTextFields[i] == field {
			return col, true
		}
	}
	return 0, false
}

// product строит продукт из ячеек строки. Пустые ячейки остаются null.
func (cm *columnMap) product(cells []string) (*repositories.Product, error) {
	p := &repositories.Product{ClusterID: repositories.NoCluster, ClusterCount: 1}
	texts := p.TextTargets()
	nutrients := p.Nutrition.Targets()

	for col, raw := range cells {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		if i, ok := cm.text[col]; ok {
			v := value
			*texts[i] = &v
			continue
		}
		if i, ok := cm.nutrient[col]; ok {
			f, err := parseNumber(value)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", repositories.NutritionFields[i], err)
			}
			if f != nil {
				*nutrients[i] = f
			}
		}
	}
	return p, nil
}

// parseNumber разбирает число с точкой или запятой; "-" означает отсутствие значения
func parseNumber(s string) (*float64, error) {
	if s == "-" || strings.EqualFold(s, "n/a") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &f, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseRows общий разбор таблицы: первая строка заголовок, строки без name пропускаются
func parseRows(rows [][]string) ([]repositories.Product, []string, error) {
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("table is too short, expected at least header row and one data row")
	}

	cm, err := buildColumnMap(rows[0])
	if err != nil {
		return nil, nil, err
	}

	var products []repositories.Product
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		if isEmptyRow(row) {
			continue
		}
		p, err := cm.product(row)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", rowIdx+1, err)
		}
		if p.Name == nil {
			continue
		}
		products = append(products, *p)
	}

	if len(products) == 0 {
		return nil, nil, fmt.Errorf("no valid products found. Check column mapping")
	}
	return products, cm.ignored, nil
}
