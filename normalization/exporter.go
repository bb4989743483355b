package normalization

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"foodcatalog/internal/domain/repositories"
)

// ExportFormat формат экспорта
type ExportFormat string

const (
	FormatJSON  ExportFormat = "json"
	FormatCSV   ExportFormat = "csv"
	FormatExcel ExportFormat = "xlsx"
)

// ParseExportFormat разбирает формат из запроса; пустая строка означает xlsx
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx", "excel":
		return FormatExcel, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType MIME тип файла выгрузки
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json; charset=utf-8"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

// Extension расширение файла выгрузки
func (f ExportFormat) Extension() string {
	return "." + string(f)
}

// ReviewRow строка очереди проверки
type ReviewRow struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Brands        string `json:"brands"`
	Categories    string `json:"categories"`
	ClusterID     int    `json:"cluster_id"`
	ClusterCount  int    `json:"cluster_count"`
	MissingFields int    `json:"missing_fields"`
	Created       string `json:"created"`
}

var reviewHeaders = []string{
	"ID", "Name", "Brands", "Categories",
	"Cluster ID", "Cluster Size", "Missing Fields", "Created",
}

// NewReviewRows строит строки выгрузки из продуктов
func NewReviewRows(products []repositories.Product) []ReviewRow {
	rows := make([]ReviewRow, len(products))
	for i := range products {
		p := &products[i]
		rows[i] = ReviewRow{
			ID:            p.ID,
			Name:          deref(p.Name),
			Brands:        deref(p.Brands),
			Categories:    deref(p.Categories),
			ClusterID:     p.ClusterID,
			ClusterCount:  p.DisplayClusterCount(),
			MissingFields: missingFields(p),
			Created:       p.Created.Format(time.RFC3339),
		}
	}
	return rows
}

func (r ReviewRow) record() []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Name,
		r.Brands,
		r.Categories,
		strconv.Itoa(r.ClusterID),
		strconv.Itoa(r.ClusterCount),
		strconv.Itoa(r.MissingFields),
		r.Created,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func missingFields(p *repositories.Product) int {
	missing := 0
	for _, t := range p.TextTargets() {
		if *t == nil {
			missing++
		}
	}
	for _, v := range p.Nutrition.Values() {
		if v == nil {
			missing++
		}
	}
	return missing
}

// Exporter выгружает очередь проверки дубликатов
type Exporter struct {
	now func() time.Time
}

// NewExporter создает новый экспортер
func NewExporter() *Exporter {
	return &Exporter{now: time.Now}
}

// Export пишет продукты в w в выбранном формате
func (e *Exporter) Export(w io.Writer, format ExportFormat, products []repositories.Product) error {
	rows := NewReviewRows(products)
	switch format {
	case FormatJSON:
		return e.exportJSON(w, rows)
	case FormatCSV:
		return e.exportCSV(w, rows)
	case FormatExcel:
		return e.exportExcel(w, rows)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func (e *Exporter) exportJSON(w io.Writer, rows []ReviewRow) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	result := map[string]interface{}{
		"exported_at": e.now().Format(time.RFC3339),
		"total":       len(rows),
		"items":       rows,
	}
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func (e *Exporter) exportCSV(w io.Writer, rows []ReviewRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(reviewHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.record()); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// ReviewSheet имя листа выгрузки
const ReviewSheet = "Review"

func (e *Exporter) exportExcel(w io.Writer, rows []ReviewRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ReviewSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	// Стиль заголовков
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range reviewHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ReviewSheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(reviewHeaders), 1)
	if err := f.SetCellStyle(ReviewSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for rowIdx, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		values := []interface{}{
			row.ID, row.Name, row.Brands, row.Categories,
			row.ClusterID, row.ClusterCount, row.MissingFields, row.Created,
		}
		if err := f.SetSheetRow(ReviewSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.ID, err)
		}
	}

	if err := f.SetColWidth(ReviewSheet, "B", "D", 30); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}
