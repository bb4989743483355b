package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"foodcatalog/internal/domain/repositories"
)

// ParseProductsXLSX читает продукты с первого листа Excel файла.
// Заголовки колонок совпадают с именами полей продукта.
func ParseProductsXLSX(r io.Reader) ([]repositories.Product, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	// Получаем имя первого листа
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows: %w", err)
	}

	return parseRows(rows)
}
