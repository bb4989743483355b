package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"foodcatalog/internal/domain/repositories"
)

// ParseProductsHTML читает продукты из первой таблицы HTML страницы.
// Кодировка определяется по contentType и meta тегам страницы.
func ParseProductsHTML(r io.Reader, contentType string) ([]repositories.Product, []string, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to detect page encoding: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, nil, fmt.Errorf("no table found in HTML page")
	}

	var rows [][]string
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(j int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})

	return parseRows(rows)
}
