package importer

import (
	"fmt"
	"math"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"foodcatalog/internal/domain/repositories"
)

// DemoOptions параметры демо-каталога
type DemoOptions struct {
	Seed int64
	// Size число уникальных продуктов
	Size int
	// DuplicateGroups сколько продуктов получат по два дубликата
	DuplicateGroups int
	// FillRate доля заполненных пищевых показателей, 0..1
	FillRate float64
}

var (
	demoAdjectives = []string{"biologische", "volkoren", "halfvolle", "gezouten", "ongezouten", "romige", "krokante", "verse"}
	demoCategories = []string{"zuivel", "brood", "snacks", "dranken", "groente", "fruit", "beleg", "ontbijt"}
	demoSources    = []string{"nevo", "scrape", "handmatig"}
	demoWeights    = []string{"250g", "500 g", "1000g"}
)

// GenerateDemoCatalog создает воспроизводимый каталог с заранее заложенными дубликатами.
// Дубликаты отличаются регистром, весом и пунктуацией.
func GenerateDemoCatalog(opts DemoOptions) []repositories.Product {
	faker := gofakeit.New(opts.Seed)
	if opts.DuplicateGroups > opts.Size {
		opts.DuplicateGroups = opts.Size
	}

	products := make([]repositories.Product, 0, opts.Size+2*opts.DuplicateGroups)
	for i := 0; i < opts.Size; i++ {
		base := demoProduct(faker, i, opts.FillRate)
		products = append(products, base)

		if i < opts.DuplicateGroups {
			name := *base.Name
			upper := strings.ToUpper(name) + " " + faker.RandomString(demoWeights)
			wrapped := "(" + name + "), " + faker.RandomString(demoWeights)
			for _, variant := range []string{upper, wrapped} {
				dup := demoProduct(faker, i, opts.FillRate)
				dup.Name = strPtr(variant)
				dup.Brands = base.Brands
				dup.Categories = base.Categories
				products = append(products, dup)
			}
		}
	}
	return products
}

func demoProduct(faker *gofakeit.Faker, i int, fillRate float64) repositories.Product {
	// Порядковый номер делает названия уникальными
	name := fmt.Sprintf("%s %s %s", faker.RandomString(demoAdjectives), faker.Snack(), demoSuffix(i))
	p := repositories.Product{
		Name:         strPtr(name),
		Brands:       strPtr(faker.Company()),
		Categories:   strPtr(faker.RandomString(demoCategories)),
		Bron:         strPtr(faker.RandomString(demoSources)),
		ClusterID:    repositories.NoCluster,
		ClusterCount: 1,
	}
	if faker.Bool() {
		p.Barcode = strPtr(faker.Numerify("87#########"))
	}
	for _, target := range p.Nutrition.Targets() {
		if faker.Float64Range(0, 1) < fillRate {
			v := math.Round(faker.Float64Range(0, 100)*10) / 10
			*target = &v
		}
	}
	return p
}

// demoSuffix буквенная метка продукта: 0 -> "aa", 1 -> "ab"
func demoSuffix(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return "serie" + string(letters[(i/26)%26]) + string(letters[i%26])
}

func strPtr(s string) *string { return &s }
