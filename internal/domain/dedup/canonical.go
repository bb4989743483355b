package dedup

import (
	"foodcatalog/internal/domain/repositories"
	"foodcatalog/normalization/algorithms"
)

// ProductFields значения выбранных текстовых полей в заданном порядке.
// Неизвестное имя поля дает nil, как и пустое значение.
func ProductFields(p *repositories.Product, fields []string) []*string {
	values := make([]*string, len(fields))
	for i, name := range fields {
		values[i], _ = p.TextField(name)
	}
	return values
}

// CanonicalizeProduct канонический текст продукта по списку полей
func CanonicalizeProduct(c *algorithms.TextCanonicalizer, p *repositories.Product, fields []string) string {
	return c.Canonicalize(ProductFields(p, fields))
}
