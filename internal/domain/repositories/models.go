package repositories

import (
	"time"
)

// NoCluster значение cluster_id для продукта без найденных дубликатов
const NoCluster = -1

// ProductTextFields текстовые поля продукта в порядке колонок
var ProductTextFields = []string{
	"name", "name_search", "remarks", "synonyms", "brands",
	"brands_search", "categories", "bron", "barcode", "unit",
}

// NutritionFields пищевые показатели в порядке Nutrition.Values
var NutritionFields = []string{
	"energy", "energy_kcal", "protein", "vegetable_protein", "animal_protein",
	"fat", "saturated_fat", "mono_unsaturated_fat", "poly_unsaturated_fat", "trans_fat",
	"cholesterol", "carbohydrates", "sugars", "added_sugars", "starch",
	"polyols", "fiber", "water", "alcohol", "salt",
	"sodium", "potassium", "calcium", "magnesium", "iron",
	"zinc", "vitamin_a", "vitamin_b12", "vitamin_c", "vitamin_d",
}

// ============================================================================
// Product Domain Models
// ============================================================================

// Nutrition пищевая ценность на 100 г; nil означает, что значение неизвестно
type Nutrition struct {
	Energy             *float64 `json:"energy"`
	EnergyKcal         *float64 `json:"energy_kcal"`
	Protein            *float64 `json:"protein"`
	VegetableProtein   *float64 `json:"vegetable_protein"`
	AnimalProtein      *float64 `json:"animal_protein"`
	Fat                *float64 `json:"fat"`
	SaturatedFat       *float64 `json:"saturated_fat"`
	MonoUnsaturatedFat *float64 `json:"mono_unsaturated_fat"`
	PolyUnsaturatedFat *float64 `json:"poly_unsaturated_fat"`
	TransFat           *float64 `json:"trans_fat"`
	Cholesterol        *float64 `json:"cholesterol"`
	Carbohydrates      *float64 `json:"carbohydrates"`
	Sugars             *float64 `json:"sugars"`
	AddedSugars        *float64 `json:"added_sugars"`
	Starch             *float64 `json:"starch"`
	Polyols            *float64 `json:"polyols"`
	Fiber              *float64 `json:"fiber"`
	Water              *float64 `json:"water"`
	Alcohol            *float64 `json:"alcohol"`
	Salt               *float64 `json:"salt"`
	Sodium             *float64 `json:"sodium"`
	Potassium          *float64 `json:"potassium"`
	Calcium            *float64 `json:"calcium"`
	Magnesium          *float64 `json:"magnesium"`
	Iron               *float64 `json:"iron"`
	Zinc               *float64 `json:"zinc"`
	VitaminA           *float64 `json:"vitamin_a"`
	VitaminB12         *float64 `json:"vitamin_b12"`
	VitaminC           *float64 `json:"vitamin_c"`
	VitaminD           *float64 `json:"vitamin_d"`
}

// Targets возвращает указатели на поля в порядке NutritionFields
func (n *Nutrition) Targets() []**float64 {
	return []**float64{
		&n.Energy, &n.EnergyKcal, &n.Protein, &n.VegetableProtein, &n.AnimalProtein,
		&n.Fat, &n.SaturatedFat, &n.MonoUnsaturatedFat, &n.PolyUnsaturatedFat, &n.TransFat,
		&n.Cholesterol, &n.Carbohydrates, &n.Sugars, &n.AddedSugars, &n.Starch,
		&n.Polyols, &n.Fiber, &n.Water, &n.Alcohol, &n.Salt,
		&n.Sodium, &n.Potassium, &n.Calcium, &n.Magnesium, &n.Iron,
		&n.Zinc, &n.VitaminA, &n.VitaminB12, &n.VitaminC, &n.VitaminD,
	}
}

// Values возвращает значения в порядке NutritionFields
func (n *Nutrition) Values() []*float64 {
	targets := n.Targets()
	values := make([]*float64, len(targets))
	for i, t := range targets {
		values[i] = *t
	}
	return values
}

// Product одна запись каталога продуктов
type Product struct {
	ID           int64   `json:"id"`
	Name         *string `json:"name"`
	NameSearch   *string `json:"name_search"`
	Remarks      *string `json:"remarks"`
	Synonyms     *string `json:"synonyms"`
	Brands       *string `json:"brands"`
	BrandsSearch *string `json:"brands_search"`
	Categories   *string `json:"categories"`
	Bron         *string `json:"bron"`
	Barcode      *string `json:"barcode"`
	Unit         *string `json:"unit"`

	Nutrition

	Active       int    `json:"active"`
	ClusterID    int    `json:"cluster_id"`
	ClusterCount int    `json:"cluster_count"`
	LinkTo       *int64 `json:"link_to"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// TextTargets возвращает указатели на текстовые поля в порядке ProductTextFields
func (p *Product) TextTargets() []**string {
	return []**string{
		&p.Name, &p.NameSearch, &p.Remarks, &p.Synonyms, &p.Brands,
		&p.BrandsSearch, &p.Categories, &p.Bron, &p.Barcode, &p.Unit,
	}
}

// TextField возвращает значение текстового поля по имени колонки
func (p *Product) TextField(name string) (*string, bool) {
	for i, field := range ProductTextFields {
		if field == name {
			return *p.TextTargets()[i], true
		}
	}
	return nil, false
}

// IsIncomplete true, если хотя бы одно текстовое поле или показатель не заполнен
func (p *Product) IsIncomplete() bool {
	for _, t := range p.TextTargets() {
		if *t == nil {
			return true
		}
	}
	for _, v := range p.Nutrition.Values() {
		if v == nil {
			return true
		}
	}
	return false
}

// IsLinked true, если продукт объединен с другим
func (p *Product) IsLinked() bool {
	return p.LinkTo != nil
}

// IsVerified true для проверенной канонической записи
func (p *Product) IsVerified() bool {
	return p.Active == 1
}

// DisplayClusterCount размер группы для отображения: продукт без группы считается уникальным
func (p *Product) DisplayClusterCount() int {
	if p.ClusterID == NoCluster || p.ClusterCount < 1 {
		return 1
	}
	return p.ClusterCount
}

// NeedsReview true для незаполненной непроверенной записи, у которой есть похожие продукты
func (p *Product) NeedsReview() bool {
	return p.IsIncomplete() && p.ClusterID != NoCluster && p.Active == 0 && p.LinkTo == nil
}

// ProductFilter параметры постраничной выборки
type ProductFilter struct {
	Limit  int
	Offset int
}

// ClusterAssignment результат прохода кластеризации для одной строки
type ClusterAssignment struct {
	ID           int64 `json:"id"`
	ClusterID    int   `json:"cluster_id"`
	ClusterCount int   `json:"cluster_count"`
}
