package algorithms

import (
	"errors"
	"fmt"
	"sort"
)

// NoiseLabel метка точки, не попавшей ни в один кластер
const NoiseLabel = -1

// Параметры кластеризации каталога
const (
	DefaultEps        = 0.3
	DefaultMinSamples = 3
)

// ErrInvalidParams неверные параметры DBSCAN
var ErrInvalidParams = errors.New("invalid dbscan parameters")

// DBSCAN плотностная кластеризация с косинусным расстоянием.
// Окрестность точки - все точки на расстоянии <= Eps, включая саму точку.
// Точка является ядром, если в ее окрестности не меньше MinSamples точек.
type DBSCAN struct {
	Eps        float64
	MinSamples int
}

// NewDBSCAN создает кластеризатор с параметрами каталога
func NewDBSCAN() *DBSCAN {
	return &DBSCAN{Eps: DefaultEps, MinSamples: DefaultMinSamples}
}

// CosineDistance косинусное расстояние между L2-нормированными векторами.
// Нулевой вектор находится на расстоянии 1 от любого другого.
func CosineDistance(a, b SparseVector) float64 {
	if a.IsZero() || b.IsZero() {
		return 1
	}
	d := 1 - a.Dot(b)
	if d < 0 {
		return 0
	}
	return d
}

// FitPredict возвращает метку кластера для каждого вектора.
// Векторы должны быть L2-нормированы. Метки нумеруются с нуля в порядке
// обнаружения ядер по индексу входа, шум получает NoiseLabel.
func (d *DBSCAN) FitPredict(vectors []SparseVector) ([]int, error) {
	if d.Eps <= 0 || d.MinSamples < 1 {
		return nil, fmt.Errorf("%w: eps=%v min_samples=%d", ErrInvalidParams, d.Eps, d.MinSamples)
	}

	neighborhoods := d.neighborhoods(vectors)

	isCore := make([]bool, len(vectors))
	for i, nb := range neighborhoods {
		isCore[i] = len(nb) >= d.MinSamples
	}

	labels := make([]int, len(vectors))
	for i := range labels {
		labels[i] = NoiseLabel
	}

	label := 0
	stack := make([]int, 0, len(vectors))
	for start := range vectors {
		if labels[start] != NoiseLabel || !isCore[start] {
			continue
		}

		// Обход в глубину от ядра: граничные точки получают метку, но не расширяют кластер
		i := start
		for {
			if labels[i] == NoiseLabel {
				labels[i] = label
				if isCore[i] {
					for _, v := range neighborhoods[i] {
						if labels[v] == NoiseLabel {
							stack = append(stack, v)
						}
					}
				}
			}
			if len(stack) == 0 {
				break
			}
			i = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
		label++
	}

	return labels, nil
}

// neighborhoods строит окрестности через инвертированный индекс терминов:
// скалярное произведение считается только для пар с общими терминами.
func (d *DBSCAN) neighborhoods(vectors []SparseVector) [][]int {
	postings := make(map[int][]int)
	for i, v := range vectors {
		for _, idx := range v.Indices {
			postings[idx] = append(postings[idx], i)
		}
	}

	result := make([][]int, len(vectors))
	dots := make(map[int]float64)
	for i, v := range vectors {
		if v.IsZero() {
			// расстояние до себя считаем нулевым, как у остальных точек
			result[i] = []int{i}
			continue
		}

		clear(dots)
		for k, idx := range v.Indices {
			w := v.Values[k]
			for _, j := range postings[idx] {
				dots[j] += w * valueAt(vectors[j], idx)
			}
		}

		nb := make([]int, 0, len(dots))
		for j, dot := range dots {
			dist := 1 - dot
			if dist < 0 {
				dist = 0
			}
			if dist <= d.Eps {
				nb = append(nb, j)
			}
		}
		sort.Ints(nb)
		if !containsIndex(nb, i) {
			nb = insertSorted(nb, i)
		}
		result[i] = nb
	}

	return result
}

// valueAt вес термина idx в векторе (индексы отсортированы)
func valueAt(v SparseVector, idx int) float64 {
	lo, hi := 0, len(v.Indices)
	for lo < hi {
		mid := (lo + hi) / 2
		if v.Indices[mid] < idx {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(v.Indices) && v.Indices[lo] == idx {
		return v.Values[lo]
	}
	return 0
}

func containsIndex(sorted []int, x int) bool {
	for _, v := range sorted {
		if v == x {
			return true
		}
	}
	return false
}

func insertSorted(sorted []int, x int) []int {
	pos := len(sorted)
	for k, v := range sorted {
		if v > x {
			pos = k
			break
		}
	}
	sorted = append(sorted, 0)
	copy(sorted[pos+1:], sorted[pos:])
	sorted[pos] = x
	return sorted
}
