package algorithms

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// ErrEmptyVocabulary возвращается, если в корпусе нет ни одного термина
var ErrEmptyVocabulary = errors.New("empty vocabulary; documents contain only stop words or are empty")

// токен: последовательность из двух и более символов слова
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// SparseVector разреженный вектор: индексы терминов по возрастанию и их веса
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Dot скалярное произведение двух разреженных векторов
func (v SparseVector) Dot(other SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(other.Indices) {
		switch {
		case v.Indices[i] == other.Indices[j]:
			sum += v.Values[i] * other.Values[j]
			i++
			j++
		case v.Indices[i] < other.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Norm евклидова норма вектора
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// IsZero true, если у вектора нет ненулевых компонент
func (v SparseVector) IsZero() bool {
	return len(v.Indices) == 0
}

// TFIDFVectorizer создает TF-IDF векторы для корпуса текстов.
// Словарь и веса обучаются на каждом пакете заново.
// TF - сырое число вхождений, IDF сглаженный: ln((1+n)/(1+df)) + 1, строки нормируются по L2.
type TFIDFVectorizer struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
	docCount   int
}

// NewTFIDFVectorizer создает новый TF-IDF векторизатор
func NewTFIDFVectorizer() *TFIDFVectorizer {
	return &TFIDFVectorizer{
		vocabulary: make(map[string]int),
	}
}

// Fit обучает векторизатор на корпусе документов
func (tf *TFIDFVectorizer) Fit(corpus []string) error {
	tf.docCount = len(corpus)
	docFreq := make(map[string]int)

	// Подсчитываем частоту документов для каждого термина
	for _, doc := range corpus {
		uniqueTokens := make(map[string]bool)
		for _, token := range tokenizeDocument(doc) {
			if !uniqueTokens[token] {
				docFreq[token]++
				uniqueTokens[token] = true
			}
		}
	}

	if len(docFreq) == 0 {
		return ErrEmptyVocabulary
	}

	// Словарь в отсортированном порядке, чтобы индексы не зависели от порядка обхода map
	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	tf.terms = terms
	tf.vocabulary = make(map[string]int, len(terms))
	tf.idf = make([]float64, len(terms))
	n := float64(tf.docCount)
	for i, term := range terms {
		tf.vocabulary[term] = i
		tf.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return nil
}

// Transform преобразует документ в нормированный TF-IDF вектор.
// Термины вне словаря игнорируются.
func (tf *TFIDFVectorizer) Transform(doc string) SparseVector {
	termFreq := make(map[int]int)
	for _, token := range tokenizeDocument(doc) {
		if idx, ok := tf.vocabulary[token]; ok {
			termFreq[idx]++
		}
	}

	indices := make([]int, 0, len(termFreq))
	for idx := range termFreq {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	vec := SparseVector{Indices: indices, Values: make([]float64, len(indices))}
	for i, idx := range indices {
		vec.Values[i] = float64(termFreq[idx]) * tf.idf[idx]
	}

	if norm := vec.Norm(); norm > 0 {
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}

	return vec
}

// FitTransform обучает и преобразует корпус
func (tf *TFIDFVectorizer) FitTransform(corpus []string) ([]SparseVector, error) {
	if err := tf.Fit(corpus); err != nil {
		return nil, err
	}

	vectors := make([]SparseVector, len(corpus))
	for i, doc := range corpus {
		vectors[i] = tf.Transform(doc)
	}
	return vectors, nil
}

// Vocabulary возвращает термины словаря в порядке индексов
func (tf *TFIDFVectorizer) Vocabulary() []string {
	out := make([]string, len(tf.terms))
	copy(out, tf.terms)
	return out
}

// IDF возвращает вес термина и признак его наличия в словаре
func (tf *TFIDFVectorizer) IDF(term string) (float64, bool) {
	idx, ok := tf.vocabulary[term]
	if !ok {
		return 0, false
	}
	return tf.idf[idx], true
}

// tokenizeDocument разбивает документ на токены
func tokenizeDocument(doc string) []string {
	return tokenRe.FindAllString(strings.ToLower(doc), -1)
}
