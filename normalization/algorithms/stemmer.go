package algorithms

import (
	"strings"
	"sync"

	"github.com/kljensen/snowball"
)

// Stemmer interface defines methods for stemming words
type Stemmer interface {
	// Stem returns the stemmed version of a word
	Stem(word string) string

	// StemTokens returns stemmed versions of multiple words
	StemTokens(tokens []string) []string
}

// EnglishStemmer implements stemming for English food names using the Snowball (Porter2) algorithm.
// Safe for concurrent use: canonicalization of a batch shares one stemmer across workers.
type EnglishStemmer struct {
	language string
	cache    map[string]string
	mu       sync.RWMutex
	useCache bool
}

// NewEnglishStemmer creates a new English stemmer with an in-memory cache
func NewEnglishStemmer() *EnglishStemmer {
	return &EnglishStemmer{
		language: "english",
		cache:    make(map[string]string),
		useCache: true,
	}
}

// NewEnglishStemmerWithoutCache creates a stemmer without caching
func NewEnglishStemmerWithoutCache() *EnglishStemmer {
	return &EnglishStemmer{
		language: "english",
		useCache: false,
	}
}

// Stem returns the stemmed version of a word.
// Example: "organic" -> "organ", "apples" -> "appl"
func (s *EnglishStemmer) Stem(word string) string {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return ""
	}

	if s.useCache {
		s.mu.RLock()
		cached, found := s.cache[normalized]
		s.mu.RUnlock()
		if found {
			return cached
		}
	}

	stemmed, err := snowball.Stem(normalized, s.language, true)
	if err != nil {
		// Unsupported language only; keep the word as is
		stemmed = normalized
	}

	if s.useCache {
		s.mu.Lock()
		s.cache[normalized] = stemmed
		s.mu.Unlock()
	}

	return stemmed
}

// StemTokens returns stemmed versions of multiple words, order preserved
func (s *EnglishStemmer) StemTokens(tokens []string) []string {
	stemmed := make([]string, len(tokens))
	for i, token := range tokens {
		stemmed[i] = s.Stem(token)
	}
	return stemmed
}

// CacheSize returns the number of cached stems
func (s *EnglishStemmer) CacheSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}
