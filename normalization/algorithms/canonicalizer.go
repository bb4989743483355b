package algorithms

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DutchStopWords список служебных слов (артикли, союзы, предлоги), которые
// удаляются из названий продуктов целыми словами
var DutchStopWords = []string{
	"met", "en", "in", "van", "op", "voor", "bij", "uit", "door",
	"naar", "om", "te", "de", "het", "een", "als", "maar", "of",
	"ook", "dan", "tot", "over",
}

var (
	digitsAndCommasRe = regexp.MustCompile(`[,\p{Nd}]+`)
	symbolsRe         = regexp.MustCompile(`[()=&%+;/.°-]+`)
	// 'n перед границей слова (zo'n, 'n beetje)
	dutchPossessiveRe = regexp.MustCompile(`(?:'n|’n)([^\p{L}\p{N}_]|$)`)
	// апостроф перед символом слова
	apostropheRe = regexp.MustCompile(`['’]([\p{L}\p{N}_])`)
	wordRunRe    = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// TextCanonicalizer приводит текстовые поля продукта к единой строке
// для векторизации. Чистая функция: одинаковый вход дает побайтно одинаковый выход.
type TextCanonicalizer struct {
	stemmer   Stemmer
	stopWords map[string]bool
}

// NewTextCanonicalizer создает канонизатор с английским стеммером Snowball
func NewTextCanonicalizer() *TextCanonicalizer {
	return NewTextCanonicalizerWithStemmer(NewEnglishStemmer())
}

// NewTextCanonicalizerWithStemmer создает канонизатор с заданным стеммером
func NewTextCanonicalizerWithStemmer(stemmer Stemmer) *TextCanonicalizer {
	stopWords := make(map[string]bool, len(DutchStopWords))
	for _, w := range DutchStopWords {
		stopWords[w] = true
	}
	return &TextCanonicalizer{
		stemmer:   stemmer,
		stopWords: stopWords,
	}
}

// Canonicalize выполняет полный конвейер над упорядоченным списком полей.
// nil поля заменяются пустой строкой.
func (c *TextCanonicalizer) Canonicalize(fields []*string) string {
	// 1. Конкатенация полей в фиксированном порядке
	parts := make([]string, len(fields))
	for i, f := range fields {
		if f != nil {
			parts[i] = *f
		}
	}
	text := strings.Join(parts, " ")

	// 2. Нижний регистр, удаление цифр и запятых
	text = strings.ToLower(text)
	text = digitsAndCommasRe.ReplaceAllString(text, "")
	text = collapseSpaces(text)

	// 3. Символы, притяжательные формы, стоп-слова
	text = c.stripSymbolsAndStopWords(text)

	// 4. Дедупликация слов
	text = DedupeWords(text)

	// 5. Стемминг
	text = strings.Join(c.stemTokens(text), " ")

	// 6. Повторная дедупликация
	text = DedupeWords(text)

	// 7. Удаление однобуквенных слов
	text = removeOneLetterWords(text)

	// 8. Финальная дедупликация
	return DedupeWords(text)
}

// CanonicalizeStrings удобная обертка для непустых значений
func (c *TextCanonicalizer) CanonicalizeStrings(fields ...string) string {
	ptrs := make([]*string, len(fields))
	for i := range fields {
		ptrs[i] = &fields[i]
	}
	return c.Canonicalize(ptrs)
}

// CanonicalizeBatch канонизирует пакет строк на пуле воркеров, порядок сохраняется.
// Все строки пакета проходят один и тот же конвейер.
func (c *TextCanonicalizer) CanonicalizeBatch(ctx context.Context, batch [][]*string, workers int) ([]string, error) {
	if workers <= 0 {
		workers = 1
	}

	out := make([]string, len(batch))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range batch {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = c.Canonicalize(batch[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// stemTokens отделяет знаки препинания от слов ("chips!" -> "chip", "!").
// Стеммер получает только буквенно-цифровые части, каждый знак становится
// отдельным токеном и удаляется на шаге 7.
func (c *TextCanonicalizer) stemTokens(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(text) {
		pos := 0
		for _, loc := range wordRunRe.FindAllStringIndex(field, -1) {
			tokens = appendPunctuation(tokens, field[pos:loc[0]])
			tokens = append(tokens, c.stemmer.Stem(field[loc[0]:loc[1]]))
			pos = loc[1]
		}
		tokens = appendPunctuation(tokens, field[pos:])
	}
	return tokens
}

func appendPunctuation(tokens []string, s string) []string {
	for _, r := range s {
		tokens = append(tokens, string(r))
	}
	return tokens
}

func (c *TextCanonicalizer) stripSymbolsAndStopWords(s string) string {
	s = symbolsRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "'s", " ")
	s = strings.ReplaceAll(s, "’s", " ")
	s = dutchPossessiveRe.ReplaceAllString(s, " $1")
	s = apostropheRe.ReplaceAllString(s, " $1")
	s = wordRunRe.ReplaceAllStringFunc(s, func(word string) string {
		if c.stopWords[strings.ToLower(word)] {
			return " "
		}
		return word
	})
	return collapseSpaces(s)
}

// DedupeWords оставляет первое вхождение каждого слова по ключу сравнения,
// сохраняя исходный текст и порядок слов
func DedupeWords(text string) string {
	tokens := strings.Fields(text)
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))

	for _, t := range tokens {
		key := DedupeKey(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}

	return strings.Join(out, " ")
}

// DedupeKey вычисляет ключ сравнения: NFKD, только ASCII, нижний регистр,
// только буквы и цифры. Пустой ключ заменяется самим словом в нижнем регистре.
func DedupeKey(token string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, err := transform.String(t, token)
	if err != nil {
		ascii = ""
	}

	var b strings.Builder
	for _, r := range strings.ToLower(ascii) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return strings.ToLower(token)
	}
	return b.String()
}

func removeOneLetterWords(text string) string {
	tokens := strings.Fields(text)
	out := tokens[:0]
	for _, t := range tokens {
		if utf8.RuneCountInString(t) > 1 {
			out = append(out, t)
		}
	}
	return strings.Join(out, " ")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
