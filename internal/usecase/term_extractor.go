package usecase

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tendermatch/backend/internal/domain"
)

// termStopWords includes basic Russian stop words plus tender-document noise
var termStopWords = map[string]bool{
	// Basic Russian stop words
	"и": true, "в": true, "во": true, "не": true, "что": true, "он": true,
	"на": true, "я": true, "с": true, "со": true, "как": true, "а": true,
	"то": true, "все": true, "она": true, "так": true, "его": true, "но": true,
	"да": true, "ты": true, "к": true, "у": true, "же": true, "вы": true,
	"за": true, "бы": true, "по": true, "только": true, "ее": true, "мне": true,
	"было": true, "вот": true, "от": true, "меня": true, "еще": true,
	"нет": true, "о": true, "из": true, "ему": true, "теперь": true,
	"когда": true, "даже": true, "ну": true, "до": true, "для": true,
	"под": true, "над": true, "при": true, "без": true,
	// Unit/packaging noise
	"шт": true, "штук": true, "штука": true, "единица": true, "единиц": true,
	"упаковка": true, "комплект": true, "набор": true,
	// Procurement boilerplate
	"значение": true, "характеристика": true, "участник": true, "закупки": true,
	"заявка": true, "производитель": true, "данных": true, "наличие": true,
	"отсутствие": true, "должен": true, "должна": true, "должно": true,
	"обязательно": true,
}

// importantCharNames is the curated vocabulary of characteristic names worth
// indexing as search terms in their own right.
var importantCharNames = map[string]bool{
	"цвет": true, "размер": true, "габариты": true, "длина": true,
	"ширина": true, "высота": true, "диаметр": true, "толщина": true,
	"вес": true, "масса": true, "объем": true, "материал": true,
	"тип": true, "вид": true, "формат": true, "модель": true,
	"марка": true, "бренд": true, "производитель": true, "мощность": true,
	"напряжение": true, "память": true, "процессор": true, "диагональ": true,
	"разрешение": true, "интерфейс": true, "скорость": true, "емкость": true,
	"плотность": true,
}

// termSynonyms expands search terms bidirectionally.
var termSynonyms = map[string][]string{
	"красный":    {"красная", "красное", "red"},
	"синий":      {"синяя", "синее", "голубой", "blue"},
	"черный":     {"черная", "черное", "black"},
	"белый":      {"белая", "белое", "white"},
	"зеленый":    {"зеленая", "зеленое", "green"},
	"папка":      {"скоросшиватель", "folder", "файл"},
	"ручка":      {"авторучка", "pen"},
	"карандаш":   {"pencil", "грифель"},
	"блок":       {"блоки", "стикеры", "записи", "заметки"},
	"компьютер":  {"пк", "pc", "computer"},
	"ноутбук":    {"лэптоп", "laptop", "notebook"},
	"монитор":    {"дисплей", "экран", "display"},
	"клавиатура": {"keyboard", "клавиши"},
	"мышь":       {"mouse", "манипулятор"},
}

// numericRangeIndicators mark characteristic values that encode a numeric
// condition rather than searchable text.
var numericRangeIndicators = []string{"≥", "≤", ">", "<", "более", "менее", "от", "до", "свыше"}

// weightPlan assigns arithmetic-decay weights within one term category.
type weightPlan struct {
	start float64
	step  float64
	max   int
}

// Per-category weight plans: name tokens weigh most, then required values,
// optional values, and finally important characteristic names.
var (
	nameTermsPlan      = weightPlan{start: 4.0, step: 0.3, max: 5}
	requiredValuesPlan = weightPlan{start: 3.5, step: 0.2, max: 5}
	optionalValuesPlan = weightPlan{start: 2.5, step: 0.2, max: 3}
	charNamesPlan      = weightPlan{start: 1.8, step: 0.2, max: 4}
)

const (
	synonymWeightPenalty = 0.7
	minTermWeight        = 1.0
	maxQueryTerms        = 3
)

// TermSet is the weighted bag of search terms for one tender item,
// consumed by the enhanced full-text search.
type TermSet struct {
	Query         string
	WeightedTerms map[string]float64
	AllTerms      []string
}

// TermExtractor derives weighted search terms from tender items.
type TermExtractor struct {
	reverseSynonyms map[string][]string
}

// NewTermExtractor creates a term extractor with the synonym table expanded
// in both directions. Expansion order follows the table's list order so
// weight assignment stays deterministic.
func NewTermExtractor() *TermExtractor {
	reverse := make(map[string][]string)
	add := func(from, to string) {
		for _, existing := range reverse[from] {
			if existing == to {
				return
			}
		}
		reverse[from] = append(reverse[from], to)
	}
	for main, synonyms := range termSynonyms {
		for _, syn := range synonyms {
			add(main, syn)
			add(syn, main)
		}
	}
	return &TermExtractor{reverseSynonyms: reverse}
}

type rawTerms struct {
	nameTerms      []string
	charNames      []string
	requiredValues []string
	optionalValues []string
}

// Extract produces the weighted term set for a tender item.
func (e *TermExtractor) Extract(item domain.TenderItem) TermSet {
	raw := e.extractRaw(item)

	originals := make(map[string]bool)
	for _, terms := range [][]string{raw.nameTerms, raw.charNames, raw.requiredValues, raw.optionalValues} {
		for _, t := range terms {
			originals[t] = true
		}
	}

	expandedNames := e.expand(raw.nameTerms)
	expandedRequired := e.expand(raw.requiredValues)
	expandedOptional := e.expand(raw.optionalValues)
	expandedCharNames := e.expand(raw.charNames)

	result := TermSet{WeightedTerms: make(map[string]float64)}

	if len(raw.nameTerms) > 0 {
		queryTerms := raw.nameTerms
		if len(queryTerms) > maxQueryTerms {
			queryTerms = queryTerms[:maxQueryTerms]
		}
		result.Query = strings.Join(queryTerms, " ")
	}

	assignWeights(result.WeightedTerms, expandedNames, nameTermsPlan)
	assignWeights(result.WeightedTerms, expandedRequired, requiredValuesPlan)
	assignWeights(result.WeightedTerms, expandedOptional, optionalValuesPlan)

	important := make([]string, 0, len(expandedCharNames))
	for _, term := range expandedCharNames {
		for imp := range importantCharNames {
			if strings.Contains(term, imp) {
				important = append(important, term)
				break
			}
		}
	}
	assignWeights(result.WeightedTerms, important, charNamesPlan)

	// Expansion-only terms carry less evidence than the tender's own words.
	for term, weight := range result.WeightedTerms {
		if !originals[term] {
			result.WeightedTerms[term] = weight * synonymWeightPenalty
		}
	}

	for term, weight := range result.WeightedTerms {
		if weight < minTermWeight {
			delete(result.WeightedTerms, term)
		}
	}

	seen := make(map[string]bool)
	for _, terms := range [][]string{expandedNames, expandedRequired, expandedOptional, expandedCharNames} {
		for _, t := range terms {
			if !seen[t] {
				seen[t] = true
				result.AllTerms = append(result.AllTerms, t)
			}
		}
	}

	log.Debug().
		Str("item", item.Name).
		Str("query", result.Query).
		Int("weighted_terms", len(result.WeightedTerms)).
		Int("all_terms", len(result.AllTerms)).
		Msg("terms extracted")

	return result
}

func (e *TermExtractor) extractRaw(item domain.TenderItem) rawTerms {
	raw := rawTerms{}

	if item.Name != "" {
		raw.nameTerms = tokenize(item.Name, termStopWords)
	}

	for _, char := range item.Characteristics {
		if char.Name != "" {
			raw.charNames = append(raw.charNames, tokenize(char.Name, termStopWords)...)
		}
		if char.Value == "" || isNumericRange(char.Value) {
			continue
		}
		valueTerms := tokenize(char.Value, termStopWords)
		if char.Required {
			raw.requiredValues = append(raw.requiredValues, valueTerms...)
		} else {
			raw.optionalValues = append(raw.optionalValues, valueTerms...)
		}
	}

	raw.nameTerms = dedupe(raw.nameTerms)
	raw.charNames = dedupe(raw.charNames)
	raw.requiredValues = dedupe(raw.requiredValues)
	raw.optionalValues = dedupe(raw.optionalValues)
	return raw
}

// expand appends synonyms after the original terms, preserving order.
func (e *TermExtractor) expand(terms []string) []string {
	expanded := make([]string, len(terms))
	copy(expanded, terms)

	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		seen[t] = true
	}
	for _, term := range terms {
		for _, syn := range e.reverseSynonyms[term] {
			if !seen[syn] {
				seen[syn] = true
				expanded = append(expanded, syn)
			}
		}
	}
	return expanded
}

// assignWeights applies a category's arithmetic decay, never overwriting a
// term already weighted by a stronger category.
func assignWeights(weighted map[string]float64, terms []string, plan weightPlan) {
	limit := plan.max
	if len(terms) < limit {
		limit = len(terms)
	}
	for i := 0; i < limit; i++ {
		term := terms[i]
		if _, exists := weighted[term]; exists {
			continue
		}
		weight := plan.start - float64(i)*plan.step
		if weight < minTermWeight {
			weight = minTermWeight
		}
		weighted[term] = weight
	}
}

func isNumericRange(value string) bool {
	for _, ind := range numericRangeIndicators {
		if strings.Contains(value, ind) {
			return true
		}
	}
	return false
}

func dedupe(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	var out []string
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
