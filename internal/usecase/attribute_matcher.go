package usecase

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tendermatch/backend/internal/domain"
)

// Value-match weight classes, strongest evidence first.
const (
	weightExactMatch   = 1.0
	weightSynonymMatch = 0.9
	weightPartialMatch = 0.7
	weightFuzzyMatch   = 0.6
	weightNoMatch      = 0.0
)

// Matching thresholds and the weight of optional characteristics in the
// overall score.
const (
	nameSimilarityThreshold  = 0.8
	valueSimilarityThreshold = 0.85
	optionalCharWeight       = 0.5

	// noCharacteristicsBaseline keeps classification-only candidates
	// rankable when a tender item specifies no characteristics at all.
	noCharacteristicsBaseline = 0.5

	// minPartialMatchLength guards substring containment against false
	// positives on short tokens.
	minPartialMatchLength = 3
)

// valueSynonyms groups interchangeable categorical values. Lookup is
// bidirectional: two values match if they share a group.
var valueSynonyms = map[string][]string{
	"черный":  {"черная", "черное", "black", "темный"},
	"белый":   {"белая", "белое", "white", "светлый"},
	"красный": {"красная", "красное", "red", "алый"},
	"синий":   {"синяя", "синее", "blue", "голубой"},
	"зеленый": {"зеленая", "зеленое", "green"},
	"да":      {"yes", "есть", "присутствует", "имеется", "+"},
	"нет":     {"no", "отсутствует", "без", "-"},
	"а4":      {"a4", "а-4", "a-4", "210x297"},
	"а3":      {"a3", "а-3", "a-3", "297x420"},
}

// MatchOutcome is the result of comparing a tender item's characteristics
// against one product's standardized attributes.
type MatchOutcome struct {
	Suitable      bool
	Score         float64
	Matched       []domain.MatchDetail
	Missing       []domain.MatchDetail
	TotalRequired int
	TotalMatched  int
}

// AttributeMatcher compares tender characteristics with product attributes.
type AttributeMatcher struct{}

// NewAttributeMatcher creates an attribute matcher.
func NewAttributeMatcher() *AttributeMatcher {
	return &AttributeMatcher{}
}

// Match scores a product's attributes against tender characteristics.
// Suitable means every required characteristic matched. The overall score
// weighs required characteristics at 1.0 and optional ones at 0.5, divided
// by the number of characteristics considered.
func (m *AttributeMatcher) Match(characteristics []domain.Characteristic, attributes []domain.StandardizedAttribute) MatchOutcome {
	if len(characteristics) == 0 {
		// No requirements: the candidate stays rankable at a fixed
		// neutral baseline, neither rejected nor perfect.
		return MatchOutcome{
			Suitable: true,
			Score:    noCharacteristicsBaseline,
		}
	}

	outcome := MatchOutcome{}
	totalScore := 0.0

	for _, char := range characteristics {
		if char.Required {
			outcome.TotalRequired++
		}

		result := m.matchSingle(char, attributes)

		weight := optionalCharWeight
		if char.Required {
			weight = 1.0
		}

		detail := domain.MatchDetail{
			Name:         char.Name,
			TenderValue:  char.Value,
			ProductValue: result.productValue,
			Unit:         char.Unit,
			Reason:       result.reason,
			Required:     char.Required,
		}

		if result.matched {
			outcome.TotalMatched++
			totalScore += result.score * weight
			outcome.Matched = append(outcome.Matched, detail)
		} else {
			outcome.Missing = append(outcome.Missing, detail)
		}
	}

	requiredMatched := 0
	for _, d := range outcome.Matched {
		if d.Required {
			requiredMatched++
		}
	}
	outcome.Suitable = requiredMatched == outcome.TotalRequired
	outcome.Score = totalScore / float64(len(characteristics))

	log.Debug().
		Bool("suitable", outcome.Suitable).
		Int("required_matched", requiredMatched).
		Int("total_required", outcome.TotalRequired).
		Float64("score", outcome.Score).
		Msg("attribute match computed")

	return outcome
}

type singleMatch struct {
	matched      bool
	score        float64
	productValue string
	reason       string
}

// matchSingle finds the best-matching product attribute for one
// characteristic: among attributes whose name similarity clears the
// threshold, the pair maximizing name_similarity * value_score wins.
func (m *AttributeMatcher) matchSingle(char domain.Characteristic, attributes []domain.StandardizedAttribute) singleMatch {
	charName := strings.ToLower(strings.TrimSpace(char.Name))
	charValue := strings.TrimSpace(char.Value)

	if charName == "" {
		return singleMatch{reason: "empty characteristic name"}
	}

	best := singleMatch{}
	bestCombined := 0.0
	anyNameMatched := false

	for _, attr := range attributes {
		attrName := strings.ToLower(strings.TrimSpace(attr.StandardName))
		attrValue := strings.TrimSpace(attr.StandardValue)

		nameSim := compareNames(charName, attrName)
		if nameSim < nameSimilarityThreshold {
			continue
		}
		anyNameMatched = true

		var value valueMatch
		if char.Kind == domain.KindQuantitative {
			value = matchNumericValue(charValue, attrValue, char.Unit, attr.Unit)
		} else {
			value = matchCategoricalValue(charValue, attrValue)
		}

		combined := nameSim * value.score
		if value.matched && combined > bestCombined {
			bestCombined = combined
			best = singleMatch{
				matched:      true,
				score:        combined,
				productValue: attrValue,
				reason:       value.reason,
			}
		}
	}

	if best.matched {
		return best
	}
	if anyNameMatched {
		return singleMatch{reason: "value mismatch"}
	}
	return singleMatch{reason: fmt.Sprintf("'%s' not found in product", char.Name)}
}

// compareNames returns a similarity in [0,1]: exact names score 1.0,
// containment 0.9, anything else the normalized edit similarity.
func compareNames(name1, name2 string) float64 {
	if name1 == name2 {
		return 1.0
	}
	if name1 != "" && name2 != "" && (strings.Contains(name2, name1) || strings.Contains(name1, name2)) {
		return 0.9
	}
	return editSimilarity(name1, name2)
}

type valueMatch struct {
	matched bool
	score   float64
	reason  string
}

// matchNumericValue compares a quantitative characteristic value against a
// product value. The tender side may encode a condition; the product side
// contributes its first number, converted to the tender's unit when a
// linear conversion is known. Unparsable sides fall back to opaque
// case-insensitive string equality.
func matchNumericValue(tenderValue, productValue, tenderUnit, productUnit string) valueMatch {
	cond := ParseCondition(tenderValue)
	candidate, ok := ExtractNumber(productValue)

	if cond.Op == OpOpaque || !ok {
		if strings.EqualFold(strings.TrimSpace(tenderValue), strings.TrimSpace(productValue)) {
			return valueMatch{matched: true, score: weightExactMatch, reason: "exact match"}
		}
		return valueMatch{score: weightNoMatch, reason: "could not extract numbers"}
	}

	if tenderUnit != "" && productUnit != "" && !strings.EqualFold(tenderUnit, productUnit) {
		converted, convertible := ConvertUnit(candidate, productUnit, tenderUnit)
		if !convertible {
			if strings.EqualFold(strings.TrimSpace(tenderValue), strings.TrimSpace(productValue)) {
				return valueMatch{matched: true, score: weightExactMatch, reason: "exact match"}
			}
			return valueMatch{score: weightNoMatch, reason: fmt.Sprintf("units not convertible: %s vs %s", tenderUnit, productUnit)}
		}
		candidate = converted
	}

	if cond.Evaluate(candidate) {
		return valueMatch{matched: true, score: weightExactMatch, reason: fmt.Sprintf("%v satisfies %s", candidate, cond.Raw)}
	}
	return valueMatch{score: weightNoMatch, reason: fmt.Sprintf("%v does not satisfy %s", candidate, cond.Raw)}
}

// matchCategoricalValue compares a qualitative value: exact, then synonym
// table, then substring containment, then fuzzy similarity.
func matchCategoricalValue(tenderValue, productValue string) valueMatch {
	tenderLower := strings.ToLower(strings.TrimSpace(tenderValue))
	productLower := strings.ToLower(strings.TrimSpace(productValue))

	if tenderLower == productLower {
		return valueMatch{matched: true, score: weightExactMatch, reason: "exact match"}
	}

	if areSynonyms(tenderLower, productLower) {
		return valueMatch{matched: true, score: weightSynonymMatch, reason: fmt.Sprintf("synonyms: '%s' = '%s'", tenderValue, productValue)}
	}

	if len([]rune(tenderLower)) > minPartialMatchLength {
		if strings.Contains(productLower, tenderLower) || strings.Contains(tenderLower, productLower) {
			return valueMatch{matched: true, score: weightPartialMatch, reason: "partial match"}
		}
	}

	if sim := editSimilarity(tenderLower, productLower); sim >= valueSimilarityThreshold {
		return valueMatch{matched: true, score: weightFuzzyMatch, reason: fmt.Sprintf("similar values (%.0f%%)", sim*100)}
	}

	return valueMatch{score: weightNoMatch, reason: fmt.Sprintf("'%s' ≠ '%s'", tenderValue, productValue)}
}

// areSynonyms reports whether both values belong to the same synonym group.
func areSynonyms(value1, value2 string) bool {
	for base, synonyms := range valueSynonyms {
		in1 := value1 == base
		in2 := value2 == base
		for _, syn := range synonyms {
			if value1 == syn {
				in1 = true
			}
			if value2 == syn {
				in2 = true
			}
		}
		if in1 && in2 {
			return true
		}
	}
	return false
}
