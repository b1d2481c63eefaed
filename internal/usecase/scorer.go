package usecase

import "math"

// Signal weights for the composed product score.
const (
	attributeScoreWeight = 0.4
	textScoreWeight      = 0.3
	semanticScoreWeight  = 0.3

	// neutralSemanticScore stands in when the semantic stage did not run,
	// so skipped items are not penalized against scored ones.
	neutralSemanticScore = 0.5

	// disabledCharacteristicScore replaces the attribute signal when
	// characteristic matching is switched off entirely.
	disabledCharacteristicScore = 0.8

	// textScoreNormalizer scales raw full-text engine scores (which can
	// run well above 1) into [0,1].
	textScoreNormalizer = 10.0

	// maxSupplierPriceBonus is the multiplier at a price ratio of zero;
	// the bonus decays linearly to 1.0 at the tolerance boundary.
	maxSupplierPriceBonus = 2.0
)

// Scorer composes a product's final score from the three match signals.
// A variant is selected once at construction and never switched per call.
type Scorer interface {
	Score(attributeScore, textScore, semanticScore float64) float64
	Name() string
}

// NewScorer returns the scorer variant for an algorithm name. Unknown names
// fall back to the standard scorer.
func NewScorer(algorithm string) Scorer {
	switch algorithm {
	case "characteristic_disabled":
		return characteristicDisabledScorer{}
	case "soft_weighted":
		return softWeightedScorer{}
	default:
		return standardScorer{}
	}
}

// standardScorer is the weighted sum of the three normalized signals.
type standardScorer struct{}

func (standardScorer) Score(attributeScore, textScore, semanticScore float64) float64 {
	return composeScore(attributeScore, textScore, semanticScore)
}

func (standardScorer) Name() string { return "standard" }

// characteristicDisabledScorer ignores attribute matching and substitutes
// a fixed score, for catalogs whose attributes are too sparse to trust.
type characteristicDisabledScorer struct{}

func (characteristicDisabledScorer) Score(_, textScore, semanticScore float64) float64 {
	return composeScore(disabledCharacteristicScore, textScore, semanticScore)
}

func (characteristicDisabledScorer) Name() string { return "characteristic_disabled" }

// softWeightedScorer softens the attribute signal with a square root so a
// single failed characteristic does not collapse an otherwise strong match.
type softWeightedScorer struct{}

func (softWeightedScorer) Score(attributeScore, textScore, semanticScore float64) float64 {
	return composeScore(math.Sqrt(attributeScore), textScore, semanticScore)
}

func (softWeightedScorer) Name() string { return "soft_weighted" }

func composeScore(attributeScore, textScore, semanticScore float64) float64 {
	score := attributeScore*attributeScoreWeight +
		NormalizeTextScore(textScore)*textScoreWeight +
		semanticScore*semanticScoreWeight
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// NormalizeTextScore maps a raw full-text relevance score into [0,1].
func NormalizeTextScore(textScore float64) float64 {
	if textScore > 1.0 {
		normalized := textScore / textScoreNormalizer
		if normalized > 1.0 {
			return 1.0
		}
		return normalized
	}
	if textScore < 0 {
		return 0
	}
	return textScore
}

// ComposeSupplierScore derives a per-supplier score from the product score
// and price fit. Suppliers priced within the tolerance get a linear bonus —
// maxSupplierPriceBonus at ratio 0 and exactly 1.0 at the boundary; pricier
// suppliers keep the unmodified product score.
func ComposeSupplierScore(productScore, bestSupplierPrice, tenderUnitPrice, priceTolerancePercent float64) float64 {
	if bestSupplierPrice <= 0 || tenderUnitPrice <= 0 {
		return productScore
	}

	maxRatio := 1.0 + priceTolerancePercent/100.0
	ratio := bestSupplierPrice / tenderUnitPrice
	if ratio > maxRatio {
		return productScore
	}
	return productScore * (maxSupplierPriceBonus - ratio/maxRatio)
}

// CombineWithTextScore applies the adaptive text/semantic blend used after
// the enhanced text search has ranked candidates. A low text score next to
// a high semantic score is treated as suspicious and the weighting flips
// toward the text signal.
func CombineWithTextScore(textScore, semanticScore float64) float64 {
	normalized := NormalizeTextScore(textScore)
	if normalized < 0.1 && semanticScore > 0.7 {
		return 0.7*normalized + 0.3*semanticScore
	}
	return 0.4*normalized + 0.6*semanticScore
}
