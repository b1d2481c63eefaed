package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tendermatch/backend/internal/domain"
)

// maxSemanticAttributes caps how many characteristics/attributes go into
// an embedding text; beyond that they add noise, not signal.
const maxSemanticAttributes = 5

var (
	comparisonOperatorRegex = regexp.MustCompile(`[≥≤<>]=?`)
	trailingUnitRegex       = regexp.MustCompile(`(?i)\s+(шт|мм|см|м|кг|г|л|мл)\.?$`)
)

// BuildTenderText renders a tender item as the query text for semantic
// similarity: name, category and up to five required characteristics.
func BuildTenderText(item domain.TenderItem) string {
	var parts []string

	if name := strings.TrimSpace(item.Name); name != "" {
		parts = append(parts, fmt.Sprintf("Товар: %s", name))
	}
	if category := strings.TrimSpace(item.ClassificationName); category != "" && category != strings.TrimSpace(item.Name) {
		parts = append(parts, fmt.Sprintf("Категория: %s", category))
	}

	added := 0
	for _, char := range item.Characteristics {
		if !char.Required || added >= maxSemanticAttributes {
			continue
		}
		name := strings.TrimSpace(char.Name)
		value := cleanSemanticValue(char.Value)
		if name == "" || value == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", name, value))
		added++
	}

	return strings.Join(parts, ". ")
}

// BuildProductText renders a catalog product as a candidate text for
// semantic similarity.
func BuildProductText(product domain.Product) string {
	var parts []string

	if title := strings.TrimSpace(product.SampleTitle); title != "" {
		parts = append(parts, fmt.Sprintf("Товар: %s", title))
	}
	if category := strings.TrimSpace(product.ClassificationName); category != "" {
		parts = append(parts, fmt.Sprintf("Категория: %s", category))
	}
	if brand := strings.TrimSpace(product.SampleBrand); brand != "" {
		parts = append(parts, fmt.Sprintf("Бренд: %s", brand))
	}

	for i, attr := range product.Attributes {
		if i >= maxSemanticAttributes {
			break
		}
		name := strings.TrimSpace(attr.StandardName)
		value := cleanSemanticValue(attr.StandardValue)
		if name == "" || value == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", name, value))
	}

	return strings.Join(parts, ". ")
}

// cleanSemanticValue strips comparison operators and trailing units so
// condition syntax does not leak into embedding texts.
func cleanSemanticValue(value string) string {
	value = comparisonOperatorRegex.ReplaceAllString(value, "")
	value = trailingUnitRegex.ReplaceAllString(value, "")
	return strings.Join(strings.Fields(value), " ")
}
