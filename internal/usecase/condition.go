package usecase

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ConditionOp tags the comparison a parsed characteristic value expresses.
type ConditionOp int

const (
	OpOpaque ConditionOp = iota
	OpEquals
	OpGTE
	OpLTE
	OpGT
	OpLT
	OpBetween
)

// Condition is a parsed characteristic value. For OpBetween, Value and High
// hold the bounds; LowInclusive/HighInclusive record the boundary variant.
// For OpOpaque only Raw is meaningful and comparison falls back to
// case-insensitive string equality.
type Condition struct {
	Op            ConditionOp
	Value         float64
	High          float64
	LowInclusive  bool
	HighInclusive bool
	Raw           string
}

const num = `(\d+(?:\.\d+)?)`

// Range forms come first so that "≥10 и ≤20" is not read as a bare "≥10".
// The conjunction is "и" in tender documents, "and" in translated ones.
// Operator forms match anywhere in the value, so trailing unit text like
// "≥10 мм" still parses; only the bare number is anchored.
var conditionPatterns = []struct {
	re            *regexp.Regexp
	op            ConditionOp
	lowInclusive  bool
	highInclusive bool
}{
	{regexp.MustCompile(`≥\s*` + num + `\s*(?:и|and)\s*<\s*` + num), OpBetween, true, false},
	{regexp.MustCompile(`>\s*` + num + `\s*(?:и|and)\s*≤\s*` + num), OpBetween, false, true},
	{regexp.MustCompile(`≥\s*` + num + `\s*(?:и|and)\s*≤\s*` + num), OpBetween, true, true},
	{regexp.MustCompile(`>\s*` + num + `\s*(?:и|and)\s*<\s*` + num), OpBetween, false, false},
	{regexp.MustCompile(`≥\s*` + num), OpGTE, false, false},
	{regexp.MustCompile(`≤\s*` + num), OpLTE, false, false},
	{regexp.MustCompile(`>\s*` + num), OpGT, false, false},
	{regexp.MustCompile(`<\s*` + num), OpLT, false, false},
	{regexp.MustCompile(`^` + num + `$`), OpEquals, false, false},
}

// defaultEqualsTolerance is the relative tolerance for OpEquals evaluation.
const defaultEqualsTolerance = 0.1

// ParseCondition turns a characteristic value string into a Condition.
// Numbers are decimal with "." as separator regardless of locale.
func ParseCondition(text string) Condition {
	trimmed := strings.TrimSpace(text)

	for _, p := range conditionPatterns {
		m := p.re.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		v1, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			break
		}
		cond := Condition{
			Op:            p.op,
			Value:         v1,
			LowInclusive:  p.lowInclusive,
			HighInclusive: p.highInclusive,
			Raw:           trimmed,
		}
		if p.op == OpBetween {
			v2, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				break
			}
			cond.High = v2
		}
		return cond
	}

	// No operator form. A value like "150 листов" still reads as an
	// equality on its first number; truly textual values stay opaque.
	if v, ok := ExtractNumber(trimmed); ok {
		return Condition{Op: OpEquals, Value: v, Raw: trimmed}
	}

	return Condition{Op: OpOpaque, Raw: trimmed}
}

// Evaluate reports whether a candidate numeric value satisfies the condition.
// OpEquals uses a relative tolerance rather than exact float equality.
// OpOpaque always reports false here; callers compare strings instead.
func (c Condition) Evaluate(candidate float64) bool {
	switch c.Op {
	case OpEquals:
		if c.Value == 0 {
			return candidate == 0
		}
		return math.Abs(candidate-c.Value)/math.Abs(c.Value) <= defaultEqualsTolerance
	case OpGTE:
		return candidate >= c.Value
	case OpLTE:
		return candidate <= c.Value
	case OpGT:
		return candidate > c.Value
	case OpLT:
		return candidate < c.Value
	case OpBetween:
		lowOK := candidate > c.Value
		if c.LowInclusive {
			lowOK = candidate >= c.Value
		}
		highOK := candidate < c.High
		if c.HighInclusive {
			highOK = candidate <= c.High
		}
		return lowOK && highOK
	default:
		return false
	}
}

func (c Condition) String() string {
	switch c.Op {
	case OpEquals:
		return fmt.Sprintf("= %v", c.Value)
	case OpGTE:
		return fmt.Sprintf("≥ %v", c.Value)
	case OpLTE:
		return fmt.Sprintf("≤ %v", c.Value)
	case OpGT:
		return fmt.Sprintf("> %v", c.Value)
	case OpLT:
		return fmt.Sprintf("< %v", c.Value)
	case OpBetween:
		low, high := "(", ")"
		if c.LowInclusive {
			low = "["
		}
		if c.HighInclusive {
			high = "]"
		}
		return fmt.Sprintf("%s%v, %v%s", low, c.Value, c.High, high)
	}
	return c.Raw
}

var firstNumberRegex = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ExtractNumber pulls the first decimal number out of a free-form value,
// for candidate values like "150 листов" that are not bare numbers.
func ExtractNumber(text string) (float64, bool) {
	m := firstNumberRegex.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// unitConversions holds linear factors between known measurement units.
var unitConversions = map[string]map[string]float64{
	"мм": {"см": 0.1, "м": 0.001},
	"см": {"мм": 10, "м": 0.01},
	"м":  {"мм": 1000, "см": 100},
	"г":  {"кг": 0.001},
	"кг": {"г": 1000},
}

// ConvertUnit converts value from one unit to another. The second return
// is false when no linear conversion between the units is known; callers
// then fall back to opaque string comparison.
func ConvertUnit(value float64, from, to string) (float64, bool) {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))

	if from == to || from == "" || to == "" {
		return value, true
	}
	if factors, ok := unitConversions[from]; ok {
		if factor, ok := factors[to]; ok {
			return value * factor, true
		}
	}
	return value, false
}
