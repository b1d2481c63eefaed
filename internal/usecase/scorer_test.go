package usecase

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewScorer(t *testing.T) {
	tests := []struct {
		algorithm string
		want      string
	}{
		{"standard", "standard"},
		{"characteristic_disabled", "characteristic_disabled"},
		{"soft_weighted", "soft_weighted"},
		{"", "standard"},
		{"unknown", "standard"},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			if got := NewScorer(tt.algorithm).Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStandardScorer(t *testing.T) {
	scorer := NewScorer("standard")

	t.Run("weighted sum of signals", func(t *testing.T) {
		got := scorer.Score(1.0, 1.0, 1.0)
		if !almostEqual(got, 1.0) {
			t.Errorf("Score = %v, want 1.0", got)
		}
	})

	t.Run("neutral semantic keeps middle ground", func(t *testing.T) {
		got := scorer.Score(1.0, 0, neutralSemanticScore)
		// 1.0*0.4 + 0*0.3 + 0.5*0.3
		if !almostEqual(got, 0.55) {
			t.Errorf("Score = %v, want 0.55", got)
		}
	})

	t.Run("raw text score is normalized", func(t *testing.T) {
		got := scorer.Score(0, 5.0, 0)
		// text 5.0 normalizes to 0.5, weighted by 0.3
		if !almostEqual(got, 0.15) {
			t.Errorf("Score = %v, want 0.15", got)
		}
	})

	t.Run("score is capped at one", func(t *testing.T) {
		if got := scorer.Score(1.0, 100.0, 1.0); got > 1.0 {
			t.Errorf("Score = %v, want at most 1.0", got)
		}
	})
}

func TestCharacteristicDisabledScorer(t *testing.T) {
	scorer := NewScorer("characteristic_disabled")

	t.Run("attribute signal is replaced with fixed score", func(t *testing.T) {
		low := scorer.Score(0, 0.5, 0.5)
		high := scorer.Score(1.0, 0.5, 0.5)
		if !almostEqual(low, high) {
			t.Errorf("attribute score should not matter: %v vs %v", low, high)
		}
		// 0.8*0.4 + 0.5*0.3 + 0.5*0.3
		if !almostEqual(low, 0.62) {
			t.Errorf("Score = %v, want 0.62", low)
		}
	})
}

func TestSoftWeightedScorer(t *testing.T) {
	scorer := NewScorer("soft_weighted")

	t.Run("weak attribute signal is lifted", func(t *testing.T) {
		soft := scorer.Score(0.25, 0, 0)
		standard := NewScorer("standard").Score(0.25, 0, 0)
		if soft <= standard {
			t.Errorf("soft score %v should exceed standard %v for weak attributes", soft, standard)
		}
		// sqrt(0.25)=0.5, weighted by 0.4
		if !almostEqual(soft, 0.2) {
			t.Errorf("Score = %v, want 0.2", soft)
		}
	})

	t.Run("full attribute signal is unchanged", func(t *testing.T) {
		soft := scorer.Score(1.0, 0.5, 0.5)
		standard := NewScorer("standard").Score(1.0, 0.5, 0.5)
		if !almostEqual(soft, standard) {
			t.Errorf("soft %v and standard %v should agree at full signal", soft, standard)
		}
	})
}

func TestNormalizeTextScore(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"already normalized", 0.7, 0.7},
		{"raw engine score", 5.0, 0.5},
		{"huge score capped", 50.0, 1.0},
		{"negative clamped", -1.0, 0},
		{"zero", 0, 0},
		{"exactly one", 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTextScore(tt.input); !almostEqual(got, tt.want) {
				t.Errorf("NormalizeTextScore(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestComposeSupplierScore(t *testing.T) {
	t.Run("cheaper supplier inside tolerance gets bonus", func(t *testing.T) {
		// ratio 0.9, maxRatio 1.2: multiplier 2 - 0.75 = 1.25
		got := ComposeSupplierScore(0.8, 90, 100, 20)
		if !almostEqual(got, 1.0) {
			t.Errorf("score = %v, want 1.0", got)
		}
	})

	t.Run("supplier above tolerance keeps product score", func(t *testing.T) {
		got := ComposeSupplierScore(0.8, 150, 100, 20)
		if !almostEqual(got, 0.8) {
			t.Errorf("score = %v, want 0.8", got)
		}
	})

	t.Run("supplier exactly at tolerance boundary has no bonus", func(t *testing.T) {
		got := ComposeSupplierScore(0.8, 120, 100, 20)
		if !almostEqual(got, 0.8) {
			t.Errorf("score = %v, want 0.8 at boundary", got)
		}
	})

	t.Run("missing prices keep product score", func(t *testing.T) {
		if got := ComposeSupplierScore(0.8, 0, 100, 20); !almostEqual(got, 0.8) {
			t.Errorf("score = %v, want 0.8 with no supplier price", got)
		}
		if got := ComposeSupplierScore(0.8, 90, 0, 20); !almostEqual(got, 0.8) {
			t.Errorf("score = %v, want 0.8 with no tender price", got)
		}
	})
}

func TestCombineWithTextScore(t *testing.T) {
	t.Run("default blend favors semantic", func(t *testing.T) {
		got := CombineWithTextScore(0.5, 0.8)
		if !almostEqual(got, 0.4*0.5+0.6*0.8) {
			t.Errorf("score = %v", got)
		}
	})

	t.Run("low text with high semantic flips toward text", func(t *testing.T) {
		got := CombineWithTextScore(0.05, 0.9)
		if !almostEqual(got, 0.7*0.05+0.3*0.9) {
			t.Errorf("score = %v", got)
		}
	})
}
