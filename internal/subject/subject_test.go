package subject

import (
	"strings"
	"testing"
)

func TestDetect_MathKeywords(t *testing.T) {
	det := Detect("解方程 x + 3 = 5，求值并计算三角形面积")
	if det.Subject != Math {
		t.Fatalf("got %q, want math", det.Subject)
	}
	if det.Confidence <= 0.4 || det.Confidence > 0.98 {
		t.Errorf("confidence %v out of range", det.Confidence)
	}
}

func TestDetect_EnglishSentenceBoost(t *testing.T) {
	det := Detect("she went to the market and bought some fresh apples")
	if det.Subject != English {
		t.Fatalf("got %q, want english", det.Subject)
	}
	if det.Confidence != 0.7 {
		t.Errorf("got confidence %v, want 0.7 (base + boost)", det.Confidence)
	}
}

func TestDetect_NoBoostWithHan(t *testing.T) {
	d := New(DefaultConfig())
	if d.isEnglishSentence("she went to the market 市场 and bought apples") {
		t.Error("text with Han characters must not count as an English sentence")
	}
}

func TestDetect_CappedConfidence(t *testing.T) {
	text := strings.Join(keywords[Chinese], " ")
	det := Detect(text)
	if det.Subject != Chinese {
		t.Fatalf("got %q, want chinese", det.Subject)
	}
	if det.Confidence != 0.98 {
		t.Errorf("got confidence %v, want cap 0.98", det.Confidence)
	}
}

func TestDetect_AmbiguityCollapses(t *testing.T) {
	// One math keyword and one Chinese keyword score the same.
	det := Detect("方程 文言文")
	if det.Subject != Unknown {
		t.Fatalf("got %q, want unknown", det.Subject)
	}
	if !det.Ambiguous {
		t.Error("Ambiguous = false, want true")
	}
	if det.SecondBest == nil {
		t.Fatal("SecondBest = nil")
	}
	if det.ConfidenceDelta >= 0.03 {
		t.Errorf("delta %v, want < 0.03", det.ConfidenceDelta)
	}
}

func TestDetect_ClearWinnerKeepsRunnerUp(t *testing.T) {
	det := Detect("方程 函数 几何 三角形 文言文")
	if det.Subject != Math {
		t.Fatalf("got %q, want math", det.Subject)
	}
	if det.SecondBest == nil || det.SecondBest.Subject != Chinese {
		t.Fatalf("got runner-up %+v, want chinese", det.SecondBest)
	}
}

func TestDetect_NoSignal(t *testing.T) {
	if det := Detect("12345 ..."); det.Subject != Unknown || det.Ambiguous {
		t.Errorf("got %+v, want plain unknown", det)
	}
}

func TestContainsKeyword_WordBoundary(t *testing.T) {
	if containsKeyword("a single step", "sin") {
		t.Error("sin matched inside single")
	}
	if !containsKeyword("find sin x", "sin") {
		t.Error("sin not matched as a word")
	}
}

func TestDetectByDensity(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Subject
	}{
		{"chinese prose", "床前明月光，疑是地上霜。举头望明月，低头思故乡。请赏析这首诗。", Chinese},
		{"english prose", "The students were asked to describe their favorite season in a few sentences.", English},
		{"math expression", "x^2 + 3x = 10, solve x", Math},
		{"trig", "cos 60 = ?", Math},
		{"chinese math", "已知 x + 2 = 5，求 x 的值。3 × 4 = ?", Math},
		{"empty", "   ", Unknown},
		{"digits only", "12 34", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectByDensity(tt.text).Subject; got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectByDensity_ReadingShortCircuit(t *testing.T) {
	passage := strings.Repeat("The river flows past the old mill and the farmers gather there. ", 6) +
		"\nQ1 What does the passage mainly describe?\n(A) a river (B) a mill (C) a town (D) a farm"
	det := DetectByDensity(passage)
	if det.Subject != English {
		t.Fatalf("got %q, want english", det.Subject)
	}
	if det.Confidence != 0.85 {
		t.Errorf("got confidence %v, want 0.85", det.Confidence)
	}
}

func TestGuardMath(t *testing.T) {
	det := GuardMath("solve the equation", Detection{Subject: Math, Confidence: 0.5})
	if det.Subject != English {
		t.Errorf("got %q, want english", det.Subject)
	}
	det = GuardMath("solve 2x = 4", Detection{Subject: Math, Confidence: 0.5})
	if det.Subject != Math {
		t.Errorf("got %q, want math", det.Subject)
	}
	det = GuardMath("anything", Detection{Subject: Chinese})
	if det.Subject != Chinese {
		t.Errorf("non-math verdicts must pass through")
	}
}

func TestParse(t *testing.T) {
	if Parse("math") != Math || Parse("english") != English || Parse("chinese") != Chinese {
		t.Error("known subjects not parsed")
	}
	if Parse("physics") != Unknown || Parse("") != Unknown {
		t.Error("unknown hints must map to Unknown")
	}
}
