package subject

import (
	"sort"
	"strings"

	"github.com/abhisek/examlens/internal/pattern"
)

// keywords are matched case-insensitively as substrings. Order within a list
// does not matter; each distinct hit counts once.
var keywords = map[Subject][]string{
	Math: {
		"equation", "solve for", "calculate", "simplify", "integer", "fraction",
		"sin", "cos", "tan", "log", "√", "∫", "π", "≤", "≥",
		"方程", "函数", "函數", "几何", "幾何", "三角形", "求值", "计算", "計算",
		"已知", "证明", "證明", "面积", "面積", "数列", "數列",
	},
	English: {
		"choose the best", "choose the correct", "fill in the blank", "read the passage",
		"according to the passage", "closest in meaning", "vocabulary", "grammar",
		"translate", "paragraph", "passage", "which of the following",
		"英文", "英語", "英语", "單選", "克漏字", "完形填空", "阅读理解", "閱讀測驗",
	},
	Chinese: {
		"文言文", "成语", "成語", "古诗", "古詩", "修辞", "修辭", "字音", "字形",
		"注音", "作者", "词语", "詞語", "病句", "标点", "標點", "国文", "國文", "语文", "語文",
	},
}

// Detect scores each subject by distinct keyword hits: BaseConfidence plus
// KeywordStep per hit, capped at MaxConfidence. Subjects without hits are
// not candidates.
// English gets EnglishSentenceBoost when the text reads as an English
// sentence. When the top two scores differ by less than AmbiguityMargin the
// result is Unknown with Ambiguous set.
func (d *Detector) Detect(text string) Detection {
	lower := strings.ToLower(text)

	var cands []Candidate
	for _, s := range []Subject{Math, English, Chinese} {
		hits := 0
		for _, kw := range keywords[s] {
			if containsKeyword(lower, kw) {
				hits++
			}
		}
		score := 0.0
		if hits > 0 {
			score = d.cfg.BaseConfidence + d.cfg.KeywordStep*float64(hits)
		}
		if s == English && d.isEnglishSentence(text) {
			if score == 0 {
				score = d.cfg.BaseConfidence
			}
			score += d.cfg.EnglishSentenceBoost
		}
		if score == 0 {
			continue
		}
		if score > d.cfg.MaxConfidence {
			score = d.cfg.MaxConfidence
		}
		cands = append(cands, Candidate{Subject: s, Confidence: score})
	}

	if len(cands) == 0 {
		return Detection{Subject: Unknown}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Confidence > cands[j].Confidence })

	det := Detection{Subject: cands[0].Subject, Confidence: cands[0].Confidence}
	if len(cands) > 1 {
		second := cands[1]
		det.SecondBest = &second
		det.ConfidenceDelta = cands[0].Confidence - second.Confidence
		if det.ConfidenceDelta < d.cfg.AmbiguityMargin {
			det.Subject = Unknown
			det.Ambiguous = true
		}
	}
	return det
}

// isEnglishSentence requires a Latin-letter ratio above LatinRatio, a run of
// three lowercase words and no Han characters.
func (d *Detector) isEnglishSentence(text string) bool {
	st := measure(text)
	if st.han > 0 || st.nonSpace == 0 {
		return false
	}
	if float64(st.latin)/float64(st.nonSpace) <= d.cfg.LatinRatio {
		return false
	}
	return pattern.LowerRun.MatchString(text)
}

// containsKeyword matches short Latin keywords on word boundaries so "sin"
// does not fire inside "single".
func containsKeyword(lower, kw string) bool {
	if !isShortLatin(kw) {
		return strings.Contains(lower, kw)
	}
	for i := 0; ; {
		j := strings.Index(lower[i:], kw)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(kw)
		if (start == 0 || !isASCIILetter(lower[start-1])) && (end == len(lower) || !isASCIILetter(lower[end])) {
			return true
		}
		i = start + 1
	}
}

func isShortLatin(kw string) bool {
	if len(kw) > 4 {
		return false
	}
	for i := 0; i < len(kw); i++ {
		if !isASCIILetter(kw[i]) {
			return false
		}
	}
	return true
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
