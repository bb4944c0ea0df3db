package kind

import (
	"strings"

	"go.uber.org/zap"
)

// aliases maps folded labels to canonical kinds. Keys are lowercase with
// spaces, hyphens, underscores and dots removed (see foldLabel).
var aliases = map[string]Kind{
	// vocab
	"vocab": Vocab, "vocabulary": Vocab, "word": Vocab, "wordchoice": Vocab,
	"vocabularyinblank": Vocab, "vocabchoice": Vocab, "lexical": Vocab,
	"e1": Vocab, "词汇": Vocab, "詞彙": Vocab, "字彙": Vocab, "单词": Vocab,

	// grammar
	"grammar": Grammar, "structure": Grammar, "grammarchoice": Grammar,
	"sentencestructure": Grammar, "e2": Grammar, "语法": Grammar, "文法": Grammar,

	// cloze
	"cloze": Cloze, "clozetest": Cloze, "contextualcompletion": Cloze,
	"fillinblank": Cloze, "fillintheblank": Cloze, "fillblank": Cloze,
	"e3": Cloze, "完形填空": Cloze, "克漏字": Cloze, "綜合測驗": Cloze,

	// reading
	"reading": Reading, "readingcomprehension": Reading, "comprehension": Reading,
	"passage": Reading, "readingpassage": Reading, "e4": Reading,
	"阅读理解": Reading, "閱讀測驗": Reading, "閱讀理解": Reading,

	// translation
	"translation": Translation, "translate": Translation, "sentencetranslation": Translation,
	"e5": Translation, "翻译": Translation, "翻譯": Translation, "中译英": Translation, "中譯英": Translation,

	// discourse
	"discourse": Discourse, "paragraphreordering": Discourse, "reordering": Discourse,
	"sentenceinsertion": Discourse, "paragraphcloze": Discourse, "discoursestructure": Discourse,
	"e6": Discourse, "e7": Discourse, "篇章结构": Discourse, "篇章結構": Discourse,
	"文意選填": Discourse, "七选五": Discourse, "七選五": Discourse,

	// writing
	"writing": Writing, "essay": Writing, "composition": Writing,
	"guidedwriting": Writing, "e8": Writing, "作文": Writing, "写作": Writing, "寫作": Writing,
}

// foldLabel lowercases a label and drops separators so "Reading_Comprehension",
// "reading-comprehension" and "readingComprehension" share one key.
func foldLabel(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch r {
		case ' ', '-', '_', '.', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func lookup(label string) (Kind, bool) {
	k, ok := aliases[foldLabel(label)]
	return k, ok
}

// Normalize resolves a stored label to a canonical kind. Unrecognized labels
// return ("", false) and are logged once.
func Normalize(label string) (Kind, bool) {
	k, ok := lookup(label)
	if !ok {
		logUnrecognized(label, "strict")
	}
	return k, ok
}

// NormalizeLenient resolves a label for display. Unrecognized labels become
// Unknown and are logged once.
func NormalizeLenient(label string) Kind {
	k, ok := lookup(label)
	if !ok {
		logUnrecognized(label, "lenient")
		return Unknown
	}
	return k
}

func logUnrecognized(label, mode string) {
	zap.L().Warn("unrecognized question kind label",
		zap.String("label", label),
		zap.String("mode", mode),
	)
}
