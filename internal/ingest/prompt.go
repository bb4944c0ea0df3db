package ingest

import (
	"fmt"
	"strings"

	"github.com/abhisek/examlens/internal/kind"
	"github.com/abhisek/examlens/internal/segment"
)

const systemPrompt = `You are an exam tutor answering questions a student pasted or photographed.

Rules:
- Reply with a single JSON array and nothing else. No prose before or after, no code fences.
- Emit one object per question or numbered blank, in order.
- Each object has "index" (the 1-based question or blank number), "answer" and "explanation".
- For choice questions "answer" is the option letter only, e.g. "B".
- Keep explanations short and aimed at a student. Plain text; <em> and <strong> are the only markup allowed.
- Add "translation" only when the question asks for one.`

// kindInstructions adds per-kind guidance to the user message.
var kindInstructions = map[kind.Kind]string{
	kind.Vocab:       "Each question tests word choice. Name the collocation or meaning that decides it.",
	kind.Grammar:     "Each question tests grammar. Name the rule that decides it.",
	kind.Cloze:       "Answer every numbered blank of the passage, one object per blank.",
	kind.Discourse:   "Choose the sentence that fits each numbered gap. Each option is used at most once.",
	kind.Reading:     "Answer from the passage only. Quote the deciding phrase in the explanation.",
	kind.Translation: "Translate faithfully. Put the translation in \"answer\".",
	kind.Writing:     "Give a model answer in \"answer\" and the key points in \"explanation\".",
}

// buildUserMessage lays out the classified input for the model.
func buildUserMessage(c Classification, segs []segment.Segment, text string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", c.Subject)
	fmt.Fprintf(&b, "Question kind: %s\n", c.Kind)
	if hint, ok := kindInstructions[c.Kind]; ok {
		fmt.Fprintf(&b, "Instructions: %s\n", hint)
	}
	fmt.Fprintf(&b, "Answers expected: %d\n", expectedCount(c, segs))

	b.WriteString("\nInput:\n")
	if len(segs) > 1 {
		for _, s := range segs {
			fmt.Fprintf(&b, "%d. %s\n", s.Index, s.Text)
		}
	} else {
		b.WriteString(strings.TrimSpace(text))
		b.WriteString("\n")
	}

	return b.String()
}

// expectedCount is the number of answers to ask for. Passage kinds count
// blanks; everything else counts segments.
func expectedCount(c Classification, segs []segment.Segment) int {
	if len(segs) > 1 {
		return len(segs)
	}
	return c.ExpectedAnswers()
}

// questionLabels echoes what each answer position refers to.
func questionLabels(c Classification, segs []segment.Segment) []string {
	if len(segs) > 1 {
		out := make([]string, len(segs))
		for i, s := range segs {
			out[i] = s.Stem
		}
		return out
	}
	n := c.ExpectedAnswers()
	if n == 1 {
		return []string{segs[0].Stem}
	}
	seen := make(map[int]bool, n)
	out := make([]string, 0, n)
	for _, bl := range c.Blanks {
		if !seen[bl.Index] {
			seen[bl.Index] = true
			out = append(out, fmt.Sprintf("(%d)", bl.Index))
		}
	}
	return out
}
