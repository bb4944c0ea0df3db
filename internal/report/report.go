// Package report renders classification records for a terminal.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/examlens/internal/ingest"
	"github.com/abhisek/examlens/internal/stream"
	"github.com/abhisek/examlens/internal/structure"
)

// Render draws one classification as a bordered card.
func Render(c ingest.Classification) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(string(c.Kind)+" · "+string(c.LegacyKind)) + "\n")

	subj := fmt.Sprintf("%s %s", c.Subject, confidence(c.SubjectConfidence))
	if c.SubjectAmbiguous {
		subj += " " + warnStyle.Render("ambiguous")
	}
	if c.SecondBest != nil {
		subj += fmt.Sprintf(" (runner-up %s %s)", c.SecondBest.Subject, confidence(c.SecondBest.Confidence))
	}
	row(&b, "subject", subj)
	row(&b, "kind", fmt.Sprintf("%s %s", c.Kind, confidence(c.KindConfidence)))
	if c.Variant != "" {
		row(&b, "variant", string(c.Variant))
	}
	row(&b, "reason", c.Reason)
	if len(c.Signals) > 0 {
		row(&b, "signals", strings.Join(c.Signals, ", "))
	}
	if len(c.Blanks) > 0 {
		row(&b, "blanks", blankList(c.Blanks))
	}
	row(&b, "expects", strconv.Itoa(c.ExpectedAnswers()))
	if len(c.Options) > 0 {
		b.WriteString(labelStyle.Render("options") + "\n")
		for _, o := range c.Options {
			b.WriteString("  " + keyStyle.Render(o.Key) + "  " + valueStyle.Render(o.Text) + "\n")
		}
	}
	return cardStyle.Render(strings.TrimSuffix(b.String(), "\n"))
}

// RenderBatch draws each segment's card under its label.
func RenderBatch(results []ingest.SegmentResult) string {
	cards := make([]string, 0, len(results))
	for _, r := range results {
		heading := titleStyle.Render("Question " + strconv.Itoa(r.Segment.Index))
		cards = append(cards, heading+"\n"+Render(r.Classification))
	}
	return strings.Join(cards, "\n\n")
}

// RenderEvent draws one stream event as a single line.
func RenderEvent(e stream.Event) string {
	switch ev := e.(type) {
	case stream.StatusEvent:
		return labelStyle.Render(ev.Stage) + valueStyle.Render(ev.Message)
	case stream.TextEvent:
		return valueStyle.Render(ev.Chunk)
	case stream.QuestionEvent:
		line := keyStyle.Render("#"+strconv.Itoa(ev.Index+1)) + " " + valueStyle.Render(string(ev.Question))
		if ev.Invalid != "" {
			line += " " + warnStyle.Render(ev.Invalid)
		}
		return line
	case stream.CompleteEvent:
		return titleStyle.Render(fmt.Sprintf("complete: %d answers", len(ev.Answers)))
	case stream.ErrorEvent:
		return warnStyle.Render("error: " + ev.Message)
	}
	return ""
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
}

func confidence(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func blankList(blanks []structure.Blank) string {
	parts := make([]string, len(blanks))
	for i, bl := range blanks {
		parts[i] = "(" + strconv.Itoa(bl.Index) + ")"
	}
	return strings.Join(parts, " ")
}
