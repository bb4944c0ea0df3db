package segment

import "testing"

func TestSplit_ExplicitNumbering(t *testing.T) {
	text := "1. What is the capital of France?\n2. Which river is the longest?\n3. Who wrote Hamlet?"
	segs := Split(text)
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	for i, s := range segs {
		if !s.HasExplicitNumber {
			t.Errorf("segment %d: HasExplicitNumber = false, want true", i)
		}
		if s.Index != i+1 {
			t.Errorf("segment %d: Index = %d, want %d", i, s.Index, i+1)
		}
	}
	if segs[1].Text != "2. Which river is the longest?" {
		t.Errorf("got %q", segs[1].Text)
	}
}

func TestSplit_FullwidthNumbering(t *testing.T) {
	segs := Split("１．他是谁？\n２．她在哪里？")
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[1].Text != "２．她在哪里？" {
		t.Errorf("got %q", segs[1].Text)
	}
}

func TestSplit_NumberingKeepsPreamble(t *testing.T) {
	text := "Answer the questions.\n1. First?\n2. Second?"
	segs := Split(text)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0].Text != "Answer the questions.\n1. First?" {
		t.Errorf("got %q", segs[0].Text)
	}
}

func TestSplit_NumberingWithOptions(t *testing.T) {
	text := "1. She ___ to school.\n(A) go\n(B) goes\n(C) going\n(D) gone\n2. They ___ happy.\n(A) is\n(B) are\n(C) am\n(D) be"
	segs := Split(text)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if len(segs[0].Options) != 4 || segs[0].Options[1].Text != "goes" {
		t.Errorf("segment 1 options = %+v", segs[0].Options)
	}
}

func TestSplit_OptionRuns(t *testing.T) {
	text := "He is a ___. (A) doctor (B) lawyer (C) nurse (D) engineer\nShe likes ___. (A) tea (B) coffee (C) milk (D) juice"
	segs := Split(text)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	for i, s := range segs {
		if s.HasExplicitNumber {
			t.Errorf("segment %d: HasExplicitNumber = true, want false", i)
		}
		if len(s.Options) != 4 {
			t.Errorf("segment %d: got %d options, want 4", i, len(s.Options))
		}
	}
	if segs[0].Stem != "He is a ___." {
		t.Errorf("segment 1 stem = %q", segs[0].Stem)
	}
	if segs[0].Options[3].Text != "engineer" {
		t.Errorf("segment 1 option D = %q, want engineer", segs[0].Options[3].Text)
	}
	if segs[1].Stem != "She likes ___." {
		t.Errorf("segment 2 stem = %q", segs[1].Stem)
	}
	if segs[1].Options[3].Text != "juice" {
		t.Errorf("segment 2 option D = %q, want juice", segs[1].Options[3].Text)
	}
}

func TestSplit_OptionRunsSameLine(t *testing.T) {
	text := "He is a ___ (A) doctor (B) lawyer (C) nurse (D) engineer. She likes ___ (A) tea (B) coffee (C) milk (D) juice."
	segs := Split(text)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[1].Stem != "She likes ___" {
		t.Errorf("segment 2 stem = %q", segs[1].Stem)
	}
}

func TestSplit_FullWidthRun(t *testing.T) {
	segs := Split("他是（Ａ）醫生（Ｂ）律師（Ｃ）老師（Ｄ）工程師")
	if len(segs) != 1 || len(segs[0].Options) != 4 {
		t.Fatalf("got %+v", segs)
	}
	if segs[0].Options[0].Key != "A" || segs[0].Options[0].RawKey != "Ａ" {
		t.Errorf("got option %+v", segs[0].Options[0])
	}
}

func TestSplit_FiveOptionRunIsNotARun(t *testing.T) {
	segs := Split("Pick one (A) a (B) b (C) c (D) d (E) e")
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].Options != nil {
		t.Errorf("got options %+v, want nil", segs[0].Options)
	}
}

func TestSplit_Unsegmentable(t *testing.T) {
	segs := Split("  Write a short essay about your summer holiday.  ")
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].Options != nil {
		t.Errorf("got options %+v, want nil", segs[0].Options)
	}
	if segs[0].HasExplicitNumber {
		t.Error("HasExplicitNumber = true, want false")
	}
	if segs[0].Text != "Write a short essay about your summer holiday." {
		t.Errorf("got %q", segs[0].Text)
	}
}

func TestSplit_NumberingBeatsRuns(t *testing.T) {
	text := "1. Q one (A) a (B) b (C) c (D) d\n2. Q two (A) a (B) b (C) c (D) d\n3. Q three (A) a (B) b (C) c (D) d"
	segs := Split(text)
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	if !segs[0].HasExplicitNumber {
		t.Error("numbering should win over option runs")
	}
}
