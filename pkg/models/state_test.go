package models

import (
	"fmt"
	"testing"
)

func TestNewSharedState_Empty(t *testing.T) {
	s := NewSharedState("ss", "不锈钢")

	if s.Symbol != "ss" || s.Keyword != "不锈钢" {
		t.Errorf("inputs = (%q, %q), want (ss, 不锈钢)", s.Symbol, s.Keyword)
	}
	for _, slot := range AllSlots() {
		if s.Filled(slot) {
			t.Errorf("slot %s should start empty", slot)
		}
		if got := s.Slot(slot); got == nil {
			t.Errorf("Slot(%s) = nil, want empty non-nil slice", slot)
		}
	}
	if len(s.Errors) != 0 {
		t.Errorf("Errors = %v, want empty", s.Errors)
	}
	if s.FirstPhaseReady || s.SecondPhaseReady {
		t.Error("readiness flags should start false")
	}
	if s.FinalReport != "" || s.ReportPath != "" {
		t.Error("scalars should start empty")
	}
}

func TestApply_AppendOnly(t *testing.T) {
	// N completions targeting one slot leave exactly N entries.
	for _, n := range []int{1, 2, 5, 17} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			s := NewSharedState("cu", "铜")
			for i := 0; i < n; i++ {
				u := Update{}.Append(SlotNews, Success(fmt.Sprintf("content-%d", i)))
				if err := s.Apply(u); err != nil {
					t.Fatalf("Apply failed: %v", err)
				}
			}
			if got := len(s.Slot(SlotNews)); got != n {
				t.Errorf("len(news) = %d, want %d", got, n)
			}
			seen := make(map[string]bool)
			for _, e := range s.Slot(SlotNews) {
				seen[e.Content] = true
			}
			if len(seen) != n {
				t.Errorf("distinct entries = %d, want %d", len(seen), n)
			}
		})
	}
}

func TestApply_MergedUpdatesMatchSequentialApply(t *testing.T) {
	updates := []Update{
		Update{}.Append(SlotNews, Success("n")),
		Update{}.Append(SlotSentiment, Failure("boom")).WithError("sentiment analysis failed: boom"),
		Update{}.Append(SlotFundamental, Success("f")),
	}

	sequential := NewSharedState("ss", "不锈钢")
	for _, u := range updates {
		if err := sequential.Apply(u); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
	}

	merged := NewSharedState("ss", "不锈钢")
	reversed := Merge(updates[2], updates[1], updates[0])
	if err := merged.Apply(reversed); err != nil {
		t.Fatalf("Apply merged failed: %v", err)
	}

	for _, slot := range AllSlots() {
		a, b := sequential.Slot(slot), merged.Slot(slot)
		if len(a) != len(b) {
			t.Fatalf("slot %s: len %d vs %d", slot, len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("slot %s[%d]: %+v vs %+v", slot, i, a[i], b[i])
			}
		}
	}
	if len(merged.Errors) != 1 {
		t.Errorf("Errors = %v, want 1 entry", merged.Errors)
	}
}

func TestMerge_Associative(t *testing.T) {
	a := Update{}.Append(SlotBullish, Success("a")).WithFinalReport("first")
	b := Update{}.Append(SlotBearish, Success("b")).WithError("e1")
	c := Update{}.WithFinalReport("last").WithReportPath("/tmp/r.md")

	left := Merge(Merge(a, b), c)
	right := Merge(a, Merge(b, c))

	if len(left.Appends) != len(right.Appends) || len(left.Errors) != len(right.Errors) {
		t.Fatalf("sequence lengths differ: %+v vs %+v", left, right)
	}
	if *left.FinalReport != "last" || *right.FinalReport != "last" {
		t.Errorf("FinalReport = %q / %q, want last", *left.FinalReport, *right.FinalReport)
	}
	if *left.ReportPath != *right.ReportPath {
		t.Errorf("ReportPath differs: %q vs %q", *left.ReportPath, *right.ReportPath)
	}
}

func TestApply_ScalarsLastWriteWins(t *testing.T) {
	s := NewSharedState("ss", "不锈钢")
	_ = s.Apply(Update{}.WithFinalReport("one"))
	_ = s.Apply(Update{}.WithFinalReport("two"))
	_ = s.Apply(Update{}.Append(SlotNews, Success("x")))

	if s.FinalReport != "two" {
		t.Errorf("FinalReport = %q, want %q", s.FinalReport, "two")
	}
}

func TestApply_UnknownSlotRejectedAtomically(t *testing.T) {
	s := NewSharedState("ss", "不锈钢")
	u := Update{}.Append(SlotNews, Success("ok")).Append(Slot("bogus"), Success("bad"))

	if err := s.Apply(u); err == nil {
		t.Fatal("expected error for unknown slot")
	}
	if s.Filled(SlotNews) {
		t.Error("state must be unchanged when an update is rejected")
	}
}

func TestClone_IsIndependent(t *testing.T) {
	s := NewSharedState("ss", "不锈钢")
	_ = s.Apply(Update{}.Append(SlotNews, Success("prior")))

	snap := s.Clone()
	_ = s.Apply(Update{}.Append(SlotNews, Success("later")).WithError("x"))

	if got := len(snap.Slot(SlotNews)); got != 1 {
		t.Errorf("snapshot news entries = %d, want 1", got)
	}
	if len(snap.Errors) != 0 {
		t.Errorf("snapshot errors = %v, want none", snap.Errors)
	}
}

func TestSlot_ReturnsCopy(t *testing.T) {
	s := NewSharedState("ss", "不锈钢")
	_ = s.Apply(Update{}.Append(SlotNews, Success("original")))

	view := s.Slot(SlotNews)
	view[0] = Failure("mutated")

	if e, _ := s.Latest(SlotNews); e.Content != "original" {
		t.Errorf("Latest = %+v, reads must not be destructive", e)
	}
}

func TestSetReady(t *testing.T) {
	s := NewSharedState("ss", "不锈钢")

	if err := s.SetReady(FlagFirstPhaseReady, true); err != nil {
		t.Fatalf("SetReady failed: %v", err)
	}
	if !s.Ready(FlagFirstPhaseReady) || s.Ready(FlagSecondPhaseReady) {
		t.Errorf("flags = (%v, %v), want (true, false)", s.FirstPhaseReady, s.SecondPhaseReady)
	}
	if err := s.SetReady(ReadinessFlag("third"), true); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestUpdate_Slots(t *testing.T) {
	u := Update{}.Append(SlotNews, Success("a")).Append(SlotNews, Success("b")).Append(SlotBearish, Failure("c"))

	got := u.Slots()
	if len(got) != 2 || got[0] != SlotNews || got[1] != SlotBearish {
		t.Errorf("Slots() = %v, want [news_result bearish_result]", got)
	}
}

func TestSummary(t *testing.T) {
	s := NewSharedState("ss", "不锈钢")
	_ = s.Apply(Update{}.Append(SlotNews, Success("n")))
	_ = s.Apply(Update{}.Append(SlotSentiment, Failure("down")).WithError("sentiment analysis failed: down"))
	_ = s.Apply(Update{}.WithFinalReport("report"))

	sum := s.Summary()
	if sum.Total != 5 {
		t.Errorf("Total = %d, want 5", sum.Total)
	}
	if sum.Succeeded != 1 {
		t.Errorf("Succeeded = %d, want 1", sum.Succeeded)
	}
	if sum.ReportBytes != len("report") {
		t.Errorf("ReportBytes = %d, want %d", sum.ReportBytes, len("report"))
	}
	if len(sum.Errors) != 1 {
		t.Errorf("Errors = %v, want 1", sum.Errors)
	}
}
