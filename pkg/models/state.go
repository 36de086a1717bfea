// Package models defines the shared run state passed between analysis phases.
package models

import (
	"fmt"
	"slices"
)

// Slot names a per-task result sequence in SharedState.
type Slot string

const (
	SlotNews        Slot = "news_result"
	SlotSentiment   Slot = "sentiment_result"
	SlotFundamental Slot = "fundamental_result"
	SlotBullish     Slot = "bullish_result"
	SlotBearish     Slot = "bearish_result"
)

// AllSlots returns every result slot in report order.
func AllSlots() []Slot {
	return []Slot{SlotNews, SlotSentiment, SlotFundamental, SlotBullish, SlotBearish}
}

// Valid returns true if the slot is a known value.
func (s Slot) Valid() bool {
	return slices.Contains(AllSlots(), s)
}

// ReadinessFlag names a phase-readiness boolean in SharedState.
type ReadinessFlag string

const (
	FlagFirstPhaseReady  ReadinessFlag = "first_phase_ready"
	FlagSecondPhaseReady ReadinessFlag = "second_phase_ready"
)

// SharedState is the single per-request record threaded through every task.
//
// Result slots and Errors are append-only. Readiness flags are recomputed at each
// barrier. FinalReport and ReportPath are last-write-wins.
type SharedState struct {
	// Symbol identifies the futures contract being analyzed (e.g. "ss").
	Symbol string `json:"symbol"`
	// Keyword is the search and display label (e.g. "不锈钢").
	Keyword string `json:"keyword"`

	NewsResult        []ResultEntry `json:"news_result"`
	SentimentResult   []ResultEntry `json:"sentiment_result"`
	FundamentalResult []ResultEntry `json:"fundamental_result"`
	BullishResult     []ResultEntry `json:"bullish_result"`
	BearishResult     []ResultEntry `json:"bearish_result"`

	// Errors collects human-readable failure messages from every task.
	Errors []string `json:"errors"`

	FirstPhaseReady  bool `json:"first_phase_ready"`
	SecondPhaseReady bool `json:"second_phase_ready"`

	// FinalReport is written once by the aggregation task.
	FinalReport string `json:"final_report"`
	// ReportPath is where the final report was persisted, or the persistence error text.
	ReportPath string `json:"report_path"`
}

// NewSharedState creates the initial state for one request: every sequence empty,
// every flag false.
func NewSharedState(symbol, keyword string) *SharedState {
	return &SharedState{
		Symbol:            symbol,
		Keyword:           keyword,
		NewsResult:        []ResultEntry{},
		SentimentResult:   []ResultEntry{},
		FundamentalResult: []ResultEntry{},
		BullishResult:     []ResultEntry{},
		BearishResult:     []ResultEntry{},
		Errors:            []string{},
	}
}

func (s *SharedState) slotRef(slot Slot) *[]ResultEntry {
	switch slot {
	case SlotNews:
		return &s.NewsResult
	case SlotSentiment:
		return &s.SentimentResult
	case SlotFundamental:
		return &s.FundamentalResult
	case SlotBullish:
		return &s.BullishResult
	case SlotBearish:
		return &s.BearishResult
	default:
		return nil
	}
}

// Slot returns a copy of the entries in the given slot.
// Unknown slots yield nil.
func (s *SharedState) Slot(slot Slot) []ResultEntry {
	ref := s.slotRef(slot)
	if ref == nil {
		return nil
	}
	return slices.Clone(*ref)
}

// Latest returns the first entry recorded in a slot and whether one exists.
// Tasks run once per request, so the first entry is the task's outcome.
func (s *SharedState) Latest(slot Slot) (ResultEntry, bool) {
	ref := s.slotRef(slot)
	if ref == nil || len(*ref) == 0 {
		return ResultEntry{}, false
	}
	return (*ref)[0], true
}

// Filled reports whether a slot has at least one entry, success or failure.
func (s *SharedState) Filled(slot Slot) bool {
	ref := s.slotRef(slot)
	return ref != nil && len(*ref) > 0
}

// Ready returns the value of a readiness flag.
func (s *SharedState) Ready(flag ReadinessFlag) bool {
	switch flag {
	case FlagFirstPhaseReady:
		return s.FirstPhaseReady
	case FlagSecondPhaseReady:
		return s.SecondPhaseReady
	default:
		return false
	}
}

// SetReady overwrites a readiness flag.
func (s *SharedState) SetReady(flag ReadinessFlag, ready bool) error {
	switch flag {
	case FlagFirstPhaseReady:
		s.FirstPhaseReady = ready
	case FlagSecondPhaseReady:
		s.SecondPhaseReady = ready
	default:
		return fmt.Errorf("unknown readiness flag %q", flag)
	}
	return nil
}

// Apply commits a partial update. Sequences are concatenated, scalars replaced
// only when the update sets them. An update naming an unknown slot is rejected
// without modifying the state.
func (s *SharedState) Apply(u Update) error {
	for _, a := range u.Appends {
		if s.slotRef(a.Slot) == nil {
			return fmt.Errorf("apply update: unknown slot %q", a.Slot)
		}
	}

	for _, a := range u.Appends {
		ref := s.slotRef(a.Slot)
		*ref = append(*ref, a.Entries...)
	}
	s.Errors = append(s.Errors, u.Errors...)

	if u.FinalReport != nil {
		s.FinalReport = *u.FinalReport
	}
	if u.ReportPath != nil {
		s.ReportPath = *u.ReportPath
	}
	return nil
}

// Clone returns a deep copy, used as the read-only snapshot handed to tasks.
func (s *SharedState) Clone() *SharedState {
	c := *s
	c.NewsResult = slices.Clone(s.NewsResult)
	c.SentimentResult = slices.Clone(s.SentimentResult)
	c.FundamentalResult = slices.Clone(s.FundamentalResult)
	c.BullishResult = slices.Clone(s.BullishResult)
	c.BearishResult = slices.Clone(s.BearishResult)
	c.Errors = slices.Clone(s.Errors)
	return &c
}

// SlotAppend pairs a slot with the entries to append to it.
type SlotAppend struct {
	Slot    Slot          `json:"slot"`
	Entries []ResultEntry `json:"entries"`
}

// Update is a partial update returned by one task invocation.
type Update struct {
	Appends     []SlotAppend `json:"appends,omitempty"`
	Errors      []string     `json:"errors,omitempty"`
	FinalReport *string      `json:"final_report,omitempty"`
	ReportPath  *string      `json:"report_path,omitempty"`
}

// Append adds an entry for a slot to the update.
func (u Update) Append(slot Slot, entry ResultEntry) Update {
	u.Appends = append(slices.Clone(u.Appends), SlotAppend{Slot: slot, Entries: []ResultEntry{entry}})
	return u
}

// WithError adds a human-readable error message to the update.
func (u Update) WithError(msg string) Update {
	u.Errors = append(slices.Clone(u.Errors), msg)
	return u
}

// WithFinalReport sets the final report.
func (u Update) WithFinalReport(report string) Update {
	u.FinalReport = &report
	return u
}

// WithReportPath sets the report path.
func (u Update) WithReportPath(path string) Update {
	u.ReportPath = &path
	return u
}

// Slots returns the distinct slots written by the update, in first-seen order.
func (u Update) Slots() []Slot {
	var out []Slot
	for _, a := range u.Appends {
		if !slices.Contains(out, a.Slot) {
			out = append(out, a.Slot)
		}
	}
	return out
}

// Merge combines updates into one. Sequences concatenate in argument order and
// scalars take the last value that was set, so merging is associative; for
// updates that own disjoint slots the result is order-insensitive per slot.
func Merge(updates ...Update) Update {
	var out Update
	for _, u := range updates {
		out.Appends = append(out.Appends, u.Appends...)
		out.Errors = append(out.Errors, u.Errors...)
		if u.FinalReport != nil {
			out.FinalReport = u.FinalReport
		}
		if u.ReportPath != nil {
			out.ReportPath = u.ReportPath
		}
	}
	return out
}
