package models

// SlotSummary describes the outcome recorded in one result slot.
type SlotSummary struct {
	Slot    Slot `json:"slot"`
	Entries int  `json:"entries"`
	// Succeeded is true when the slot's recorded outcome is a success.
	Succeeded bool `json:"succeeded"`
}

// RunSummary holds end-of-run statistics for a SharedState.
type RunSummary struct {
	Symbol      string        `json:"symbol"`
	Keyword     string        `json:"keyword"`
	Slots       []SlotSummary `json:"slots"`
	Succeeded   int           `json:"succeeded"`
	Total       int           `json:"total"`
	ReportBytes int           `json:"report_bytes"`
	ReportPath  string        `json:"report_path,omitempty"`
	Errors      []string      `json:"errors,omitempty"`

	FirstPhaseReady  bool `json:"first_phase_ready"`
	SecondPhaseReady bool `json:"second_phase_ready"`
}

// Summary computes end-of-run statistics.
func (s *SharedState) Summary() RunSummary {
	sum := RunSummary{
		Symbol:           s.Symbol,
		Keyword:          s.Keyword,
		ReportBytes:      len(s.FinalReport),
		ReportPath:       s.ReportPath,
		Errors:           append([]string(nil), s.Errors...),
		FirstPhaseReady:  s.FirstPhaseReady,
		SecondPhaseReady: s.SecondPhaseReady,
	}
	for _, slot := range AllSlots() {
		entry, ok := s.Latest(slot)
		ss := SlotSummary{
			Slot:      slot,
			Entries:   len(s.Slot(slot)),
			Succeeded: ok && entry.OK(),
		}
		if ss.Succeeded {
			sum.Succeeded++
		}
		sum.Total++
		sum.Slots = append(sum.Slots, ss)
	}
	return sum
}
