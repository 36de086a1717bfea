package agent

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

// subject renders "keyword (symbol)", or just the symbol without a keyword.
func subject(s *models.SharedState) string {
	if s.Keyword == "" || s.Keyword == s.Symbol {
		return s.Symbol
	}
	return fmt.Sprintf("%s (%s)", s.Keyword, s.Symbol)
}

func keyword(s *models.SharedState) string {
	if s.Keyword != "" {
		return s.Keyword
	}
	return s.Symbol
}

// NewsQuery asks for the news digest.
func NewsQuery(s *models.SharedState) string {
	return fmt.Sprintf("Analyze news for %s futures. Search for the latest developments and classify them as positive or negative for prices.", keyword(s))
}

// SentimentQuery asks for the market mood.
func SentimentQuery(s *models.SharedState) string {
	return fmt.Sprintf("Analyze the overall market sentiment for %s futures. Consider the current market environment, investor psychology and capital flows.", keyword(s))
}

// FundamentalQuery asks for the data-driven analysis.
func FundamentalQuery(s *models.SharedState) string {
	return fmt.Sprintf("Analyze the technical data for %s futures, including price trend, volume, open interest and key levels. The variety code for the futures_data tool is %q.", subject(s), s.Symbol)
}

// BullishQuery embeds the first-phase reports for the bullish strategist.
func BullishQuery(s *models.SharedState) string {
	return opinionQuery(s, "bullish", "Dig into the long-side opportunity from a bullish perspective and give a concrete long strategy.")
}

// BearishQuery embeds the first-phase reports for the bearish strategist.
func BearishQuery(s *models.SharedState) string {
	return opinionQuery(s, "bearish", "Dig into the downside risks from a bearish perspective and give a concrete short or hedging strategy.")
}

func opinionQuery(s *models.SharedState, stance, ask string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following reports for %s futures, give a professional %s analysis.\n\n", subject(s), stance)
	for _, slot := range []models.Slot{models.SlotNews, models.SlotSentiment, models.SlotFundamental} {
		writeSection(&b, labelFor(slot), completedContent(s, slot))
	}
	b.WriteString(ask)
	b.WriteString("\n")
	return b.String()
}

// BuildSummaryInput packages all five results for the summary role. A failed
// result is replaced by its failure message and a missing one by a marker.
func BuildSummaryInput(s *models.SharedState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Produce a comprehensive investment report for %s futures from the five reports below.\n\n", subject(s))
	for _, slot := range models.AllSlots() {
		writeSection(&b, labelFor(slot), resultContent(s, slot))
	}
	return b.String()
}

// completedContent returns a slot's success content, or the "did not complete"
// marker when the slot failed or is empty.
func completedContent(s *models.SharedState, slot models.Slot) string {
	if e, ok := s.Latest(slot); ok && e.OK() {
		return e.Content
	}
	return DidNotComplete(labelFor(slot))
}

// resultContent keeps the failure message of a failed slot.
func resultContent(s *models.SharedState, slot models.Slot) string {
	e, ok := s.Latest(slot)
	switch {
	case !ok:
		return DidNotComplete(labelFor(slot))
	case e.OK():
		return e.Content
	default:
		return fmt.Sprintf("%s failed: %s", labelFor(slot), e.Error)
	}
}

// DidNotComplete is the substitute text for a section with no usable result.
func DidNotComplete(label string) string {
	return fmt.Sprintf("(%s did not complete)", label)
}

func writeSection(b *strings.Builder, label, content string) {
	rule := strings.Repeat("=", 20)
	fmt.Fprintf(b, "%s\n[%s]\n%s\n%s\n\n", rule, strings.ToUpper(label), rule, strings.TrimSpace(content))
}
