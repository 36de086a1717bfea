// Package agent provides the futures analyst roles and the phased plan that runs them.
package agent

import (
	"fmt"

	"github.com/ShayCichocki/futuresdesk/internal/api"
	"github.com/ShayCichocki/futuresdesk/internal/report"
	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

// Role identifies one analyst.
type Role string

const (
	RoleNews        Role = "news"
	RoleSentiment   Role = "sentiment"
	RoleFundamental Role = "fundamental"
	RoleBullish     Role = "bullish"
	RoleBearish     Role = "bearish"
	RoleSummary     Role = "summary"
)

// RoleSpec describes how a role is wired into the plan.
type RoleSpec struct {
	Role Role
	// Task is the task name used in events.
	Task string
	// Label is the human-readable name used in error messages.
	Label string
	// Slot is the result slot the role writes. Empty for the summary role.
	Slot models.Slot
	// Kind is the report kind the role persists.
	Kind report.Kind
	// Tools are the tools the role may call.
	Tools []string
	// System is the role instruction.
	System string
}

var roleSpecs = map[Role]RoleSpec{
	RoleNews: {
		Role: RoleNews, Task: "news_agent", Label: "news analysis",
		Slot: models.SlotNews, Kind: report.KindNews,
		Tools: []string{api.ToolWebSearch}, System: newsPrompt,
	},
	RoleSentiment: {
		Role: RoleSentiment, Task: "sentiment_agent", Label: "sentiment analysis",
		Slot: models.SlotSentiment, Kind: report.KindSentiment,
		System: sentimentPrompt,
	},
	RoleFundamental: {
		Role: RoleFundamental, Task: "fundamental_agent", Label: "fundamental analysis",
		Slot: models.SlotFundamental, Kind: report.KindFundamental,
		Tools: []string{api.ToolFuturesData}, System: fundamentalPrompt,
	},
	RoleBullish: {
		Role: RoleBullish, Task: "bullish_agent", Label: "bullish analysis",
		Slot: models.SlotBullish, Kind: report.KindBullish,
		Tools: []string{api.ToolWebSearch}, System: bullishPrompt,
	},
	RoleBearish: {
		Role: RoleBearish, Task: "bearish_agent", Label: "bearish analysis",
		Slot: models.SlotBearish, Kind: report.KindBearish,
		Tools: []string{api.ToolWebSearch}, System: bearishPrompt,
	},
	RoleSummary: {
		Role: RoleSummary, Task: "summary_agent", Label: "final report",
		Kind: report.KindSummary, System: summaryPrompt,
	},
}

// Spec returns the wiring for role.
func Spec(role Role) (RoleSpec, error) {
	s, ok := roleSpecs[role]
	if !ok {
		return RoleSpec{}, fmt.Errorf("unknown analyst role %q", role)
	}
	s.Tools = append([]string(nil), s.Tools...)
	return s, nil
}

// Roles returns every role in execution order.
func Roles() []Role {
	return []Role{RoleNews, RoleSentiment, RoleFundamental, RoleBullish, RoleBearish, RoleSummary}
}

// labelFor returns the label of the role writing slot.
func labelFor(slot models.Slot) string {
	for _, s := range roleSpecs {
		if s.Slot == slot {
			return s.Label
		}
	}
	return string(slot)
}
