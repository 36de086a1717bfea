package api

import (
	"testing"
)

func TestToolDefinitions(t *testing.T) {
	tools := ToolDefinitions()
	if len(tools) != 2 {
		t.Fatalf("ToolDefinitions() returned %d tools, want 2", len(tools))
	}

	names := map[string]bool{}
	for _, tool := range tools {
		if tool.OfTool == nil {
			t.Fatal("tool is not a custom tool param")
		}
		names[tool.OfTool.Name] = true
		if !tool.OfTool.Description.Valid() || tool.OfTool.Description.Value == "" {
			t.Errorf("tool %s has no description", tool.OfTool.Name)
		}
		if len(tool.OfTool.InputSchema.Required) == 0 {
			t.Errorf("tool %s has no required fields", tool.OfTool.Name)
		}
	}
	for _, want := range []string{ToolWebSearch, ToolFuturesData} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}

func TestToolDefinitions_Subset(t *testing.T) {
	tools := ToolDefinitions(ToolFuturesData, "unknown")
	if len(tools) != 1 || tools[0].OfTool.Name != ToolFuturesData {
		t.Errorf("ToolDefinitions(futures_data, unknown) = %d tools, want only futures_data", len(tools))
	}
}

func TestToolSpecs_ReturnsCopy(t *testing.T) {
	specs := ToolSpecs()
	specs[0].Name = "changed"
	if ToolSpecs()[0].Name == "changed" {
		t.Error("ToolSpecs() exposes the shared slice")
	}
}
