package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"scan_detect_document",
		"scan_quality",
		"scan_rectify",
		"scan_replay",
		"scan_default_config",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}
			if schemaType := tool.InputSchema["type"]; schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}
			if props, ok := tool.InputSchema["properties"]; !ok || props == nil {
				t.Error("InputSchema missing 'properties' field")
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	want := map[string]string{
		"scan_detect_document": "path",
		"scan_quality":         "path",
		"scan_rectify":         "path",
		"scan_replay":          "paths",
	}

	for _, tool := range GetToolDefinitions() {
		field, ok := want[tool.Name]
		if !ok {
			continue
		}
		t.Run(tool.Name, func(t *testing.T) {
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			for _, r := range required {
				if r == field {
					return
				}
			}
			t.Errorf("%s should require %q, got %v", tool.Name, field, required)
		})
	}
}
