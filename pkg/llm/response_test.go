package llm

import (
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fenced json block",
			in:   "Here you go:\n```json\n{\"a\": 1}\n```\nThanks",
			want: `{"a": 1}`,
		},
		{
			name: "fenced block without language",
			in:   "```\n{\"b\": 2}\n```",
			want: `{"b": 2}`,
		},
		{
			name: "bare object",
			in:   "  {\"c\": 3}  ",
			want: `{"c": 3}`,
		},
		{
			name: "object inside prose",
			in:   "Sure! {\"d\": {\"e\": 4}} Hope that helps.",
			want: `{"d": {"e": 4}}`,
		},
		{
			name: "first fenced block wins",
			in:   "```json\n{\"first\": true}\n```\n```json\n{\"second\": true}\n```",
			want: `{"first": true}`,
		},
		{
			name: "no json at all",
			in:   "I cannot help with that.",
			want: "I cannot help with that.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSON(tt.in)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	err := decodeJSON("```json\n{\"name\": \"ok\"}\n```", &v)
	if err != nil {
		t.Fatalf("decodeJSON failed: %v", err)
	}
	if v.Name != "ok" {
		t.Errorf("Expected name ok, got %q", v.Name)
	}

	err = decodeJSON("{\"name\": ", &v)
	if err == nil {
		t.Error("Expected error for truncated JSON")
	}

	err = decodeJSON(`{"name": 42}`, &v)
	if err == nil {
		t.Error("Expected error for mismatched shape")
	}
}

func TestStripMarkdownFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"markdown fence", "```markdown\n### Week 1: Start\n\nBody\n```", "### Week 1: Start\n\nBody"},
		{"bare fence", "```\n### Week 2\n```\n", "### Week 2"},
		{"no fence", "\n### Week 3\n\nText\n", "### Week 3\n\nText"},
		{"unterminated fence", "```md\n### Week 4", "### Week 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripMarkdownFence(tt.in)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
