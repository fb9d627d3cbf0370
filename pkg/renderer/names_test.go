package renderer

import (
	"strings"
	"testing"

	"github.com/nikogura/learning-designer/pkg/curriculum"
)

func TestDownloadFilename(t *testing.T) {
	tests := []struct {
		name     string
		project  string
		learner  string
		ext      string
		expected string
	}{
		{"both", "Inventory Dashboard", "Jane Doe", "md", "Inventory_Dashboard_Jane_Doe_curriculum.md"},
		{"dotted ext", "Inventory Dashboard", "Jane Doe", ".docx", "Inventory_Dashboard_Jane_Doe_curriculum.docx"},
		{"no learner", "Inventory Dashboard", "", "md", "Inventory_Dashboard_curriculum.md"},
		{"no project", "", "Jane Doe", "md", "course_Jane_Doe_curriculum.md"},
		{"only unsafe chars", `<>:"/\|?*`, "", "md", "course_curriculum.md"},
		{"unsafe removed", `R&D: "Phase/2"?`, "Ana  María", "md", "R&D_Phase2_Ana_María_curriculum.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confirmed := curriculum.ConfirmedData{}
			confirmed.Project.ProjectTitle = tt.project
			confirmed.Learner.LearnerName = tt.learner

			got := DownloadFilename(confirmed, tt.ext)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSanitizeNameLength(t *testing.T) {
	long := strings.Repeat("a", 49) + " " + strings.Repeat("b", 20)
	got := sanitizeName(long)

	// the cut lands right after the underscore, which is then trimmed
	if got != strings.Repeat("a", 49) {
		t.Errorf("Expected 49 a's, got %q", got)
	}

	got = sanitizeName(strings.Repeat("é", 80))
	if len([]rune(got)) != maxNamePart {
		t.Errorf("Expected %d runes, got %d", maxNamePart, len([]rune(got)))
	}
}
