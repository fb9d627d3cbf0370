package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nikogura/learning-designer/pkg/curriculum"
	"github.com/nikogura/learning-designer/pkg/session"
	"github.com/pkg/errors"
)

func isolate(t *testing.T) (dir string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range []string{"ANTHROPIC_API_KEY", "LOG_MODE", "OUTPUT_DIR", "SESSION_BACKEND"} {
		t.Setenv(key, "")
	}
	t.Chdir(dir)

	configFile = ""
	outputDir = filepath.Join(dir, "out")
	renderDOCX = false
	t.Cleanup(func() { outputDir = "" })
	return dir
}

func savedSession(t *testing.T, dir string, confirmed bool) (path string) {
	t.Helper()

	s := session.New(time.Now())
	if confirmed {
		s.Confirmed = &curriculum.ConfirmedData{
			Learner: curriculum.ConfirmedLearner{LearnerName: "Jane Doe"},
			Project: curriculum.ConfirmedProject{ProjectTitle: "Inventory Dashboard"},
			Institution: curriculum.Institution{
				TermLengthWeeks: 3,
				GradingScale:    "Pass/Fail",
			},
		}
	}
	s.Build.Step = curriculum.StepOutlineReady
	s.Build.Objectives = &curriculum.Objectives{}
	s.Build.Outline = &curriculum.Outline{
		Weeks: []curriculum.OutlineWeek{{Week: 1, Theme: "Onboarding"}, {Week: 2, Theme: "Build"}, {Week: 3, Theme: "Present"}},
	}
	s.Build.Weeks[2] = curriculum.Week{Number: 2, Theme: "Build", Detail: "### Week 2: Build\n\nShip the first chart."}

	path = filepath.Join(dir, "run.session.json")
	if err := session.WriteFile(path, &s); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestRunFinalize(t *testing.T) {
	dir := isolate(t)
	path := savedSession(t, dir, true)

	err := runFinalize(finalizeCmd, []string{path})
	if err != nil {
		t.Fatalf("runFinalize failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out", "Inventory_Dashboard_Jane_Doe_curriculum.md"))
	if err != nil {
		t.Fatalf("Expected the curriculum to be written: %v", err)
	}

	doc := string(data)
	if !strings.Contains(doc, "Ship the first chart.") {
		t.Error("Expected week 2 detail in the document")
	}
	if strings.Count(doc, "has not yet been generated") != 2 {
		t.Errorf("Expected placeholders for weeks 1 and 3, got:\n%s", doc)
	}
}

func TestRunFinalizeUnconfirmed(t *testing.T) {
	dir := isolate(t)
	path := savedSession(t, dir, false)

	err := runFinalize(finalizeCmd, []string{path})
	if !errors.Is(err, curriculum.ErrNoConfirmedData) {
		t.Errorf("Expected ErrNoConfirmedData, got %v", err)
	}
}
