package curriculum

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

type fakeExtractor struct {
	calls []string
	fail  string
}

func (f *fakeExtractor) ExtractLearner(ctx context.Context, learner LearnerInput) (result LearnerExtraction, err error) {
	f.calls = append(f.calls, "learner")
	if f.fail == "learner" {
		err = errors.New("boom")
		return result, err
	}
	result = LearnerExtraction{
		TechnicalSkills:    []SkillEvidence{{Skill: "Python"}, {Skill: " "}},
		ProfessionalSkills: []SkillEvidence{{Skill: "Communication"}},
		ExperienceLevel:    "intermediate",
	}
	return result, err
}

func (f *fakeExtractor) ExtractProject(ctx context.Context, project ProjectInput) (result ProjectExtraction, err error) {
	f.calls = append(f.calls, "project")
	if f.fail == "project" {
		err = errors.New("boom")
		return result, err
	}
	result = ProjectExtraction{
		Deliverables:            []Deliverable{{Deliverable: "Dashboard"}},
		TechnicalSkillsRequired: []RequiredSkill{{Skill: "SQL"}},
		DomainKnowledge:         []KnowledgeArea{{Area: "Retention"}},
	}
	return result, err
}

func (f *fakeExtractor) AnalyzeGaps(ctx context.Context, learner LearnerExtraction, project ProjectExtraction) (result GapAnalysis, err error) {
	f.calls = append(f.calls, "gaps")
	if f.fail == "gaps" {
		err = errors.New("boom")
		return result, err
	}
	result = GapAnalysis{
		StrongMatches: []SkillMatch{{LearnerSkill: "Python"}},
		SkillGaps:     []SkillGap{{ProjectNeed: "SQL"}},
	}
	return result, err
}

func testRawInputs() (raw RawInputs) {
	raw = RawInputs{
		Learner: LearnerInput{
			LearnerName: "Ada",
			ResumeText:  "Python developer",
		},
		Project: ProjectInput{
			CompanyName:      "Acme",
			ProjectTitle:     "Churn",
			ProjectNarrative: "We need a churn dashboard built over the semester.",
		},
	}
	return raw
}

func TestRawInputsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *RawInputs)
		wantErr bool
	}{
		{"valid", func(r *RawInputs) {}, false},
		{"blank resume", func(r *RawInputs) { r.Learner.ResumeText = "  " }, true},
		{"blank narrative", func(r *RawInputs) { r.Project.ProjectNarrative = "" }, true},
		{"term too long", func(r *RawInputs) { r.Institution.TermLengthWeeks = 53 }, true},
		{"term negative", func(r *RawInputs) { r.Institution.TermLengthWeeks = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := testRawInputs()
			raw.Institution.ApplyDefaults()
			tt.mutate(&raw)

			err := raw.Validate()
			if tt.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestAnalyzeRunsInOrder(t *testing.T) {
	ex := &fakeExtractor{}

	analysis, err := Analyze(context.Background(), ex, testRawInputs())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	want := []string{"learner", "project", "gaps"}
	if len(ex.calls) != len(want) {
		t.Fatalf("Expected %d calls, got %v", len(want), ex.calls)
	}
	for i := range want {
		if ex.calls[i] != want[i] {
			t.Errorf("Call %d: expected %s, got %s", i, want[i], ex.calls[i])
		}
	}

	if analysis.Learner.ExperienceLevel != "intermediate" {
		t.Error("Expected learner extraction in analysis")
	}
}

func TestAnalyzeStopsOnFailure(t *testing.T) {
	ex := &fakeExtractor{fail: "project"}

	_, err := Analyze(context.Background(), ex, testRawInputs())
	if err == nil {
		t.Fatal("Expected error")
	}

	if len(ex.calls) != 2 {
		t.Errorf("Expected gap analysis to be skipped, got calls %v", ex.calls)
	}
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	ex := &fakeExtractor{}
	raw := testRawInputs()
	raw.Learner.ResumeText = ""

	_, err := Analyze(context.Background(), ex, raw)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
	if len(ex.calls) != 0 {
		t.Error("Extractor should not be called for invalid input")
	}
}

func TestConfirmDefaults(t *testing.T) {
	ex := &fakeExtractor{}
	raw := testRawInputs()

	analysis, err := Analyze(context.Background(), ex, raw)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	confirmed := Confirm(raw, analysis)

	if confirmed.Institution.TermLengthWeeks != DefaultTermLengthWeeks {
		t.Errorf("Expected default term length, got %d", confirmed.Institution.TermLengthWeeks)
	}
	if confirmed.Institution.GradingScale != DefaultGradingScale {
		t.Errorf("Expected default grading scale, got %q", confirmed.Institution.GradingScale)
	}
	if confirmed.Gaps.ScaffoldingRecommendation != "moderate" {
		t.Errorf("Expected moderate scaffolding, got %q", confirmed.Gaps.ScaffoldingRecommendation)
	}
	if confirmed.Gaps.OverallFit != "good" {
		t.Errorf("Expected good fit, got %q", confirmed.Gaps.OverallFit)
	}
	if len(confirmed.Learner.ConfirmedSkills) != 2 {
		t.Errorf("Expected blank skills to be dropped, got %v", confirmed.Learner.ConfirmedSkills)
	}
	if confirmed.Project.ConfirmedSummary != raw.Project.ProjectNarrative {
		t.Errorf("Expected narrative fallback summary, got %q", confirmed.Project.ConfirmedSummary)
	}
	if len(confirmed.Gaps.SkillGaps) != 1 || confirmed.Gaps.SkillGaps[0] != "SQL" {
		t.Errorf("Expected SQL gap, got %v", confirmed.Gaps.SkillGaps)
	}

	err = confirmed.Validate()
	if err != nil {
		t.Errorf("Confirmed data should validate: %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo", 2); got != "hé" {
		t.Errorf("Expected rune-safe truncation, got %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Errorf("Expected unchanged string, got %q", got)
	}
}
