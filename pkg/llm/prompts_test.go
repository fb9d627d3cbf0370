package llm

import (
	"strings"
	"testing"

	"github.com/nikogura/learning-designer/pkg/curriculum"
)

func TestBuildLearnerExtractionPrompt(t *testing.T) {
	prompt := buildLearnerExtractionPrompt(curriculum.LearnerInput{
		ResumeText:     "Built dashboards in Tableau",
		MajorOrProgram: "Business Analytics",
	})

	expected := []string{
		"Built dashboards in Tableau",
		"Business Analytics",
		"technical_skills",
		"potential_growth_areas",
		"Academic Level: Not specified",
	}
	for _, e := range expected {
		if !strings.Contains(prompt, e) {
			t.Errorf("Prompt should contain %q", e)
		}
	}
}

func TestBuildProjectExtractionPrompt(t *testing.T) {
	prompt := buildProjectExtractionPrompt(curriculum.ProjectInput{
		ProjectNarrative: "Redesign our onboarding emails",
		CompanyName:      "Acme",
	})

	for _, e := range []string{"Redesign our onboarding emails", "Company: Acme", "Mentorship Level: Medium", "Team Size: Individual", "weekly_activities_suggested"} {
		if !strings.Contains(prompt, e) {
			t.Errorf("Prompt should contain %q", e)
		}
	}
}

func TestBuildGapAnalysisPrompt(t *testing.T) {
	prompt := buildGapAnalysisPrompt(
		curriculum.LearnerExtraction{TechnicalSkills: []curriculum.SkillEvidence{{Skill: "Excel"}}},
		curriculum.ProjectExtraction{TechnicalSkillsRequired: []curriculum.RequiredSkill{{Skill: "SQL"}}},
	)

	for _, e := range []string{`"skill": "Excel"`, `"skill": "SQL"`, "fit_assessment", "scaffolding_recommendation"} {
		if !strings.Contains(prompt, e) {
			t.Errorf("Prompt should contain %q", e)
		}
	}
}

func TestBuildObjectivesPrompt(t *testing.T) {
	confirmed := testConfirmedData(10)
	confirmed.Institution.FixedObjectives = []string{"collaboration", "custom_area"}

	prompt := buildObjectivesPrompt(confirmed)

	expected := []string{
		"## LEARNER PROFILE",
		"## PROJECT DETAILS",
		"## SKILL GAP ANALYSIS",
		"## INSTITUTIONAL CONSTRAINTS",
		"- Collaboration/teamwork",
		"- custom_area",
		"Project Deliverable(s): 40%",
		`"grading_scale": "Pass/Fail"`,
		"Term Length: 10 weeks",
	}
	for _, e := range expected {
		if !strings.Contains(prompt, e) {
			t.Errorf("Prompt should contain %q", e)
		}
	}

	if strings.Contains(prompt, "%!") {
		t.Error("Prompt contains a formatting error")
	}
}

func TestFixedObjectivesSelection(t *testing.T) {
	all := fixedObjectivesSelection(curriculum.Institution{})
	if strings.Count(all, "\n")+1 != len(fixedObjectiveLabels) {
		t.Errorf("Expected every fixed objective when none are selected, got:\n%s", all)
	}

	none := fixedObjectivesSelection(curriculum.Institution{FixedObjectives: []string{}})
	if none != "- None selected" {
		t.Errorf("Expected explicit empty selection to list none, got %q", none)
	}
}

func TestBuildOutlinePrompt(t *testing.T) {
	objectives := curriculum.Objectives{
		Variable: []curriculum.Objective{{Text: "Construct SQL queries", BloomLevel: "Create"}},
	}

	prompt := buildOutlinePrompt(testConfirmedData(12), objectives)

	for _, e := range []string{"12-week", "Generate all 12 weeks", "Construct SQL queries (Bloom's: Create)", "Scaffolding level: significant"} {
		if !strings.Contains(prompt, e) {
			t.Errorf("Prompt should contain %q", e)
		}
	}
	if strings.Contains(prompt, "%!") {
		t.Error("Prompt contains a formatting error")
	}
}

func TestBuildWeekPrompt(t *testing.T) {
	req := curriculum.WeekRequest{
		Confirmed: testConfirmedData(14),
		Outline: curriculum.Outline{Weeks: []curriculum.OutlineWeek{
			{Week: 1, Theme: "Onboarding", Milestone: "Kickoff", Deliverables: []string{"Learning contract"}},
			{Week: 2, Theme: "Planning"},
		}},
		Week: 1,
	}

	prompt := buildWeekPrompt(req)

	for _, e := range []string{"### Week 1: Onboarding", "This is the first week", "Next week (2): Planning", "- Learning contract", "Phase: onboarding"} {
		if !strings.Contains(prompt, e) {
			t.Errorf("Prompt should contain %q", e)
		}
	}
	if strings.Contains(prompt, "USER FEEDBACK") {
		t.Error("Prompt should not contain a feedback section without feedback")
	}
	if strings.Contains(prompt, "%!") {
		t.Error("Prompt contains a formatting error")
	}
}

func TestWeekPhase(t *testing.T) {
	tests := []struct {
		week int
		want string
	}{
		{1, "onboarding"},
		{2, "onboarding"},
		{3, "core"},
		{11, "core"},
		{12, "synthesis"},
		{13, "wrap-up"},
		{14, "wrap-up"},
	}

	for _, tt := range tests {
		phase, _ := weekPhase(tt.week, 14)
		if phase != tt.want {
			t.Errorf("Week %d: expected %s, got %s", tt.week, tt.want, phase)
		}
	}
}
