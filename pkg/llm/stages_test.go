package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/nikogura/learning-designer/pkg/curriculum"
)

func testConfirmedData(weeks int) (confirmed curriculum.ConfirmedData) {
	confirmed = curriculum.ConfirmedData{
		Learner: curriculum.ConfirmedLearner{LearnerName: "Ada", ConfirmedSkills: []string{"Python"}},
		Project: curriculum.ConfirmedProject{
			CompanyName:      "Acme",
			ProjectTitle:     "Churn Dashboard",
			ConfirmedSummary: "Build a dashboard.",
		},
		Gaps: curriculum.ConfirmedGaps{SkillGaps: []string{"SQL"}, ScaffoldingRecommendation: "significant"},
		Institution: curriculum.Institution{
			CreditHours:     "3",
			TermLengthWeeks: weeks,
			GradingScale:    "Pass/Fail",
		},
	}
	return confirmed
}

func TestExtractLearner(t *testing.T) {
	reply := "```json\n" + `{"technical_skills":[{"skill":"Python","proficiency":"advanced"}],"experience_level":"experienced"}` + "\n```"
	client := newTestClient(t, replyWith(reply))

	result, err := client.ExtractLearner(context.Background(), curriculum.LearnerInput{ResumeText: "Python dev"})
	if err != nil {
		t.Fatalf("ExtractLearner failed: %v", err)
	}

	if len(result.TechnicalSkills) != 1 || result.TechnicalSkills[0].Skill != "Python" {
		t.Errorf("Unexpected technical skills %+v", result.TechnicalSkills)
	}
	if result.ParseError != "" {
		t.Errorf("Expected no parse error, got %q", result.ParseError)
	}
}

func TestMalformedResponsesYieldDefaults(t *testing.T) {
	client := newTestClient(t, replyWith("Sorry, I can't produce JSON today."))
	ctx := context.Background()

	learner, err := client.ExtractLearner(ctx, curriculum.LearnerInput{ResumeText: "x"})
	if err != nil {
		t.Fatalf("ExtractLearner should not fail on malformed JSON: %v", err)
	}
	if learner.ParseError == "" || learner.ExperienceLevel != "entry" {
		t.Errorf("Expected default learner extraction, got %+v", learner)
	}

	narrative := strings.Repeat("n", 250)
	project, err := client.ExtractProject(ctx, curriculum.ProjectInput{ProjectNarrative: narrative})
	if err != nil {
		t.Fatalf("ExtractProject should not fail on malformed JSON: %v", err)
	}
	if project.ParseError == "" || len(project.ProjectSummary) != 200 {
		t.Errorf("Expected default project extraction with truncated summary, got %d chars", len(project.ProjectSummary))
	}

	gaps, err := client.AnalyzeGaps(ctx, learner, project)
	if err != nil {
		t.Fatalf("AnalyzeGaps should not fail on malformed JSON: %v", err)
	}
	if gaps.ParseError == "" || gaps.FitAssessment.ScaffoldingRecommendation != "moderate" {
		t.Errorf("Expected default gap analysis, got %+v", gaps)
	}

	objectives, err := client.GenerateObjectives(ctx, testConfirmedData(4))
	if err != nil {
		t.Fatalf("GenerateObjectives should not fail on malformed JSON: %v", err)
	}
	if objectives.ParseError == "" || objectives.Assessment.GradingScale != "Pass/Fail" {
		t.Errorf("Expected default objectives, got %+v", objectives)
	}

	outline, err := client.GenerateOutline(ctx, testConfirmedData(4), curriculum.Objectives{})
	if err != nil {
		t.Fatalf("GenerateOutline should not fail on malformed JSON: %v", err)
	}
	if outline.ParseError == "" || len(outline.Weeks) != 4 {
		t.Errorf("Expected default outline with 4 weeks, got %+v", outline)
	}
	if outline.Weeks[3].Theme != "Week 4" {
		t.Errorf("Expected seeded theme, got %q", outline.Weeks[3].Theme)
	}
}

func TestGenerateObjectives(t *testing.T) {
	reply := `{
  "fixed_objectives": [{"id": "fixed_1", "skill_area": "collaboration", "text": "Collaborate with mentors", "bloom_level": "Apply"}],
  "variable_objectives": [{"id": "var_1", "text": "Construct SQL queries", "bloom_level": "Create", "source": "skill_gap"}],
  "assessment_strategy": {
    "grading_breakdown": {"project_deliverables": {"weight": 40, "description": "Quality"}},
    "final_deliverable": {"title": "Report", "description": "A report.", "components": ["Summary"]},
    "rubric_criteria": {"deliverable": ["Accuracy"]}
  }
}`
	client := newTestClient(t, replyWith(reply))

	result, err := client.GenerateObjectives(context.Background(), testConfirmedData(4))
	if err != nil {
		t.Fatalf("GenerateObjectives failed: %v", err)
	}

	if len(result.Objectives.Fixed) != 1 || len(result.Objectives.Variable) != 1 {
		t.Errorf("Unexpected objectives %+v", result.Objectives)
	}
	if result.Assessment.GradingScale != "Pass/Fail" {
		t.Errorf("Expected grading scale filled from institution, got %q", result.Assessment.GradingScale)
	}
	if result.Assessment.GradingBreakdown["project_deliverables"].Weight != 40 {
		t.Error("Expected grading breakdown to be decoded")
	}
	if result.Assessment.RubricCriteria.Deliverable[0] != "Accuracy" {
		t.Error("Expected rubric criteria to be decoded")
	}
}

func TestGenerateOutlineLenientWeeks(t *testing.T) {
	reply := `Here is the outline:
{
  "course_header": {"title": "EXP 495: Churn", "credits": 3, "description": "A course."},
  "weeks": [
    {"week": 1, "theme": "Onboarding", "milestone": "Kickoff"},
    {"week": "2", "theme": "Planning", "milestone": null, "deliverables": ["Plan"]},
    {"week": 2, "theme": "Duplicate"},
    {"week": 9, "theme": "Out of term"},
    {"theme": "No number"}
  ]
}`
	client := newTestClient(t, replyWith(reply))

	outline, err := client.GenerateOutline(context.Background(), testConfirmedData(3), curriculum.Objectives{})
	if err != nil {
		t.Fatalf("GenerateOutline failed: %v", err)
	}

	if outline.ParseError != "" {
		t.Errorf("Expected no parse error, got %q", outline.ParseError)
	}
	if outline.CourseHeader.Credits != "3" {
		t.Errorf("Expected numeric credits read as string, got %q", outline.CourseHeader.Credits)
	}
	if len(outline.Weeks) != 2 {
		t.Fatalf("Expected 2 usable weeks, got %+v", outline.Weeks)
	}
	if outline.Weeks[1].Week != 2 || outline.Weeks[1].Theme != "Planning" {
		t.Errorf("Expected string week number to be accepted, got %+v", outline.Weeks[1])
	}
	if outline.Weeks[1].Milestone != "" {
		t.Errorf("Expected null milestone to be empty, got %q", outline.Weeks[1].Milestone)
	}
	if len(outline.Weeks[1].Deliverables) != 1 {
		t.Errorf("Expected deliverables, got %v", outline.Weeks[1].Deliverables)
	}
}

func TestGenerateWeekStripsFenceAndSendsFeedback(t *testing.T) {
	var prompt string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) > 0 && len(body.Messages[0].Content) > 0 {
			prompt = body.Messages[0].Content[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(messageResponse("```markdown\n### Week 2: Planning\n\n#### Concrete Experience\nPlan.\n```"))
	})

	req := curriculum.WeekRequest{
		Confirmed: testConfirmedData(4),
		Outline: curriculum.Outline{Weeks: []curriculum.OutlineWeek{
			{Week: 1, Theme: "Onboarding"},
			{Week: 2, Theme: "Planning"},
			{Week: 3, Theme: "Building"},
		}},
		Week:     2,
		Feedback: "Add a site visit",
	}

	detail, err := client.GenerateWeek(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateWeek failed: %v", err)
	}

	if !strings.HasPrefix(detail, "### Week 2: Planning") || strings.Contains(detail, "```") {
		t.Errorf("Expected fence stripped, got %q", detail)
	}
	if !strings.Contains(prompt, "Add a site visit") {
		t.Error("Expected feedback in the prompt")
	}
	if !strings.Contains(prompt, "Previous week (1): Onboarding") || !strings.Contains(prompt, "Next week (3): Building") {
		t.Error("Expected neighbouring week themes in the prompt")
	}
}
