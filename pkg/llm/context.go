package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nikogura/learning-designer/pkg/curriculum"
)

const notSpecified = "Not specified"

// fixedObjectiveLabels maps fixed objective keys to their display names.
//
//nolint:gochecknoglobals // read-only lookup table
var fixedObjectiveLabels = []struct {
	key   string
	label string
}{
	{"project_management", "Project management and organization"},
	{"professional_communication", "Professional communication"},
	{"time_management", "Time management and accountability"},
	{"critical_thinking", "Critical thinking and problem-solving"},
	{"collaboration", "Collaboration/teamwork"},
	{"self_reflection", "Self-reflection and metacognition"},
}

func learnerContext(learner curriculum.ConfirmedLearner) (section string) {
	section = fmt.Sprintf(`## LEARNER PROFILE
- Name: %s
- Academic Level: %s
- Major/Program: %s
- Current Skills: %s
- Experience Level: %s
- Relevant Coursework: %s
- Career Goals: %s
- Learning Preferences: %s`,
		orValue(learner.LearnerName, "Student"),
		orValue(learner.AcademicLevel, notSpecified),
		orValue(learner.MajorOrProgram, notSpecified),
		joinOr(learner.ConfirmedSkills, notSpecified),
		orValue(learner.ExperienceLevel, "some_experience"),
		joinOr(learner.ConfirmedCoursework, notSpecified),
		orValue(learner.CareerGoals, notSpecified),
		joinOr(learner.LearningPreferences, notSpecified),
	)
	return section
}

func projectContext(project curriculum.ConfirmedProject) (section string) {
	section = fmt.Sprintf(`## PROJECT DETAILS
- Company: %s
- Industry: %s
- Project Title: %s
- Project Summary: %s
- Deliverables: %s
- Technical Skills Required: %s
- Professional Skills Required: %s
- Domain Knowledge: %s
- Success Criteria: %s
- Mentorship Level: %s
- Team Size: %s`,
		orValue(project.CompanyName, "Partner Organization"),
		orValue(project.Industry, notSpecified),
		orValue(project.ProjectTitle, "Experiential Learning Project"),
		orValue(project.ConfirmedSummary, notSpecified),
		indentJSON(project.ConfirmedDeliverables),
		indentJSON(project.ConfirmedTechnicalSkills),
		indentJSON(project.ConfirmedProfessionalSkills),
		indentJSON(project.ConfirmedDomainKnowledge),
		indentJSON(project.ConfirmedSuccessCriteria),
		orValue(project.MentorshipLevel, "Medium"),
		orValue(project.TeamSize, "Individual"),
	)
	return section
}

func gapsContext(gaps curriculum.ConfirmedGaps) (section string) {
	section = fmt.Sprintf(`## SKILL GAP ANALYSIS
- Strong Matches: %s
- Development Areas: %s
- Scaffolding Recommendation: %s
- Overall Fit: %s`,
		indentJSON(gaps.StrongMatches),
		indentJSON(gaps.SkillGaps),
		orValue(gaps.ScaffoldingRecommendation, "moderate"),
		orValue(gaps.OverallFit, "good"),
	)
	return section
}

func institutionContext(inst curriculum.Institution) (section string) {
	section = fmt.Sprintf(`## INSTITUTIONAL CONSTRAINTS
- Credit Hours: %s
- Term Length: %d weeks
- Hours Per Week: %s
- Institution: %s
- Grading Scale: %s
- Competency Framework(s): %s`,
		orValue(inst.CreditHours, "3"),
		termLength(inst),
		orValue(inst.HoursPerWeek, "9"),
		orValue(inst.InstitutionName, "University"),
		orValue(inst.GradingScale, curriculum.DefaultGradingScale),
		joinOr(inst.CompetencyFramework, "None"),
	)
	return section
}

// fixedObjectivesSelection lists the chosen professional skill areas.
// No selection means all of them.
func fixedObjectivesSelection(inst curriculum.Institution) (list string) {
	selected := inst.FixedObjectives
	if selected == nil {
		for _, f := range fixedObjectiveLabels {
			selected = append(selected, f.key)
		}
	}

	lines := make([]string, 0, len(selected))
	for _, key := range selected {
		lines = append(lines, "- "+fixedObjectiveLabel(key))
	}

	list = strings.Join(lines, "\n")
	if list == "" {
		list = "- None selected"
	}
	return list
}

func fixedObjectiveLabel(key string) (label string) {
	for _, f := range fixedObjectiveLabels {
		if f.key == key {
			label = f.label
			return label
		}
	}
	label = key
	return label
}

func objectivesContext(objectives curriculum.Objectives) (section string) {
	fixed := "None"
	if len(objectives.Fixed) > 0 {
		lines := make([]string, 0, len(objectives.Fixed))
		for _, o := range objectives.Fixed {
			lines = append(lines, "- "+o.Text)
		}
		fixed = strings.Join(lines, "\n")
	}

	variable := "None"
	if len(objectives.Variable) > 0 {
		lines := make([]string, 0, len(objectives.Variable))
		for _, o := range objectives.Variable {
			lines = append(lines, fmt.Sprintf("- %s (Bloom's: %s)", o.Text, orValue(o.BloomLevel, "Apply")))
		}
		variable = strings.Join(lines, "\n")
	}

	section = fmt.Sprintf(`## FINALIZED LEARNING OBJECTIVES

### Fixed Objectives (Professional Skills)
%s

### Variable Objectives (Project-Specific)
%s`, fixed, variable)
	return section
}

func outlineContext(outline curriculum.Outline) (section string) {
	weeks := "No weeks defined"
	if len(outline.Weeks) > 0 {
		lines := make([]string, 0, len(outline.Weeks))
		for _, w := range outline.Weeks {
			lines = append(lines, fmt.Sprintf("- Week %d: %s | Milestone: %s | Deliverables: %s",
				w.Week,
				orValue(w.Theme, "TBD"),
				orValue(w.Milestone, "None"),
				joinOr(w.Deliverables, "None"),
			))
		}
		weeks = strings.Join(lines, "\n")
	}

	section = fmt.Sprintf(`## COURSE OUTLINE

### Course Header
- Title: %s
- Description: %s

### Weekly Structure
%s`,
		orValue(outline.CourseHeader.Title, "TBD"),
		orValue(outline.CourseHeader.Description, "TBD"),
		weeks,
	)
	return section
}

// weekPhase frames a week by its position in the term.
func weekPhase(week, term int) (phase, guidance string) {
	switch {
	case week <= 2:
		phase = "onboarding"
		guidance = "Focus on orientation, relationship building, and establishing foundations."
	case week >= term-1:
		phase = "wrap-up"
		guidance = "Focus on synthesis, final deliverables, and reflection on overall learning."
	case week == term-2:
		phase = "synthesis"
		guidance = "Focus on bringing work together, preparing final deliverables, and deeper reflection."
	default:
		phase = "core"
		guidance = "Focus on active project work, skill development, and iterative progress."
	}
	return phase, guidance
}

func termLength(inst curriculum.Institution) (weeks int) {
	weeks = inst.TermLengthWeeks
	if weeks <= 0 {
		weeks = curriculum.DefaultTermLengthWeeks
	}
	return weeks
}

func orValue(value, fallback string) (result string) {
	result = strings.TrimSpace(value)
	if result == "" {
		result = fallback
	}
	return result
}

func joinOr(values []string, fallback string) (result string) {
	result = strings.Join(values, ", ")
	if strings.TrimSpace(result) == "" {
		result = fallback
	}
	return result
}

func indentJSON(v interface{}) (out string) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil || string(data) == "null" {
		out = "[]"
		return out
	}
	out = string(data)
	return out
}

func bulletList(items []string, fallback string) (list string) {
	if len(items) == 0 {
		list = "- " + fallback
		return list
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	list = strings.Join(lines, "\n")
	return list
}

func weekLabel(n int) (label string) {
	label = "Week " + strconv.Itoa(n)
	return label
}
