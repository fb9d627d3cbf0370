package llm

import (
	"context"

	"github.com/nikogura/learning-designer/pkg/curriculum"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Stage names used in requests, logs and errors.
const (
	StageLearnerExtraction = "learner_extraction"
	StageProjectExtraction = "project_extraction"
	StageGapAnalysis       = "gap_analysis"
	StageObjectives        = "objectives"
	StageOutline           = "outline"
	StageWeek              = "week"
)

// ExtractLearner extracts skills and experience from a resume.
func (c *Client) ExtractLearner(ctx context.Context, learner curriculum.LearnerInput) (result curriculum.LearnerExtraction, err error) {
	var text string
	text, err = c.Complete(ctx, Request{
		Stage:     StageLearnerExtraction,
		Prompt:    buildLearnerExtractionPrompt(learner),
		MaxTokens: c.tokens.Extraction,
	})
	if err != nil {
		return result, err
	}

	var parsed curriculum.LearnerExtraction
	parseErr := decodeJSON(text, &parsed)
	if parseErr != nil {
		c.logger.Warn("unparseable learner extraction", "error", parseErr.Error())
		result = defaultLearnerExtraction(parseErr)
		return result, err
	}

	result = parsed
	return result, err
}

// ExtractProject extracts deliverables and requirements from a project narrative.
func (c *Client) ExtractProject(ctx context.Context, project curriculum.ProjectInput) (result curriculum.ProjectExtraction, err error) {
	var text string
	text, err = c.Complete(ctx, Request{
		Stage:     StageProjectExtraction,
		Prompt:    buildProjectExtractionPrompt(project),
		MaxTokens: c.tokens.Extraction,
	})
	if err != nil {
		return result, err
	}

	var parsed curriculum.ProjectExtraction
	parseErr := decodeJSON(text, &parsed)
	if parseErr != nil {
		c.logger.Warn("unparseable project extraction", "error", parseErr.Error())
		result = defaultProjectExtraction(project, parseErr)
		return result, err
	}

	result = parsed
	return result, err
}

// AnalyzeGaps compares learner skills with project requirements.
func (c *Client) AnalyzeGaps(ctx context.Context, learner curriculum.LearnerExtraction, project curriculum.ProjectExtraction) (result curriculum.GapAnalysis, err error) {
	var text string
	text, err = c.Complete(ctx, Request{
		Stage:     StageGapAnalysis,
		Prompt:    buildGapAnalysisPrompt(learner, project),
		MaxTokens: c.tokens.GapAnalysis,
	})
	if err != nil {
		return result, err
	}

	var parsed curriculum.GapAnalysis
	parseErr := decodeJSON(text, &parsed)
	if parseErr != nil {
		c.logger.Warn("unparseable gap analysis", "error", parseErr.Error())
		result = defaultGapAnalysis(parseErr)
		return result, err
	}

	result = parsed
	return result, err
}

// objectivesResponse is the flat shape the objectives prompt asks for.
type objectivesResponse struct {
	Fixed      []curriculum.Objective        `json:"fixed_objectives"`
	Variable   []curriculum.Objective        `json:"variable_objectives"`
	Assessment curriculum.AssessmentStrategy `json:"assessment_strategy"`
}

// GenerateObjectives generates learning objectives and the assessment strategy.
func (c *Client) GenerateObjectives(ctx context.Context, confirmed curriculum.ConfirmedData) (result curriculum.ObjectivesResult, err error) {
	var text string
	text, err = c.Complete(ctx, Request{
		Stage:     StageObjectives,
		Prompt:    buildObjectivesPrompt(confirmed),
		MaxTokens: c.tokens.Objectives,
	})
	if err != nil {
		return result, err
	}

	var parsed objectivesResponse
	parseErr := decodeJSON(text, &parsed)
	if parseErr != nil {
		c.logger.Warn("unparseable objectives", "error", parseErr.Error())
		result = defaultObjectives(confirmed, parseErr)
		return result, err
	}

	if parsed.Assessment.GradingScale == "" {
		parsed.Assessment.GradingScale = orValue(confirmed.Institution.GradingScale, curriculum.DefaultGradingScale)
	}

	result = curriculum.ObjectivesResult{
		Objectives: curriculum.Objectives{
			Fixed:    parsed.Fixed,
			Variable: parsed.Variable,
		},
		Assessment: parsed.Assessment,
	}
	return result, err
}

// GenerateOutline generates the course outline. Weeks are read leniently so a
// week number sent as a string still lands on the right row.
func (c *Client) GenerateOutline(ctx context.Context, confirmed curriculum.ConfirmedData, objectives curriculum.Objectives) (outline curriculum.Outline, err error) {
	var text string
	text, err = c.Complete(ctx, Request{
		Stage:     StageOutline,
		Prompt:    buildOutlinePrompt(confirmed, objectives),
		MaxTokens: c.tokens.Outline,
	})
	if err != nil {
		return outline, err
	}

	raw, parseErr := validJSON(text)
	if parseErr == nil {
		outline = parseOutline(gjson.Parse(raw), termLength(confirmed.Institution))
		if len(outline.Weeks) == 0 {
			parseErr = errors.New("outline response contains no usable weeks")
		}
	}
	if parseErr != nil {
		c.logger.Warn("unparseable outline", "error", parseErr.Error())
		outline = defaultOutline(confirmed, parseErr)
		return outline, err
	}

	return outline, err
}

// GenerateWeek generates the Markdown detail of one week.
func (c *Client) GenerateWeek(ctx context.Context, req curriculum.WeekRequest) (detail string, err error) {
	var text string
	text, err = c.Complete(ctx, Request{
		Stage:     StageWeek,
		Prompt:    buildWeekPrompt(req),
		MaxTokens: c.tokens.Week,
	})
	if err != nil {
		return detail, err
	}

	detail = stripMarkdownFence(text)
	return detail, err
}

// parseOutline reads an outline document, accepting numbers or numeric
// strings for week numbers. Rows outside 1..term are dropped.
func parseOutline(doc gjson.Result, term int) (outline curriculum.Outline) {
	header := doc.Get("course_header")
	outline.CourseHeader = curriculum.CourseHeader{
		Title:       header.Get("title").String(),
		Credits:     header.Get("credits").String(),
		Description: header.Get("description").String(),
	}

	seen := map[int]bool{}
	doc.Get("weeks").ForEach(func(_, w gjson.Result) bool {
		n := int(w.Get("week").Int())
		if n < 1 || n > term || seen[n] {
			return true
		}
		seen[n] = true

		outline.Weeks = append(outline.Weeks, curriculum.OutlineWeek{
			Week:          n,
			Theme:         w.Get("theme").String(),
			Milestone:     w.Get("milestone").String(),
			Deliverables:  stringArray(w.Get("deliverables")),
			KeyActivities: stringArray(w.Get("key_activities")),
		})
		return true
	})

	return outline
}

func stringArray(r gjson.Result) (values []string) {
	for _, item := range r.Array() {
		if s := item.String(); s != "" {
			values = append(values, s)
		}
	}
	return values
}

func defaultLearnerExtraction(parseErr error) (result curriculum.LearnerExtraction) {
	result = curriculum.LearnerExtraction{
		TechnicalSkills:       []curriculum.SkillEvidence{},
		ProfessionalSkills:    []curriculum.SkillEvidence{},
		ToolsAndPlatforms:     []curriculum.ToolUsage{},
		RelevantCoursework:    []string{},
		WorkExperienceSummary: "Unable to parse resume data",
		ExperienceLevel:       "entry",
		NotableAchievements:   []string{},
		InferredStrengths:     []string{},
		PotentialGrowthAreas:  []string{},
		ParseError:            parseErr.Error(),
	}
	return result
}

func defaultProjectExtraction(project curriculum.ProjectInput, parseErr error) (result curriculum.ProjectExtraction) {
	summary := []rune(project.ProjectNarrative)
	if len(summary) > 200 {
		summary = summary[:200]
	}

	result = curriculum.ProjectExtraction{
		ProjectSummary:             string(summary),
		Deliverables:               []curriculum.Deliverable{},
		SuccessCriteria:            []string{},
		TechnicalSkillsRequired:    []curriculum.RequiredSkill{},
		ProfessionalSkillsRequired: []curriculum.RequiredSkill{},
		DomainKnowledge:            []curriculum.KnowledgeArea{},
		WeeklyActivitiesSuggested:  []curriculum.SuggestedActivity{},
		PotentialChallenges:        []string{},
		LearningOpportunities:      []string{},
		ParseError:                 parseErr.Error(),
	}
	return result
}

func defaultGapAnalysis(parseErr error) (result curriculum.GapAnalysis) {
	result = curriculum.GapAnalysis{
		StrongMatches:  []curriculum.SkillMatch{},
		PartialMatches: []curriculum.SkillMatch{},
		SkillGaps:      []curriculum.SkillGap{},
		FitAssessment: curriculum.FitAssessment{
			OverallFit:                "good",
			Rationale:                 "Unable to complete gap analysis",
			ScaffoldingRecommendation: "moderate",
			KeyDevelopmentAreas:       []string{},
		},
		ParseError: parseErr.Error(),
	}
	return result
}

func defaultObjectives(confirmed curriculum.ConfirmedData, parseErr error) (result curriculum.ObjectivesResult) {
	result = curriculum.ObjectivesResult{
		Objectives: curriculum.Objectives{
			Fixed:    []curriculum.Objective{},
			Variable: []curriculum.Objective{},
		},
		Assessment: curriculum.AssessmentStrategy{
			GradingScale: orValue(confirmed.Institution.GradingScale, curriculum.DefaultGradingScale),
		},
		ParseError: parseErr.Error(),
	}
	return result
}

// defaultOutline seeds one untitled row per week of the term.
func defaultOutline(confirmed curriculum.ConfirmedData, parseErr error) (outline curriculum.Outline) {
	term := termLength(confirmed.Institution)

	outline = curriculum.Outline{
		CourseHeader: curriculum.CourseHeader{
			Title:   orValue(confirmed.Project.ProjectTitle, "Experiential Learning Course"),
			Credits: orValue(confirmed.Institution.CreditHours, "3"),
		},
		Weeks:      make([]curriculum.OutlineWeek, 0, term),
		ParseError: parseErr.Error(),
	}
	for n := 1; n <= term; n++ {
		outline.Weeks = append(outline.Weeks, curriculum.OutlineWeek{Week: n, Theme: weekLabel(n)})
	}
	return outline
}
