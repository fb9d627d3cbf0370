package curriculum

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultTermLengthWeeks is used when the intake form leaves term length empty.
	DefaultTermLengthWeeks = 14
	// MaxTermLengthWeeks bounds the term length a user may request.
	MaxTermLengthWeeks = 52
	// DefaultGradingScale is the grading scale used when none is chosen.
	DefaultGradingScale = "Letter Grade (A-F)"
)

// Extractor turns raw intake text into structured facts.
type Extractor interface {
	ExtractLearner(ctx context.Context, learner LearnerInput) (LearnerExtraction, error)
	ExtractProject(ctx context.Context, project ProjectInput) (ProjectExtraction, error)
	AnalyzeGaps(ctx context.Context, learner LearnerExtraction, project ProjectExtraction) (GapAnalysis, error)
}

// Validate checks the required intake fields.
func (r *RawInputs) Validate() (err error) {
	if strings.TrimSpace(r.Learner.ResumeText) == "" {
		err = validationErrorf("please upload a resume file or paste resume text")
		return err
	}

	if strings.TrimSpace(r.Project.ProjectNarrative) == "" {
		err = validationErrorf("please provide a project narrative")
		return err
	}

	err = r.Institution.Validate()
	return err
}

// ApplyDefaults fills unset institution fields with the intake form defaults.
func (i *Institution) ApplyDefaults() {
	if i.CreditHours == "" {
		i.CreditHours = "3"
	}
	if i.TermLengthWeeks == 0 {
		i.TermLengthWeeks = DefaultTermLengthWeeks
	}
	if i.HoursPerWeek == "" {
		i.HoursPerWeek = "9"
	}
	if i.GradingScale == "" {
		i.GradingScale = DefaultGradingScale
	}
}

// Validate checks the institution constraints.
func (i *Institution) Validate() (err error) {
	if i.TermLengthWeeks < 1 || i.TermLengthWeeks > MaxTermLengthWeeks {
		err = validationErrorf("term length must be between 1 and %d weeks, got %d", MaxTermLengthWeeks, i.TermLengthWeeks)
		return err
	}
	return err
}

// Analyze runs learner extraction, project extraction and gap analysis in order.
func Analyze(ctx context.Context, ex Extractor, raw RawInputs) (analysis Analysis, err error) {
	raw.Institution.ApplyDefaults()

	err = raw.Validate()
	if err != nil {
		return analysis, err
	}

	var result Analysis

	result.Learner, err = ex.ExtractLearner(ctx, raw.Learner)
	if err != nil {
		err = errors.Wrap(err, "resume extraction failed")
		return analysis, err
	}

	result.Project, err = ex.ExtractProject(ctx, raw.Project)
	if err != nil {
		err = errors.Wrap(err, "project extraction failed")
		return analysis, err
	}

	result.Gaps, err = ex.AnalyzeGaps(ctx, result.Learner, result.Project)
	if err != nil {
		err = errors.Wrap(err, "gap analysis failed")
		return analysis, err
	}

	analysis = result
	return analysis, err
}

// Confirm derives the pre-filled confirmed data shown for review.
func Confirm(raw RawInputs, analysis Analysis) (confirmed ConfirmedData) {
	raw.Institution.ApplyDefaults()

	skills := make([]string, 0, len(analysis.Learner.TechnicalSkills)+len(analysis.Learner.ProfessionalSkills))
	for _, s := range analysis.Learner.TechnicalSkills {
		skills = appendNonBlank(skills, s.Skill)
	}
	for _, s := range analysis.Learner.ProfessionalSkills {
		skills = appendNonBlank(skills, s.Skill)
	}

	deliverables := make([]string, 0, len(analysis.Project.Deliverables))
	for _, d := range analysis.Project.Deliverables {
		deliverables = appendNonBlank(deliverables, d.Deliverable)
	}

	summary := analysis.Project.ProjectSummary
	if summary == "" {
		summary = truncate(raw.Project.ProjectNarrative, 200)
	}

	strong := make([]string, 0, len(analysis.Gaps.StrongMatches))
	for _, m := range analysis.Gaps.StrongMatches {
		strong = appendNonBlank(strong, m.LearnerSkill)
	}

	gaps := make([]string, 0, len(analysis.Gaps.SkillGaps))
	for _, g := range analysis.Gaps.SkillGaps {
		gaps = appendNonBlank(gaps, g.ProjectNeed)
	}

	scaffolding := analysis.Gaps.FitAssessment.ScaffoldingRecommendation
	if scaffolding == "" {
		scaffolding = "moderate"
	}
	fit := analysis.Gaps.FitAssessment.OverallFit
	if fit == "" {
		fit = "good"
	}

	confirmed = ConfirmedData{
		Learner: ConfirmedLearner{
			LearnerName:         raw.Learner.LearnerName,
			AcademicLevel:       raw.Learner.AcademicLevel,
			MajorOrProgram:      raw.Learner.MajorOrProgram,
			ConfirmedSkills:     skills,
			ExperienceLevel:     analysis.Learner.ExperienceLevel,
			ConfirmedCoursework: analysis.Learner.RelevantCoursework,
			CareerGoals:         raw.Learner.CareerGoals,
			LearningPreferences: raw.Learner.LearningPreferences,
		},
		Project: ConfirmedProject{
			CompanyName:                 raw.Project.CompanyName,
			Industry:                    raw.Project.Industry,
			ProjectTitle:                raw.Project.ProjectTitle,
			ConfirmedSummary:            summary,
			ConfirmedDeliverables:       deliverables,
			ConfirmedTechnicalSkills:    requiredSkillNames(analysis.Project.TechnicalSkillsRequired),
			ConfirmedProfessionalSkills: requiredSkillNames(analysis.Project.ProfessionalSkillsRequired),
			ConfirmedDomainKnowledge:    knowledgeAreaNames(analysis.Project.DomainKnowledge),
			ConfirmedSuccessCriteria:    analysis.Project.SuccessCriteria,
			MentorshipLevel:             raw.Project.MentorshipLevel,
			TeamSize:                    raw.Project.TeamSize,
		},
		Gaps: ConfirmedGaps{
			StrongMatches:             strong,
			SkillGaps:                 gaps,
			ScaffoldingRecommendation: scaffolding,
			OverallFit:                fit,
		},
		Institution: raw.Institution,
	}

	return confirmed
}

// Validate checks the confirmed data before any curriculum stage runs.
func (c *ConfirmedData) Validate() (err error) {
	if strings.TrimSpace(c.Project.ConfirmedSummary) == "" && strings.TrimSpace(c.Project.ProjectTitle) == "" {
		err = validationErrorf("a project title or summary is required")
		return err
	}

	err = c.Institution.Validate()
	return err
}

func requiredSkillNames(skills []RequiredSkill) (names []string) {
	names = make([]string, 0, len(skills))
	for _, s := range skills {
		names = appendNonBlank(names, s.Skill)
	}
	return names
}

func knowledgeAreaNames(areas []KnowledgeArea) (names []string) {
	names = make([]string, 0, len(areas))
	for _, a := range areas {
		names = appendNonBlank(names, a.Area)
	}
	return names
}

func appendNonBlank(list []string, value string) (result []string) {
	result = list
	value = strings.TrimSpace(value)
	if value != "" {
		result = append(result, value)
	}
	return result
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) (result string) {
	runes := []rune(s)
	if len(runes) <= n {
		result = s
		return result
	}
	result = string(runes[:n])
	return result
}
