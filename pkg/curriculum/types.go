package curriculum

import "time"

// LearnerInput is the learner half of the intake form.
type LearnerInput struct {
	LearnerName         string   `json:"learner_name"`
	AcademicLevel       string   `json:"academic_level"`
	MajorOrProgram      string   `json:"major_or_program"`
	ResumeText          string   `json:"resume_text"`
	CareerGoals         string   `json:"career_goals"`
	SkillsToDevelop     string   `json:"skills_to_develop"`
	LearningPreferences []string `json:"learning_preferences"`
}

// ProjectInput is the employer half of the intake form.
type ProjectInput struct {
	CompanyName      string `json:"company_name"`
	Industry         string `json:"industry"`
	ProjectTitle     string `json:"project_title"`
	ProjectNarrative string `json:"project_narrative"`
	MentorshipLevel  string `json:"mentorship_level"`
	TeamSize         string `json:"team_size"`
}

// Institution holds the institutional constraints for the course.
type Institution struct {
	CreditHours         string   `json:"credit_hours"`
	TermLengthWeeks     int      `json:"term_length_weeks"`
	HoursPerWeek        string   `json:"hours_per_week"`
	InstitutionName     string   `json:"institution_name"`
	GradingScale        string   `json:"grading_scale"`
	CompetencyFramework []string `json:"competency_framework"`
	FixedObjectives     []string `json:"fixed_objectives"`
}

// RawInputs is everything collected by the intake form.
type RawInputs struct {
	Learner     LearnerInput `json:"learner"`
	Project     ProjectInput `json:"project"`
	Institution Institution  `json:"institution"`
}

// SkillEvidence is a skill found in the resume with its supporting evidence.
type SkillEvidence struct {
	Skill       string `json:"skill"`
	Evidence    string `json:"evidence,omitempty"`
	Proficiency string `json:"proficiency,omitempty"`
}

// ToolUsage is a tool or platform the learner has used.
type ToolUsage struct {
	Tool    string `json:"tool"`
	Context string `json:"context,omitempty"`
}

// LearnerExtraction is the structured view of a resume.
type LearnerExtraction struct {
	TechnicalSkills       []SkillEvidence `json:"technical_skills"`
	ProfessionalSkills    []SkillEvidence `json:"professional_skills"`
	ToolsAndPlatforms     []ToolUsage     `json:"tools_and_platforms"`
	RelevantCoursework    []string        `json:"relevant_coursework"`
	WorkExperienceSummary string          `json:"work_experience_summary"`
	ExperienceLevel       string          `json:"experience_level"`
	NotableAchievements   []string        `json:"notable_achievements"`
	InferredStrengths     []string        `json:"inferred_strengths"`
	PotentialGrowthAreas  []string        `json:"potential_growth_areas"`
	ParseError            string          `json:"parse_error,omitempty"`
}

// Deliverable is a project output named by the employer.
type Deliverable struct {
	Deliverable string `json:"deliverable"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
}

// RequiredSkill is a skill a project needs.
type RequiredSkill struct {
	Skill      string `json:"skill"`
	Importance string `json:"importance,omitempty"`
	Context    string `json:"context,omitempty"`
}

// KnowledgeArea is a domain the learner needs to understand.
type KnowledgeArea struct {
	Area    string `json:"area"`
	Context string `json:"context,omitempty"`
}

// SuggestedActivity is an activity tied to a phase of the term.
type SuggestedActivity struct {
	Phase    string `json:"phase"`
	Activity string `json:"activity"`
}

// ProjectExtraction is the structured view of a project narrative.
type ProjectExtraction struct {
	ProjectSummary             string              `json:"project_summary"`
	ProblemOrOpportunity       string              `json:"problem_or_opportunity"`
	Deliverables               []Deliverable       `json:"deliverables"`
	SuccessCriteria            []string            `json:"success_criteria"`
	TechnicalSkillsRequired    []RequiredSkill     `json:"technical_skills_required"`
	ProfessionalSkillsRequired []RequiredSkill     `json:"professional_skills_required"`
	DomainKnowledge            []KnowledgeArea     `json:"domain_knowledge"`
	WeeklyActivitiesSuggested  []SuggestedActivity `json:"weekly_activities_suggested"`
	PotentialChallenges        []string            `json:"potential_challenges"`
	LearningOpportunities      []string            `json:"learning_opportunities"`
	ParseError                 string              `json:"parse_error,omitempty"`
}

// SkillMatch pairs a learner skill with a project need.
type SkillMatch struct {
	LearnerSkill   string `json:"learner_skill"`
	ProjectNeed    string `json:"project_need"`
	MatchQuality   string `json:"match_quality,omitempty"`
	GapDescription string `json:"gap_description,omitempty"`
}

// SkillGap is a project need the learner has not demonstrated.
type SkillGap struct {
	ProjectNeed string `json:"project_need"`
	Importance  string `json:"importance,omitempty"`
	Description string `json:"description,omitempty"`
}

// FitAssessment rates how well the learner fits the project.
type FitAssessment struct {
	OverallFit                string   `json:"overall_fit"`
	Rationale                 string   `json:"rationale"`
	ScaffoldingRecommendation string   `json:"scaffolding_recommendation"`
	KeyDevelopmentAreas       []string `json:"key_development_areas"`
}

// GapAnalysis compares learner facts with project facts.
type GapAnalysis struct {
	StrongMatches  []SkillMatch  `json:"strong_matches"`
	PartialMatches []SkillMatch  `json:"partial_matches"`
	SkillGaps      []SkillGap    `json:"skill_gaps"`
	FitAssessment  FitAssessment `json:"fit_assessment"`
	ParseError     string        `json:"parse_error,omitempty"`
}

// Analysis bundles the three extraction-stage results.
type Analysis struct {
	Learner LearnerExtraction `json:"learner"`
	Project ProjectExtraction `json:"project"`
	Gaps    GapAnalysis       `json:"gaps"`
}

// ConfirmedLearner is the learner profile after user review.
type ConfirmedLearner struct {
	LearnerName         string   `json:"learner_name"`
	AcademicLevel       string   `json:"academic_level"`
	MajorOrProgram      string   `json:"major_or_program"`
	ConfirmedSkills     []string `json:"confirmed_skills"`
	ExperienceLevel     string   `json:"experience_level"`
	ConfirmedCoursework []string `json:"confirmed_coursework"`
	CareerGoals         string   `json:"career_goals"`
	LearningPreferences []string `json:"learning_preferences"`
}

// ConfirmedProject is the project description after user review.
type ConfirmedProject struct {
	CompanyName                 string   `json:"company_name"`
	Industry                    string   `json:"industry"`
	ProjectTitle                string   `json:"project_title"`
	ConfirmedSummary            string   `json:"confirmed_summary"`
	ConfirmedDeliverables       []string `json:"confirmed_deliverables"`
	ConfirmedTechnicalSkills    []string `json:"confirmed_technical_skills"`
	ConfirmedProfessionalSkills []string `json:"confirmed_professional_skills"`
	ConfirmedDomainKnowledge    []string `json:"confirmed_domain_knowledge"`
	ConfirmedSuccessCriteria    []string `json:"confirmed_success_criteria"`
	MentorshipLevel             string   `json:"mentorship_level"`
	TeamSize                    string   `json:"team_size"`
}

// ConfirmedGaps is the gap analysis after user review.
type ConfirmedGaps struct {
	StrongMatches             []string `json:"strong_matches"`
	SkillGaps                 []string `json:"skill_gaps"`
	ScaffoldingRecommendation string   `json:"scaffolding_recommendation"`
	OverallFit                string   `json:"overall_fit"`
}

// ConfirmedData is the reviewed fact set every generation stage builds on.
type ConfirmedData struct {
	Learner     ConfirmedLearner `json:"learner"`
	Project     ConfirmedProject `json:"project"`
	Gaps        ConfirmedGaps    `json:"gaps"`
	Institution Institution      `json:"institution"`
}

// Objective is one learning objective.
type Objective struct {
	ID           string `json:"id"`
	SkillArea    string `json:"skill_area,omitempty"`
	Text         string `json:"text"`
	BloomLevel   string `json:"bloom_level"`
	Source       string `json:"source,omitempty"`
	SourceDetail string `json:"source_detail,omitempty"`
}

// Objectives holds the fixed and variable learning objectives.
// ParseError is set when the objectives were a default shape standing in for
// an unreadable response.
type Objectives struct {
	Fixed      []Objective `json:"fixed_objectives"`
	Variable   []Objective `json:"variable_objectives"`
	ParseError string      `json:"parse_error,omitempty"`
}

// GradingComponent is one weighted line of a letter-grade breakdown.
type GradingComponent struct {
	Weight      int    `json:"weight"`
	Description string `json:"description"`
}

// FinalDeliverable describes the capstone artifact of the course.
type FinalDeliverable struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Components  []string `json:"components"`
}

// RubricCriteria names the rows of each assessment rubric.
type RubricCriteria struct {
	Deliverable        []string `json:"deliverable"`
	ProfessionalSkills []string `json:"professional_skills"`
	Reflection         []string `json:"reflection"`
}

// AssessmentStrategy describes how the course is graded.
type AssessmentStrategy struct {
	GradingScale      string                      `json:"grading_scale"`
	GradingBreakdown  map[string]GradingComponent `json:"grading_breakdown,omitempty"`
	PassRequirements  []string                    `json:"pass_requirements,omitempty"`
	ProficiencyLevels []string                    `json:"proficiency_levels,omitempty"`
	FinalDeliverable  FinalDeliverable            `json:"final_deliverable"`
	RubricCriteria    RubricCriteria              `json:"rubric_criteria"`
}

// ObjectivesResult is the output of the objectives stage.
type ObjectivesResult struct {
	Objectives Objectives         `json:"objectives"`
	Assessment AssessmentStrategy `json:"assessment_strategy"`
	ParseError string             `json:"parse_error,omitempty"`
}

// CourseHeader is the title block of the course.
type CourseHeader struct {
	Title       string `json:"title"`
	Credits     string `json:"credits"`
	Description string `json:"description"`
}

// OutlineWeek is one row of the syllabus overview.
type OutlineWeek struct {
	Week          int      `json:"week"`
	Theme         string   `json:"theme"`
	Milestone     string   `json:"milestone,omitempty"`
	Deliverables  []string `json:"deliverables,omitempty"`
	KeyActivities []string `json:"key_activities,omitempty"`
}

// Outline is the syllabus-level structure of the course.
type Outline struct {
	CourseHeader CourseHeader  `json:"course_header"`
	Weeks        []OutlineWeek `json:"weeks"`
	ParseError   string        `json:"parse_error,omitempty"`
}

// Week is the generated detail for one week of the term.
type Week struct {
	Number       int       `json:"number"`
	Theme        string    `json:"theme"`
	Milestone    string    `json:"milestone,omitempty"`
	Deliverables []string  `json:"deliverables,omitempty"`
	Detail       string    `json:"detail"`
	Feedback     string    `json:"feedback,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// WeekRequest is everything the week stage needs to generate one week.
type WeekRequest struct {
	Confirmed  ConfirmedData
	Objectives Objectives
	Outline    Outline
	Week       int
	Feedback   string
}

// Step is a position in the build-state machine.
type Step string

const (
	// StepNew means nothing has been generated yet.
	StepNew Step = "new"
	// StepObjectivesReady means objectives and assessment strategy exist.
	StepObjectivesReady Step = "objectives_ready"
	// StepOutlineReady means the course outline exists.
	StepOutlineReady Step = "outline_ready"
	// StepWeeksInProgress means at least one week has detail.
	StepWeeksInProgress Step = "weeks_in_progress"
	// StepFinalized means a document has been assembled.
	StepFinalized Step = "finalized"
)

// rank orders steps so transitions only move forward.
func (s Step) rank() (r int) {
	switch s {
	case StepObjectivesReady:
		r = 1
	case StepOutlineReady:
		r = 2
	case StepWeeksInProgress:
		r = 3
	case StepFinalized:
		r = 4
	default:
		r = 0
	}
	return r
}

// BuildState is the accumulated, partially generated curriculum of one session.
type BuildState struct {
	Step        Step                `json:"step"`
	Objectives  *Objectives         `json:"objectives,omitempty"`
	Assessment  *AssessmentStrategy `json:"assessment_strategy,omitempty"`
	Outline     *Outline            `json:"outline,omitempty"`
	Weeks       map[int]Week        `json:"weeks,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at"`
	FinalizedAt *time.Time          `json:"finalized_at,omitempty"`
}
