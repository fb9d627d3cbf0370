package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nikogura/learning-designer/pkg/curriculum"
)

// buildLearnerExtractionPrompt asks for the structured view of a resume.
func buildLearnerExtractionPrompt(learner curriculum.LearnerInput) (prompt string) {
	prompt = fmt.Sprintf(`You are an expert at analyzing resumes to extract skills, experience, and educational background relevant to workplace learning experiences.

Analyze the following resume and extract structured data. Be thorough but accurate. Only extract skills and experience that are clearly evidenced in the resume.

## RESUME TEXT
%s

## ADDITIONAL CONTEXT
- Student's Major/Program: %s
- Academic Level: %s
- Career Goals (if provided): %s
- Skills the student wants to develop: %s

## TASK
Extract the following.

Return ONLY valid JSON in this exact format (no markdown, no commentary):
{
  "technical_skills": [
    {"skill": "skill name", "evidence": "brief quote or context from resume", "proficiency": "beginner|intermediate|advanced"}
  ],
  "professional_skills": [
    {"skill": "skill name", "evidence": "brief quote or context from resume"}
  ],
  "tools_and_platforms": [
    {"tool": "tool name", "context": "how they used it"}
  ],
  "relevant_coursework": ["course 1", "course 2"],
  "work_experience_summary": "2-3 sentence summary of relevant work experience",
  "experience_level": "entry|some_experience|experienced",
  "notable_achievements": ["achievement 1", "achievement 2"],
  "inferred_strengths": ["strength 1", "strength 2"],
  "potential_growth_areas": ["area 1", "area 2"]
}

Be conservative. If a skill is only implied but not demonstrated, note it in potential_growth_areas rather than technical_skills. Proficiency should be based on depth of evidence (one mention = beginner, project leadership = advanced).`,
		learner.ResumeText,
		orValue(learner.MajorOrProgram, notSpecified),
		orValue(learner.AcademicLevel, notSpecified),
		orValue(learner.CareerGoals, notSpecified),
		orValue(learner.SkillsToDevelop, notSpecified),
	)
	return prompt
}

// buildProjectExtractionPrompt asks for the structured view of a project narrative.
func buildProjectExtractionPrompt(project curriculum.ProjectInput) (prompt string) {
	prompt = fmt.Sprintf(`You are an expert at analyzing project descriptions to extract structured requirements for experiential learning curriculum design.

Analyze the following project narrative provided by an employer and extract structured data about the project scope, deliverables, and skill requirements.

## PROJECT NARRATIVE
%s

## CONTEXT
- Company: %s
- Industry: %s
- Project Title: %s
- Mentorship Level: %s
- Team Size: %s

## TASK
Extract the following.

Return ONLY valid JSON in this exact format (no markdown, no commentary):
{
  "project_summary": "2-3 sentence clear summary of what the student will do",
  "problem_or_opportunity": "What business problem or opportunity does this address?",
  "deliverables": [
    {"deliverable": "name", "description": "brief description", "type": "document|presentation|analysis|design|code|campaign|other"}
  ],
  "success_criteria": ["criterion 1", "criterion 2"],
  "technical_skills_required": [
    {"skill": "skill name", "importance": "required|helpful", "context": "why needed"}
  ],
  "professional_skills_required": [
    {"skill": "skill name", "context": "how it will be used"}
  ],
  "domain_knowledge": [
    {"area": "knowledge area", "context": "why relevant"}
  ],
  "weekly_activities_suggested": [
    {"phase": "early|middle|late", "activity": "description"}
  ],
  "potential_challenges": ["challenge 1", "challenge 2"],
  "learning_opportunities": ["opportunity 1", "opportunity 2"]
}

Infer skills even if not explicitly stated. For example, a data analysis project implies Excel or data visualization skills. Flag required vs. helpful skills based on how central they are to the deliverables.`,
		project.ProjectNarrative,
		orValue(project.CompanyName, notSpecified),
		orValue(project.Industry, notSpecified),
		orValue(project.ProjectTitle, notSpecified),
		orValue(project.MentorshipLevel, "Medium"),
		orValue(project.TeamSize, "Individual"),
	)
	return prompt
}

// buildGapAnalysisPrompt compares the two extractions.
func buildGapAnalysisPrompt(learner curriculum.LearnerExtraction, project curriculum.ProjectExtraction) (prompt string) {
	learnerJSON, _ := json.MarshalIndent(learner, "", "  ")
	projectJSON, _ := json.MarshalIndent(project, "", "  ")

	prompt = fmt.Sprintf(`You are an expert at matching learner capabilities to project requirements and identifying development opportunities.

Compare the learner's current skills to the project requirements and produce a gap analysis.

## LEARNER SKILLS (extracted from resume)
%s

## PROJECT REQUIREMENTS (extracted from narrative)
%s

## TASK
Analyze the match between learner and project.

Return ONLY valid JSON in this exact format (no markdown, no commentary):
{
  "strong_matches": [
    {"learner_skill": "skill", "project_need": "requirement", "match_quality": "direct|transferable"}
  ],
  "partial_matches": [
    {"learner_skill": "skill", "project_need": "requirement", "gap_description": "what's missing"}
  ],
  "skill_gaps": [
    {"project_need": "requirement name", "importance": "critical|important|nice_to_have", "description": "what the learner needs to develop"}
  ],
  "fit_assessment": {
    "overall_fit": "excellent|good|stretch|challenging",
    "rationale": "2-3 sentence explanation",
    "scaffolding_recommendation": "minimal|moderate|significant",
    "key_development_areas": ["area 1", "area 2", "area 3"]
  }
}

Guidelines:
- A "strong_match" means the learner has demonstrated this skill and it directly applies
- A "partial_match" means the learner has related experience but would need to extend or adapt
- A "skill_gap" means the project requires something the learner hasn't demonstrated
- "critical" gaps are essential for project success; "nice_to_have" gaps are bonus areas

For fit_assessment:
- "excellent" = learner exceeds requirements, minimal learning stretch
- "good" = solid foundation with room to grow
- "stretch" = significant learning opportunity, achievable with support
- "challenging" = major gaps that may need scope adjustment

Scaffolding recommendation:
- "minimal" = learner can work independently with occasional check-ins
- "moderate" = regular guidance and structured milestones helpful
- "significant" = needs detailed structure, frequent support, and possibly reduced scope

Be encouraging but honest. A "stretch" project is good for learning; a "challenging" fit may need additional support structures or scope adjustment.`,
		string(learnerJSON),
		string(projectJSON),
	)
	return prompt
}

// buildObjectivesPrompt asks for learning objectives and the assessment strategy.
func buildObjectivesPrompt(confirmed curriculum.ConfirmedData) (prompt string) {
	gradingScale := orValue(confirmed.Institution.GradingScale, curriculum.DefaultGradingScale)

	prompt = fmt.Sprintf(`You are an expert instructional designer specializing in experiential learning and work-integrated learning curriculum.

Your task is to generate learning objectives and an assessment strategy for a credit-bearing experiential learning course.

%s

%s

%s

%s

## USER'S SELECTED FIXED OBJECTIVES
The user has selected these professional skill areas to include:
%s

## TASK

### Learning Objectives Requirements

**Fixed Objectives (Professional Skills)**
For EACH selected professional skill area above, generate ONE well-crafted learning objective that:
- Begins with a Bloom's taxonomy action verb
- Is measurable and specific to this experiential context
- Does NOT include the cognitive level in the text (it is shown separately as a tag)

**Variable Objectives (Project-Specific)**
Generate 3-5 objectives derived from the confirmed skill gaps, the technical skills required by the project and the domain knowledge for the industry.

Each variable objective must:
- Begin with a Bloom's taxonomy action verb
- Be measurable and specific
- Not include the cognitive level in the text
- Reference a specific skill gap or project requirement

Bloom's Levels and Example Verbs:
- Remember: Define, list, identify, recall
- Understand: Explain, describe, summarize, interpret
- Apply: Implement, execute, use, demonstrate
- Analyze: Differentiate, organize, compare, examine
- Evaluate: Critique, judge, assess, justify
- Create: Design, construct, develop, produce

### Assessment Strategy Requirements

Generate an assessment strategy appropriate for grading scale: %s

**For Letter Grade (A-F):**
Include percentage breakdown:
- Project Deliverable(s): 40%%
- Weekly Reflections: 25%%
- Professional Skills Assessment: 20%%
- Final Self-Assessment & Synthesis: 10%%
- Employer Evaluation: 5%%

**For Pass/Fail:**
Include proficiency requirements for passing in "pass_requirements".

**For Competency-Based:**
Include proficiency levels for each objective in "proficiency_levels".

**Final Deliverable:**
Based on the project requirements, describe the final deliverable the student will produce, with a clear title, a 2-3 sentence description and 3-5 key components.

**Rubric Criteria:**
Name 3-5 criteria for each rubric (deliverable, professional skills, reflection) specific to this project.

Return ONLY valid JSON in this exact format (no markdown, no commentary):
{
  "fixed_objectives": [
    {"id": "fixed_1", "skill_area": "project_management", "text": "Demonstrate effective project planning by...", "bloom_level": "Apply"}
  ],
  "variable_objectives": [
    {"id": "var_1", "text": "Apply data analysis techniques to...", "bloom_level": "Apply", "source": "skill_gap", "source_detail": "Data analysis identified as development area"}
  ],
  "assessment_strategy": {
    "grading_scale": "%s",
    "grading_breakdown": {
      "project_deliverables": {"weight": 40, "description": "Quality and completion of project deliverables"},
      "weekly_reflections": {"weight": 25, "description": "Depth and quality of DEAL-model reflections"},
      "professional_skills": {"weight": 20, "description": "Demonstrated growth in professional competencies"},
      "self_assessment": {"weight": 10, "description": "Final synthesis and self-evaluation"},
      "employer_evaluation": {"weight": 5, "description": "Workplace mentor feedback"}
    },
    "pass_requirements": [],
    "proficiency_levels": [],
    "final_deliverable": {
      "title": "Marketing Campaign Strategy & Implementation Report",
      "description": "A comprehensive document presenting the complete campaign developed for the client.",
      "components": ["Executive Summary", "Market Research", "Campaign Strategy", "Implementation Results", "Recommendations"]
    },
    "rubric_criteria": {
      "deliverable": ["criterion 1", "criterion 2"],
      "professional_skills": ["Communication", "Time Management"],
      "reflection": ["Description", "Examination", "Articulated Learning"]
    }
  }
}`,
		learnerContext(confirmed.Learner),
		projectContext(confirmed.Project),
		gapsContext(confirmed.Gaps),
		institutionContext(confirmed.Institution),
		fixedObjectivesSelection(confirmed.Institution),
		gradingScale,
		gradingScale,
	)
	return prompt
}

// buildOutlinePrompt asks for the syllabus-level outline.
func buildOutlinePrompt(confirmed curriculum.ConfirmedData, objectives curriculum.Objectives) (prompt string) {
	term := termLength(confirmed.Institution)
	credits := orValue(confirmed.Institution.CreditHours, "3")

	deliverables := notSpecified
	if len(confirmed.Project.ConfirmedDeliverables) > 0 {
		deliverables = indentJSON(confirmed.Project.ConfirmedDeliverables)
	}

	prompt = fmt.Sprintf(`You are an expert instructional designer specializing in experiential learning curriculum.

Generate a high-level course outline (syllabus-style) for a %d-week experiential learning course.

%s

%s

%s

## PROJECT DELIVERABLES
%s

## TASK

### Course Header
- A course title reflecting the project
- Credit hours: %s
- A 1-2 sentence course description

### Weekly Structure
For each of the %d weeks, provide ONLY:
- Week number
- Theme (3-6 words summarizing the focus)
- Milestone (brief checkpoint, optional for some weeks)
- Deliverables due that week, if any

**Pacing:**
- Weeks 1-2: Onboarding and planning
- Middle weeks: Core project work
- Final weeks: Synthesis and presentation
- Scaffolding level: %s

Return ONLY valid JSON in this exact format (no markdown, no commentary):
{
  "course_header": {
    "title": "EXP 495: [Title]",
    "credits": "%s",
    "description": "Brief course description."
  },
  "weeks": [
    {"week": 1, "theme": "Onboarding & Orientation", "milestone": "Project kickoff complete", "deliverables": []},
    {"week": 2, "theme": "Planning & Goal Setting", "milestone": "Project plan submitted", "deliverables": ["Project plan"]}
  ]
}

Generate all %d weeks. Keep it concise. This is a syllabus overview, not detailed lesson plans.`,
		term,
		projectContext(confirmed.Project),
		institutionContext(confirmed.Institution),
		objectivesContext(objectives),
		deliverables,
		credits,
		term,
		orValue(confirmed.Gaps.ScaffoldingRecommendation, "moderate"),
		credits,
		term,
	)
	return prompt
}

// buildWeekPrompt asks for the Kolb-cycle detail of one week.
func buildWeekPrompt(req curriculum.WeekRequest) (prompt string) {
	term := termLength(req.Confirmed.Institution)
	n := req.Week

	theme := weekLabel(n)
	milestone := "Progress check"
	var deliverables, activities []string
	prevContext := "This is the first week"
	nextContext := "This is the final week"

	for _, w := range req.Outline.Weeks {
		switch w.Week {
		case n:
			theme = orValue(w.Theme, theme)
			milestone = orValue(w.Milestone, milestone)
			deliverables = w.Deliverables
			activities = w.KeyActivities
		case n - 1:
			prevContext = fmt.Sprintf("Previous week (%d): %s", n-1, orValue(w.Theme, "N/A"))
		case n + 1:
			nextContext = fmt.Sprintf("Next week (%d): %s", n+1, orValue(w.Theme, "N/A"))
		}
	}

	phase, guidance := weekPhase(n, term)
	deliverablesText := bulletList(deliverables, "Weekly reflection")
	activitiesText := bulletList(activities, "Continue project work")

	feedbackSection := ""
	if strings.TrimSpace(req.Feedback) != "" {
		feedbackSection = fmt.Sprintf(`
## USER FEEDBACK FOR REGENERATION
The user has requested changes to this week's content:
%s

Please incorporate this feedback while maintaining the Kolb cycle structure and DEAL reflection format.
`, req.Feedback)
	}

	prompt = fmt.Sprintf(`You are an expert instructional designer specializing in experiential learning using Kolb's Experiential Learning Cycle and the DEAL reflection model.

Your task is to generate detailed content for Week %d of an experiential learning course.

%s

%s

%s

%s

## WEEK %d CONTEXT
- Theme: %s
- Milestone: %s
- Phase: %s (%s)
- %s
- %s
- Scaffolding level: %s

## PLANNED DELIVERABLES THIS WEEK
%s

## PLANNED KEY ACTIVITIES
%s
%s
## TASK

Generate detailed content for Week %d in Markdown format.

### Kolb's Experiential Learning Cycle
Each week must include ALL FOUR phases:

1. **Concrete Experience**: Hands-on project work, employer interactions, or activities. Be specific about what the student will DO and reference actual project deliverables.
2. **Reflective Observation**: A DEAL-model reflection prompt (Describe, Examine, Articulate Learning).
3. **Abstract Conceptualization**: Connect experiences to relevant professional concepts or academic frameworks.
4. **Active Experimentation**: How the student will apply insights to next steps.

### DEAL Reflection Requirements
The reflection prompt must:
- Reference SPECIFIC activities from this week's Concrete Experience
- Use a varied examination lens (rotate through: personal growth, academic connection, professional development, civic/ethical)
- Connect to at least one specific learning objective
- Be contextual, not generic

Generate ONLY Markdown in this exact format (no code fences, no commentary):

### Week %d: %s

#### Concrete Experience
[2-3 sentences describing specific hands-on activities, project work, or interactions]

#### Reflective Observation

**This Week's DEAL Reflection:**

*Describe:* [Specific prompt asking student to describe this week's activities]

*Examine:* [Specific prompt with chosen lens]

*Articulate Learning:* [Prompt connecting to a specific learning objective]

#### Abstract Conceptualization
[2-3 sentences connecting experiences to frameworks, concepts, or professional knowledge]

#### Active Experimentation
[2-3 sentences about applying insights and preparing for next steps]

#### Deliverables Due
%s

#### Milestone Check-in
[1-2 sentences about checkpoint with employer/instructor, aligned to milestone: %s]

Be specific and contextual. Avoid generic language.`,
		n,
		learnerContext(req.Confirmed.Learner),
		projectContext(req.Confirmed.Project),
		objectivesContext(req.Objectives),
		outlineContext(req.Outline),
		n,
		theme,
		milestone,
		phase, guidance,
		prevContext,
		nextContext,
		orValue(req.Confirmed.Gaps.ScaffoldingRecommendation, "moderate"),
		deliverablesText,
		activitiesText,
		feedbackSection,
		n,
		n, theme,
		deliverablesText,
		milestone,
	)
	return prompt
}
