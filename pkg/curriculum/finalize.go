package curriculum

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// gradingOrder is the display order of the well-known grading components.
//
//nolint:gochecknoglobals // read-only lookup table
var gradingOrder = []struct {
	key   string
	label string
}{
	{"project_deliverables", "Project Deliverable(s)"},
	{"weekly_reflections", "Weekly Reflections"},
	{"professional_skills", "Professional Skills Assessment"},
	{"self_assessment", "Final Self-Assessment & Synthesis"},
	{"employer_evaluation", "Employer Evaluation"},
}

//nolint:gochecknoglobals // read-only defaults
var (
	defaultDeliverableCriteria = []string{
		"Technical quality of deliverable",
		"Alignment with project requirements",
		"Professional presentation",
		"Evidence of iteration based on feedback",
	}
	defaultProfessionalCriteria = []string{
		"Communication",
		"Time Management",
		"Collaboration",
		"Problem-Solving",
		"Professionalism",
	}
	defaultReflectionCriteria = []string{
		"Description",
		"Examination",
		"Articulated Learning",
	}
	defaultPassRequirements = []string{
		"Complete all project deliverables to at least \"Proficient\" level",
		"Submit all weekly reflections meeting \"Proficient\" criteria",
		"Receive a satisfactory employer evaluation",
		"Complete the final self-assessment",
	}
)

// rubricLevels are the column descriptors of every rubric table.
//
//nolint:gochecknoglobals // read-only template
var rubricLevels = [4]string{
	"Consistently exceeds expectations for %s; work is exemplary and could serve as a model",
	"Meets expectations for %s with only minor gaps",
	"Partially meets expectations for %s; needs further development",
	"Does not yet meet expectations for %s; significant support needed",
}

const missingWeekPlaceholder = "*Content for this week has not yet been generated.*"

// Render assembles the course document from confirmed data and build state.
// It reads nothing but its arguments, so identical inputs give identical output.
func Render(confirmed ConfirmedData, state BuildState) (markdown string) {
	var b strings.Builder

	var outline Outline
	if state.Outline != nil {
		outline = *state.Outline
	}
	var objectives Objectives
	if state.Objectives != nil {
		objectives = *state.Objectives
	}
	var assessment AssessmentStrategy
	if state.Assessment != nil {
		assessment = *state.Assessment
	}

	writeHeader(&b, confirmed, outline)
	writeGrading(&b, confirmed, assessment)
	writeObjectives(&b, objectives)
	writeFinalDeliverable(&b, assessment.FinalDeliverable)
	writeSchedule(&b, confirmed, state, outline)
	writeRubrics(&b, assessment.RubricCriteria)
	writeSelfAssessment(&b, objectives)

	markdown = strings.TrimRight(b.String(), "\n") + "\n"
	return markdown
}

func writeHeader(b *strings.Builder, confirmed ConfirmedData, outline Outline) {
	title := outline.CourseHeader.Title
	if title == "" {
		title = confirmed.Project.ProjectTitle
	}
	if title == "" {
		title = "Experiential Learning Course"
	}

	credits := outline.CourseHeader.Credits
	if credits == "" {
		credits = confirmed.Institution.CreditHours
	}

	fmt.Fprintf(b, "# %s\n\n", title)

	details := []string{}
	if confirmed.Institution.InstitutionName != "" {
		details = append(details, fmt.Sprintf("**Institution:** %s", confirmed.Institution.InstitutionName))
	}
	if credits != "" {
		details = append(details, fmt.Sprintf("**Credit Hours:** %s", credits))
	}
	details = append(details, fmt.Sprintf("**Term Length:** %d weeks", TermLength(&confirmed, nil)))
	if confirmed.Institution.HoursPerWeek != "" {
		details = append(details, fmt.Sprintf("**Hours per Week:** %s", confirmed.Institution.HoursPerWeek))
	}
	b.WriteString(strings.Join(details, " | "))
	b.WriteString("\n\n")

	if confirmed.Learner.LearnerName != "" {
		fmt.Fprintf(b, "**Learner:** %s\n\n", confirmed.Learner.LearnerName)
	}
	if confirmed.Project.CompanyName != "" || confirmed.Project.ProjectTitle != "" {
		project := confirmed.Project.ProjectTitle
		if confirmed.Project.CompanyName != "" {
			project = strings.TrimSpace(project + " at " + confirmed.Project.CompanyName)
		}
		fmt.Fprintf(b, "**Project:** %s\n\n", project)
	}

	if outline.CourseHeader.Description != "" {
		b.WriteString("## Course Description\n\n")
		b.WriteString(strings.TrimSpace(outline.CourseHeader.Description))
		b.WriteString("\n\n")
	}
}

func writeGrading(b *strings.Builder, confirmed ConfirmedData, assessment AssessmentStrategy) {
	scale := assessment.GradingScale
	if scale == "" {
		scale = confirmed.Institution.GradingScale
	}
	if scale == "" {
		scale = DefaultGradingScale
	}

	b.WriteString("## Grading Breakdown\n\n")
	fmt.Fprintf(b, "**Grading Scale:** %s\n\n", scale)

	lower := strings.ToLower(scale)
	switch {
	case strings.Contains(lower, "pass"):
		requirements := assessment.PassRequirements
		if len(requirements) == 0 {
			requirements = defaultPassRequirements
		}
		b.WriteString("To pass, students must:\n\n")
		writeBullets(b, requirements)

	case strings.Contains(lower, "competency"):
		b.WriteString("Students must demonstrate proficiency in all learning objectives.\n\n")
		if len(assessment.ProficiencyLevels) > 0 {
			writeBullets(b, assessment.ProficiencyLevels)
		}

	default:
		if len(assessment.GradingBreakdown) == 0 {
			b.WriteString("*Grading breakdown has not yet been generated.*\n\n")
			return
		}
		b.WriteString("| Component | Weight | Description |\n")
		b.WriteString("|-----------|--------|-------------|\n")
		for _, key := range gradingKeys(assessment.GradingBreakdown) {
			c := assessment.GradingBreakdown[key]
			fmt.Fprintf(b, "| %s | %d%% | %s |\n", gradingLabel(key), c.Weight, cell(c.Description))
		}
		b.WriteString("\n")
	}
}

// gradingKeys returns the well-known components first, then the rest sorted.
func gradingKeys(breakdown map[string]GradingComponent) (keys []string) {
	seen := map[string]bool{}
	for _, g := range gradingOrder {
		if _, ok := breakdown[g.key]; ok {
			keys = append(keys, g.key)
			seen[g.key] = true
		}
	}

	rest := make([]string, 0, len(breakdown))
	for key := range breakdown {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)

	keys = append(keys, rest...)
	return keys
}

func gradingLabel(key string) (label string) {
	for _, g := range gradingOrder {
		if g.key == key {
			label = g.label
			return label
		}
	}

	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	label = strings.Join(words, " ")
	return label
}

func writeObjectives(b *strings.Builder, objectives Objectives) {
	b.WriteString("## Learning Objectives\n\n")

	if len(objectives.Fixed) == 0 && len(objectives.Variable) == 0 {
		b.WriteString("*Learning objectives have not yet been generated.*\n\n")
		return
	}

	if len(objectives.Fixed) > 0 {
		b.WriteString("### Fixed Objectives (Professional Skills)\n\n")
		writeObjectiveList(b, objectives.Fixed)
	}

	if len(objectives.Variable) > 0 {
		b.WriteString("### Variable Objectives (Project-Specific)\n\n")
		writeObjectiveList(b, objectives.Variable)
	}
}

func writeObjectiveList(b *strings.Builder, list []Objective) {
	for i, o := range list {
		fmt.Fprintf(b, "%d. %s", i+1, strings.TrimSpace(o.Text))
		if o.BloomLevel != "" {
			fmt.Fprintf(b, " *(%s)*", o.BloomLevel)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeFinalDeliverable(b *strings.Builder, d FinalDeliverable) {
	if d.Title == "" && d.Description == "" {
		return
	}

	b.WriteString("## Final Deliverable\n\n")
	if d.Title != "" {
		fmt.Fprintf(b, "**%s**\n\n", d.Title)
	}
	if d.Description != "" {
		b.WriteString(strings.TrimSpace(d.Description))
		b.WriteString("\n\n")
	}
	if len(d.Components) > 0 {
		b.WriteString("Components:\n\n")
		writeBullets(b, d.Components)
	}
}

func writeSchedule(b *strings.Builder, confirmed ConfirmedData, state BuildState, outline Outline) {
	b.WriteString("## Weekly Schedule\n\n")

	term := TermLength(&confirmed, &state)
	for n := 1; n <= term; n++ {
		if week, ok := state.Weeks[n]; ok && strings.TrimSpace(week.Detail) != "" {
			b.WriteString(strings.TrimSpace(week.Detail))
			b.WriteString("\n\n")
			continue
		}

		seed := weekFromOutline(outline, n)
		fmt.Fprintf(b, "### Week %d: %s\n\n", n, seed.Theme)
		if seed.Milestone != "" {
			fmt.Fprintf(b, "**Milestone:** %s\n\n", seed.Milestone)
		}
		b.WriteString(missingWeekPlaceholder)
		b.WriteString("\n\n")
	}
}

func writeRubrics(b *strings.Builder, criteria RubricCriteria) {
	b.WriteString("## Assessment Rubrics\n\n")

	writeRubric(b, "Deliverable Rubric", "Criterion", orDefault(criteria.Deliverable, defaultDeliverableCriteria))
	writeRubric(b, "Professional Skills Rubric", "Skill Area", orDefault(criteria.ProfessionalSkills, defaultProfessionalCriteria))
	writeRubric(b, "Reflection Quality Rubric", "Dimension", orDefault(criteria.Reflection, defaultReflectionCriteria))
}

func writeRubric(b *strings.Builder, title, firstColumn string, rows []string) {
	fmt.Fprintf(b, "### %s\n\n", title)
	fmt.Fprintf(b, "| %s | Excellent (4) | Proficient (3) | Developing (2) | Beginning (1) |\n", firstColumn)
	b.WriteString("|---|---|---|---|---|\n")
	for _, row := range rows {
		name := cell(row)
		lower := strings.ToLower(name)
		fmt.Fprintf(b, "| **%s** | %s | %s | %s | %s |\n", name,
			fmt.Sprintf(rubricLevels[0], lower),
			fmt.Sprintf(rubricLevels[1], lower),
			fmt.Sprintf(rubricLevels[2], lower),
			fmt.Sprintf(rubricLevels[3], lower),
		)
	}
	b.WriteString("\n")
}

func writeSelfAssessment(b *strings.Builder, objectives Objectives) {
	all := make([]Objective, 0, len(objectives.Fixed)+len(objectives.Variable))
	all = append(all, objectives.Fixed...)
	all = append(all, objectives.Variable...)
	if len(all) == 0 {
		return
	}

	b.WriteString("## Student Self-Assessment\n\n")
	b.WriteString("For each learning objective, rate your proficiency at the start and end of the term (1-5).\n\n")
	b.WriteString("| Learning Objective | Start | End | Evidence of Growth |\n")
	b.WriteString("|--------------------|-------|-----|--------------------|\n")
	for _, o := range all {
		fmt.Fprintf(b, "| %s | [ ] | [ ] | |\n", cell(o.Text))
	}
	b.WriteString("\n")
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", strings.TrimSpace(item))
	}
	b.WriteString("\n")
}

func orDefault(values, fallback []string) (result []string) {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			result = append(result, v)
		}
	}
	if len(result) == 0 {
		result = fallback
	}
	return result
}

// cell makes a value safe to place inside a Markdown table cell.
func cell(s string) (escaped string) {
	escaped = strings.TrimSpace(s)
	escaped = strings.ReplaceAll(escaped, "\n", " ")
	escaped = strings.ReplaceAll(escaped, "|", "\\|")
	return escaped
}
