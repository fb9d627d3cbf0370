package curriculum

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Generator produces curriculum content for each build stage.
type Generator interface {
	GenerateObjectives(ctx context.Context, confirmed ConfirmedData) (ObjectivesResult, error)
	GenerateOutline(ctx context.Context, confirmed ConfirmedData, objectives Objectives) (Outline, error)
	GenerateWeek(ctx context.Context, req WeekRequest) (string, error)
}

// Stage names a piece of build state that save-step can overwrite.
type Stage string

const (
	// StageObjectives is the learning objectives (and optionally assessment strategy).
	StageObjectives Stage = "objectives"
	// StageAssessment is the assessment strategy on its own.
	StageAssessment Stage = "assessment"
	// StageOutline is the course outline.
	StageOutline Stage = "outline"
	// StageWeek is a single week's detail.
	StageWeek Stage = "week"
)

// StepContent is a manual edit submitted through save-step.
type StepContent struct {
	Objectives *Objectives         `json:"objectives,omitempty"`
	Assessment *AssessmentStrategy `json:"assessment_strategy,omitempty"`
	Outline    *Outline            `json:"outline,omitempty"`
	Week       int                 `json:"week,omitempty"`
	Detail     string              `json:"detail,omitempty"`
}

// Builder drives the build-state machine. Generation failures never modify state.
type Builder struct {
	gen Generator
	now func() time.Time
}

// NewBuilder creates a builder around an explicitly constructed generator.
func NewBuilder(gen Generator) (builder *Builder) {
	builder = &Builder{
		gen: gen,
		now: time.Now,
	}
	return builder
}

// NewState returns an empty build state.
func NewState() (state BuildState) {
	state = BuildState{
		Step:  StepNew,
		Weeks: map[int]Week{},
	}
	return state
}

// GenerateObjectives generates learning objectives and the assessment strategy.
func (b *Builder) GenerateObjectives(ctx context.Context, confirmed *ConfirmedData, state *BuildState) (err error) {
	if confirmed == nil {
		err = ErrNoConfirmedData
		return err
	}

	err = confirmed.Validate()
	if err != nil {
		return err
	}

	var result ObjectivesResult
	result, err = b.gen.GenerateObjectives(ctx, *confirmed)
	if err != nil {
		err = errors.Wrap(err, "objectives generation failed")
		return err
	}

	objectives := result.Objectives
	if objectives.ParseError == "" {
		objectives.ParseError = result.ParseError
	}
	assessment := result.Assessment
	state.Objectives = &objectives
	state.Assessment = &assessment
	b.reopen(state)
	b.advance(state, StepObjectivesReady)

	return err
}

// GenerateOutline generates the course outline from the current objectives.
func (b *Builder) GenerateOutline(ctx context.Context, confirmed *ConfirmedData, state *BuildState) (err error) {
	if confirmed == nil {
		err = ErrNoConfirmedData
		return err
	}

	if state.Objectives == nil {
		err = errors.Wrap(ErrStageOrder, "objectives must be generated before the outline")
		return err
	}

	var outline Outline
	outline, err = b.gen.GenerateOutline(ctx, *confirmed, *state.Objectives)
	if err != nil {
		err = errors.Wrap(err, "outline generation failed")
		return err
	}

	state.Outline = &outline
	b.reopen(state)
	b.advance(state, StepOutlineReady)

	return err
}

// GenerateWeek generates detail for week n.
func (b *Builder) GenerateWeek(ctx context.Context, confirmed *ConfirmedData, state *BuildState, n int) (err error) {
	err = b.generateWeek(ctx, confirmed, state, n, "")
	return err
}

// RegenerateWeek regenerates week n with user feedback as a generation hint.
func (b *Builder) RegenerateWeek(ctx context.Context, confirmed *ConfirmedData, state *BuildState, n int, feedback string) (err error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		err = validationErrorf("feedback is required to regenerate a week")
		return err
	}

	err = b.generateWeek(ctx, confirmed, state, n, feedback)
	return err
}

func (b *Builder) generateWeek(ctx context.Context, confirmed *ConfirmedData, state *BuildState, n int, feedback string) (err error) {
	if confirmed == nil {
		err = ErrNoConfirmedData
		return err
	}

	if state.Outline == nil {
		err = errors.Wrap(ErrStageOrder, "the outline must be generated before any week")
		return err
	}

	err = checkWeek(n, TermLength(confirmed, state))
	if err != nil {
		return err
	}

	var objectives Objectives
	if state.Objectives != nil {
		objectives = *state.Objectives
	}

	req := WeekRequest{
		Confirmed:  *confirmed,
		Objectives: objectives,
		Outline:    *state.Outline,
		Week:       n,
		Feedback:   feedback,
	}

	var detail string
	detail, err = b.gen.GenerateWeek(ctx, req)
	if err != nil {
		err = errors.Wrapf(err, "week %d generation failed", n)
		return err
	}

	week := weekFromOutline(*state.Outline, n)
	week.Detail = detail
	week.Feedback = feedback
	week.GeneratedAt = b.now()

	b.putWeek(state, week)

	return err
}

// SaveStep overwrites a stage's stored content without calling the generator.
func (b *Builder) SaveStep(confirmed *ConfirmedData, state *BuildState, stage Stage, content StepContent) (err error) {
	switch stage {
	case StageObjectives:
		if content.Objectives == nil {
			err = validationErrorf("objectives content is required")
			return err
		}
		objectives := *content.Objectives
		objectives.ParseError = ""
		state.Objectives = &objectives
		if content.Assessment != nil {
			assessment := *content.Assessment
			state.Assessment = &assessment
		}
		b.reopen(state)
		b.advance(state, StepObjectivesReady)

	case StageAssessment:
		if content.Assessment == nil {
			err = validationErrorf("assessment strategy content is required")
			return err
		}
		if state.Objectives == nil {
			err = errors.Wrap(ErrStageOrder, "objectives must exist before the assessment strategy is edited")
			return err
		}
		assessment := *content.Assessment
		state.Assessment = &assessment
		b.reopen(state)
		b.touch(state)

	case StageOutline:
		if content.Outline == nil {
			err = validationErrorf("outline content is required")
			return err
		}
		if state.Objectives == nil {
			err = errors.Wrap(ErrStageOrder, "objectives must exist before the outline is saved")
			return err
		}
		outline := *content.Outline
		outline.ParseError = ""
		state.Outline = &outline
		b.reopen(state)
		b.advance(state, StepOutlineReady)

	case StageWeek:
		if state.Outline == nil {
			err = errors.Wrap(ErrStageOrder, "the outline must exist before a week is saved")
			return err
		}
		err = checkWeek(content.Week, TermLength(confirmed, state))
		if err != nil {
			return err
		}
		if strings.TrimSpace(content.Detail) == "" {
			err = validationErrorf("week detail is required")
			return err
		}
		week := weekFromOutline(*state.Outline, content.Week)
		if existing, ok := state.Weeks[content.Week]; ok {
			week.Feedback = existing.Feedback
		}
		week.Detail = content.Detail
		week.GeneratedAt = b.now()
		b.putWeek(state, week)

	default:
		err = errors.Wrapf(ErrUnknownStage, "%q", stage)
		return err
	}

	return err
}

// Finalize assembles the curriculum document and marks the build finalized.
func (b *Builder) Finalize(confirmed *ConfirmedData, state *BuildState) (markdown string, err error) {
	if confirmed == nil {
		err = ErrNoConfirmedData
		return markdown, err
	}

	if state.Outline == nil {
		err = errors.Wrap(ErrStageOrder, "the outline must be generated before finalizing")
		return markdown, err
	}

	markdown = Render(*confirmed, *state)

	now := b.now()
	state.Step = StepFinalized
	state.FinalizedAt = &now
	state.UpdatedAt = now

	return markdown, err
}

// TermLength is the number of weeks in the term.
func TermLength(confirmed *ConfirmedData, state *BuildState) (weeks int) {
	if confirmed != nil && confirmed.Institution.TermLengthWeeks > 0 {
		weeks = confirmed.Institution.TermLengthWeeks
		return weeks
	}
	if state != nil && state.Outline != nil && len(state.Outline.Weeks) > 0 {
		weeks = len(state.Outline.Weeks)
		return weeks
	}
	weeks = DefaultTermLengthWeeks
	return weeks
}

func checkWeek(n, termLength int) (err error) {
	if n < 1 || n > termLength {
		err = errors.Wrapf(ErrWeekOutOfRange, "week %d is outside 1..%d", n, termLength)
		return err
	}
	return err
}

func (b *Builder) putWeek(state *BuildState, week Week) {
	if state.Weeks == nil {
		state.Weeks = map[int]Week{}
	}
	state.Weeks[week.Number] = week

	b.reopen(state)
	b.advance(state, StepWeeksInProgress)
}

// reopen takes a finalized build back to weeks_in_progress.
func (b *Builder) reopen(state *BuildState) {
	if state.Step == StepFinalized {
		state.Step = StepWeeksInProgress
		state.FinalizedAt = nil
	}
}

// advance moves the step forward to target; it never moves backwards.
func (b *Builder) advance(state *BuildState, target Step) {
	if target.rank() > state.Step.rank() {
		state.Step = target
	}
	b.touch(state)
}

func (b *Builder) touch(state *BuildState) {
	state.UpdatedAt = b.now()
}

// weekFromOutline seeds a week entry from the matching outline row.
func weekFromOutline(outline Outline, n int) (week Week) {
	week = Week{
		Number: n,
		Theme:  defaultWeekTheme(n),
	}

	row, ok := outline.week(n)
	if !ok {
		return week
	}

	if row.Theme != "" {
		week.Theme = row.Theme
	}
	week.Milestone = row.Milestone
	week.Deliverables = append([]string(nil), row.Deliverables...)

	return week
}

// week looks up the outline row for week n.
func (o Outline) week(n int) (row OutlineWeek, ok bool) {
	for _, w := range o.Weeks {
		if w.Week == n {
			row = w
			ok = true
			return row, ok
		}
	}
	return row, ok
}

func defaultWeekTheme(n int) (theme string) {
	theme = "Week " + strconv.Itoa(n)
	return theme
}
