package curriculum

import "github.com/pkg/errors"

var (
	// ErrValidation marks missing or invalid user input.
	ErrValidation = errors.New("validation failed")
	// ErrNoConfirmedData means generation was attempted before confirmation.
	ErrNoConfirmedData = errors.New("confirmed data is required before generating objectives")
	// ErrStageOrder means a stage was attempted before its prerequisite exists.
	ErrStageOrder = errors.New("stage prerequisite missing")
	// ErrWeekOutOfRange means a week number falls outside the term.
	ErrWeekOutOfRange = errors.New("week out of range")
	// ErrUnknownStage means save-step was called with a stage it does not know.
	ErrUnknownStage = errors.New("unknown stage")
)

// validationErrorf wraps ErrValidation with a user-facing message.
func validationErrorf(format string, args ...interface{}) (err error) {
	err = errors.Wrapf(ErrValidation, format, args...)
	return err
}
