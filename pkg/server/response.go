package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikogura/learning-designer/pkg/curriculum"
	"github.com/nikogura/learning-designer/pkg/intake"
	"github.com/nikogura/learning-designer/pkg/llm"
	"github.com/nikogura/learning-designer/pkg/renderer"
	"github.com/nikogura/learning-designer/pkg/session"
	"github.com/pkg/errors"
)

// APIError is the body of every error response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// errNoSession is returned when a request carries no usable session cookie.
var errNoSession = errors.Wrap(session.ErrNotFound, "no active session, start again from the intake form")

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// classifyError maps domain errors onto HTTP statuses and stable error codes.
func classifyError(err error) (status int, code string) {
	var callErr *llm.CallError

	switch {
	case errors.Is(err, curriculum.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, curriculum.ErrWeekOutOfRange):
		status, code = http.StatusBadRequest, "week_out_of_range"
	case errors.Is(err, curriculum.ErrUnknownStage):
		status, code = http.StatusBadRequest, "unknown_stage"
	case errors.Is(err, session.ErrNotFound):
		status, code = http.StatusNotFound, "session_not_found"
	case errors.Is(err, curriculum.ErrNoConfirmedData):
		status, code = http.StatusConflict, "not_confirmed"
	case errors.Is(err, curriculum.ErrStageOrder):
		status, code = http.StatusConflict, "stage_order"
	case errors.Is(err, llm.ErrMissingCredential):
		status, code = http.StatusServiceUnavailable, "missing_credential"
	case errors.Is(err, renderer.ErrPandocMissing), errors.Is(err, intake.ErrConverterMissing):
		status, code = http.StatusServiceUnavailable, "renderer_unavailable"
	case errors.As(err, &callErr):
		status, code = http.StatusBadGateway, "generation_failed"
	default:
		status, code = http.StatusInternalServerError, "internal_error"
	}

	return status, code
}

// fail logs err at a level matching its status and writes the envelope.
func (s *Server) fail(c *gin.Context, err error) {
	status, code := classifyError(err)

	msg := err.Error()
	switch {
	case status == http.StatusInternalServerError:
		s.logger.Error("request failed", "path", c.FullPath(), "error", msg)
		msg = "internal server error"
	case status > http.StatusInternalServerError:
		s.logger.Warn("request failed", "path", c.FullPath(), "code", code, "error", msg)
	}

	respondError(c, status, code, errors.New(msg))
}
