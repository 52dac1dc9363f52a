package analyses

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates the requested analysis does not exist for the caller.
var ErrNotFound = errors.New("analysis not found")

// ErrIngredientsNotFound indicates the page was fetched but no ingredient
// text could be extracted. Distinct from a fetch failure so the caller can
// fall back to manual entry.
var ErrIngredientsNotFound = errors.New("ingredients not found on page")

// ValidationError reports which request fields were invalid. It is detected
// before any external call and never recorded in the failure audit.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s", strings.Join(e.Fields, ", "))
}

// PipelineError wraps a stage failure with the correlation id that was logged
// and persisted for support lookups.
type PipelineError struct {
	Stage         string
	CorrelationID string
	Err           error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s stage failed [%s]: %v", e.Stage, e.CorrelationID, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
