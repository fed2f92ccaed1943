package streamline

import (
	"fmt"

	"github.com/pkg/errors"
)

// Configuration errors. They are reported at construction time and make
// Collect and Execute fail fast before any item is pulled.
var (
	ErrBatchSize       = errors.New("batch size must be greater than 0")
	ErrMaxConcurrent   = errors.New("max concurrent must be greater than 0")
	ErrHighWaterMark   = errors.New("high water mark must be greater than 0")
	ErrStageMustBeSet  = errors.New("stage must be set")
	ErrSourceMustBeSet = errors.New("source must be set")
	ErrSinkMustBeSet   = errors.New("sink must be set")
)

// StageError wraps an error raised by a stage with the name of the stage
// that raised it.
type StageError struct {
	Name string
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Name, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Cause implements the causer interface from github.com/pkg/errors.
func (e *StageError) Cause() error { return e.Err }

func stageError(name string, err error) error {
	if err == nil {
		return nil
	}
	// Keep the innermost stage attribution when stages are nested.
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return err
	}

	return &StageError{Name: name, Err: err}
}
