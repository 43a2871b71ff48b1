package lifecycle

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning is returned by Start when the service container is
// already up; the user should restart instead.
var ErrAlreadyRunning = errors.New("service is already running")

// ErrMissingConfig is returned by Start when the environment configuration
// file does not exist.
var ErrMissingConfig = errors.New("environment configuration file is missing")

// StepError reports which step of an update pipeline failed. Later steps are
// never attempted once one fails.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("update step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
