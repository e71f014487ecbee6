package ffbuild

import (
	"fmt"
	"strings"
)

// PreflightError is returned when a required input of a build is missing.
type PreflightError struct {
	What string
	Path string
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("preflight: %s not found at %q", e.What, e.Path)
}

// ExternalToolError is returned when an external build step exits unsuccessfully. ExitCode is -1
// when the process could not be started or was killed.
type ExternalToolError struct {
	Step     string
	ExitCode int
	Err      error
}

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("%s failed with exit code %d: %v", e.Step, e.ExitCode, e.Err)
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// VerificationError lists every required library missing after install.
type VerificationError struct {
	Dir     string
	Missing []string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("missing %d required libraries in %s: %s", len(e.Missing), e.Dir, strings.Join(e.Missing, ", "))
}

// StageError wraps the error of the stage a build stopped at.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
