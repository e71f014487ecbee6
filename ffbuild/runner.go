package ffbuild

import (
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"go.viam.com/utils/pexec"

	"github.com/safecore/ffmpeg-android/logging"
)

// Step is one invocation of an external build tool.
type Step struct {
	Stage Stage
	Name  string
	Args  []string
	// Dir is the working directory of the process.
	Dir string
	// Env is added to the inherited environment.
	Env map[string]string
}

func (s Step) String() string {
	return strings.Join(append([]string{s.Name}, s.Args...), " ")
}

// Runner runs external build steps to completion.
type Runner interface {
	Run(ctx context.Context, step Step) error
}

// ProcessRunner runs steps as one-shot managed processes.
type ProcessRunner struct {
	logger logging.Logger
	// output receives the combined output of each process. Nil sends it to the debug log.
	output io.Writer
}

// NewProcessRunner returns a ProcessRunner. Process output goes to output when non-nil.
func NewProcessRunner(logger logging.Logger, output io.Writer) *ProcessRunner {
	return &ProcessRunner{logger: logger, output: output}
}

// processConfig is the one-shot process of step. Output goes either to the output writer or, when
// there is none, to the debug log.
func (r *ProcessRunner) processConfig(step Step) pexec.ProcessConfig {
	return pexec.ProcessConfig{
		ID:          step.Stage.String(),
		Name:        step.Name,
		Args:        step.Args,
		CWD:         step.Dir,
		Environment: step.Env,
		OneShot:     true,
		Log:         r.output == nil,
		LogWriter:   r.output,
	}
}

// Run implements Runner. Nonzero exits are returned as *ExternalToolError.
func (r *ProcessRunner) Run(ctx context.Context, step Step) error {
	r.logger.Debugw("Running build step", "stage", step.Stage.String(), "cmd", step.String(), "dir", step.Dir)
	proc := pexec.NewManagedProcess(r.processConfig(step), r.logger.Sublogger(step.Stage.String()).AsZap())
	if err := proc.Start(ctx); err != nil {
		return &ExternalToolError{Step: step.Stage.String(), ExitCode: exitCode(err), Err: err}
	}
	return nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
