package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/featwalk/featwalk/internal/engine"
	fwerrors "github.com/featwalk/featwalk/internal/errors"
	"github.com/featwalk/featwalk/internal/template"
)

// DefaultMaxOutput caps each captured stream per combination.
const DefaultMaxOutput = 64 * 1024

// Shell dispatches build/test commands via sh -c, once per combination.
// Commands are templates: {{features}} resolves to the comma-joined feature
// list and {{depth}} to the configured depth. The command also receives the
// list in the FEATURES environment variable. Every command runs in order; the
// combination fails on the first non-zero exit.
type Shell struct {
	Commands  []string
	WorkDir   string
	Depth     int
	MaxOutput int // per-stream byte cap, DefaultMaxOutput when 0
}

// NewShell builds a shell runner for a set of command templates.
func NewShell(commands []string, workDir string, depth int) *Shell {
	return &Shell{Commands: commands, WorkDir: workDir, Depth: depth}
}

var _ engine.Runner = (*Shell)(nil)

// Execute runs all configured commands for one combination.
//
// If a command's program is not present on PATH the result is an
// infrastructure-level skip, not a failure. A command that cannot be launched
// at all returns a *errors.DispatchError, which the engine records as a
// failed outcome for this combination only.
func (s *Shell) Execute(ctx context.Context, features []string) (*engine.ExecResult, error) {
	if len(s.Commands) == 0 {
		return nil, fmt.Errorf("no commands configured")
	}

	vars := map[string]string{
		"features": strings.Join(features, ","),
		"depth":    strconv.Itoa(s.Depth),
	}

	limit := s.MaxOutput
	if limit <= 0 {
		limit = DefaultMaxOutput
	}
	stdout := newCappedBuffer(limit)
	stderr := newCappedBuffer(limit)

	start := time.Now()
	for _, tmpl := range s.Commands {
		command, err := template.Resolve(tmpl, vars)
		if err != nil {
			return nil, &fwerrors.DispatchError{
				Features: features,
				Message:  fmt.Sprintf("resolving command template: %v", err),
				Err:      err,
			}
		}

		if prog := firstWord(command); prog != "" && !strings.ContainsAny(prog, "/=$") && !shellBuiltins[prog] {
			if _, err := exec.LookPath(prog); err != nil {
				fmt.Fprintf(stderr, "tool %q not found on PATH\n", prog)
				return &engine.ExecResult{
					Stderr:   stderr.Bytes(),
					Duration: time.Since(start),
					Skipped:  true,
				}, nil
			}
		}

		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		if s.WorkDir != "" {
			cmd.Dir = s.WorkDir
		}
		cmd.Env = append(os.Environ(), "FEATURES="+vars["features"])
		cmd.Stdout = stdout
		cmd.Stderr = stderr

		if err := cmd.Run(); err != nil {
			exitErr, ok := err.(*exec.ExitError)
			if !ok {
				// No exit code exists: the command never ran.
				return nil, &fwerrors.DispatchError{
					Features: features,
					Message:  fmt.Sprintf("launching %q: %v", command, err),
					Err:      err,
				}
			}
			return &engine.ExecResult{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.Bytes(),
				Stderr:   stderr.Bytes(),
				Duration: time.Since(start),
			}, nil
		}
	}

	return &engine.ExecResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}, nil
}

// shellBuiltins are never probed with LookPath: sh provides them itself.
var shellBuiltins = map[string]bool{
	"case": true, "cd": true, "echo": true, "eval": true, "exec": true,
	"exit": true, "export": true, "false": true, "for": true, "if": true,
	"printf": true, "read": true, "return": true, "set": true, "shift": true,
	"test": true, "trap": true, "true": true, "until": true, "wait": true,
	"while": true, "[": true, ":": true,
}

// firstWord extracts the program name from a shell command line.
func firstWord(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
