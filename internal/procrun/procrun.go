package procrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"vidingest/internal/logging"
)

const (
	// MaxTailChars bounds the diagnostic text carried by ExitError.
	MaxTailChars = 1200
	// maxStderrBytes bounds the raw stderr buffer kept while a process runs.
	maxStderrBytes = 16 * 1024
)

// ErrToolUnavailable reports that an external binary could not be located.
var ErrToolUnavailable = errors.New("tool unavailable")

// ToolUnavailableError names the program that could not be started.
type ToolUnavailableError struct {
	Tool string
	Err  error
}

func (e *ToolUnavailableError) Error() string {
	return fmt.Sprintf("%s: %v (install %s or set its path in config)", ErrToolUnavailable, e.Tool, e.Tool)
}

func (e *ToolUnavailableError) Is(target error) bool { return target == ErrToolUnavailable }

func (e *ToolUnavailableError) Unwrap() error { return e.Err }

// ExitError reports a non-zero exit from an external program.
type ExitError struct {
	Tool     string
	ExitCode int
	Tail     string
}

func (e *ExitError) Error() string {
	if e.Tail == "" {
		return fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Tool, e.ExitCode, e.Tail)
}

// Output holds the captured streams of a successful run.
type Output struct {
	Stdout string
	Stderr string
}

// Runner executes external programs.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// Func adapts an ordinary function to the Runner interface.
type Func func(ctx context.Context, name string, args ...string) (Output, error)

// Run calls f(ctx, name, args...).
func (f Func) Run(ctx context.Context, name string, args ...string) (Output, error) {
	return f(ctx, name, args...)
}

// Exec runs programs as child processes. The zero value is ready to use.
type Exec struct {
	Logger *slog.Logger
}

// Run implements Runner.
func (e Exec) Run(ctx context.Context, name string, args ...string) (Output, error) {
	logger := e.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(ctx, logger)

	resolved, err := exec.LookPath(name)
	if err != nil {
		return Output{}, &ToolUnavailableError{Tool: name, Err: err}
	}

	var stdout bytes.Buffer
	stderr := &tailWriter{limit: maxStderrBytes}
	cmd := exec.CommandContext(ctx, resolved, args...)
	cmd.Stdin = nil
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	start := time.Now()
	logger.Debug("running external tool",
		logging.String("tool", name),
		logging.Int("arg_count", len(args)),
	)
	runErr := cmd.Run()
	elapsed := time.Since(start)

	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if runErr == nil {
		logger.Debug("external tool finished",
			logging.String("tool", name),
			logging.Duration("elapsed", elapsed),
		)
		return out, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Output{}, fmt.Errorf("%s: %w", name, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		diagnostic := out.Stderr
		if strings.TrimSpace(diagnostic) == "" {
			diagnostic = out.Stdout
		}
		return Output{}, &ExitError{
			Tool:     name,
			ExitCode: exitErr.ExitCode(),
			Tail:     Tail(diagnostic, MaxTailChars),
		}
	}
	if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, fs.ErrNotExist) || errors.Is(runErr, fs.ErrPermission) {
		return Output{}, &ToolUnavailableError{Tool: name, Err: runErr}
	}
	return Output{}, fmt.Errorf("run %s: %w", name, runErr)
}

// Tail returns at most limit trailing characters of s after trimming
// surrounding whitespace.
func Tail(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[len(runes)-limit:])
}

// tailWriter retains only the last limit bytes written to it.
type tailWriter struct {
	buf   bytes.Buffer
	limit int
}

func (w *tailWriter) Write(p []byte) (int, error) {
	n := len(p)
	w.buf.Write(p)
	if w.buf.Len() > w.limit {
		b := w.buf.Bytes()
		keep := append([]byte(nil), b[len(b)-w.limit:]...)
		w.buf.Reset()
		w.buf.Write(keep)
	}
	return n, nil
}

func (w *tailWriter) String() string {
	return strings.ToValidUTF8(w.buf.String(), "")
}
