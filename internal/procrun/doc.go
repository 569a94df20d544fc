// Package procrun is the single place vidingest starts external programs.
//
// Run executes a binary with no stdin and returns captured stdout and stderr.
// Failures are classified into two typed outcomes: ToolUnavailableError when
// the binary cannot be located (errors.Is(err, ErrToolUnavailable)), and
// ExitError when the program ran but exited non-zero. ExitError keeps only a
// bounded tail of diagnostic output so pathological tools cannot grow memory
// without limit.
//
// Callers that need to substitute process execution in tests accept a Runner
// and pass a Func.
package procrun
