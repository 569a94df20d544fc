package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"vidingest/internal/procrun"
)

// FakeTools is a procrun.Runner that imitates ffprobe and ffmpeg. ffprobe
// reports DurationSec; ffmpeg writes one frame per sampled interval (capped
// by -frames:v) or a small WAV file, depending on the output name.
type FakeTools struct {
	DurationSec float64
	// Fail maps a binary name to the error it returns.
	Fail map[string]error

	mu    sync.Mutex
	calls []string
}

// Run implements procrun.Runner.
func (f *FakeTools) Run(_ context.Context, name string, args ...string) (procrun.Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()

	if err, ok := f.Fail[name]; ok {
		return procrun.Output{}, err
	}
	switch filepath.Base(name) {
	case "ffprobe":
		payload := fmt.Sprintf(`{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio","channels":2,"tags":{"language":"eng"},"disposition":{"default":1}}],"format":{"duration":"%f"}}`, f.DurationSec)
		return procrun.Output{Stdout: payload}, nil
	case "ffmpeg":
		return procrun.Output{}, f.ffmpeg(args)
	}
	return procrun.Output{}, &procrun.ToolUnavailableError{Tool: name}
}

func (f *FakeTools) ffmpeg(args []string) error {
	out := args[len(args)-1]
	if !strings.Contains(out, "%06d") {
		return os.WriteFile(out, make([]byte, 44), 0o644)
	}
	interval := 1.0
	limit := 0
	for i := 0; i < len(args)-1; i++ {
		switch args[i] {
		case "-vf":
			rate, err := strconv.ParseFloat(strings.TrimPrefix(args[i+1], "fps="), 64)
			if err == nil && rate > 0 {
				interval = 1 / rate
			}
		case "-frames:v":
			limit, _ = strconv.Atoi(args[i+1])
		}
	}
	count := int(f.DurationSec/interval) + 1
	if limit > 0 && count > limit {
		count = limit
	}
	for i := 1; i <= count; i++ {
		if err := os.WriteFile(fmt.Sprintf(out, i), []byte("jpeg"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Calls returns how many times name was invoked.
func (f *FakeTools) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, call := range f.calls {
		if filepath.Base(call) == name {
			n++
		}
	}
	return n
}

// TotalCalls returns the number of invocations of any tool.
func (f *FakeTools) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
