package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"vidingest/internal/config"
	"vidingest/internal/procrun"
)

// Requirement defines an external dependency vidingest relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Version     string
	Detail      string
}

// Requirements lists the binaries the ingest pipeline shells out to.
func Requirements(cfg *config.Config) []Requirement {
	ffmpeg, ffprobe := "ffmpeg", "ffprobe"
	if cfg != nil {
		ffmpeg, ffprobe = cfg.Tools.FFmpeg, cfg.Tools.FFprobe
	}
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "Frame and audio extraction"},
		{Name: "FFprobe", Command: ffprobe, Description: "Duration and stream inspection", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// ProbeVersions fills Version for every available status by running
// `<binary> -version` and keeping the first output line.
func ProbeVersions(ctx context.Context, runner procrun.Runner, statuses []Status) []Status {
	if runner == nil {
		runner = procrun.Exec{}
	}
	out := make([]Status, len(statuses))
	copy(out, statuses)
	for i := range out {
		if !out[i].Available {
			continue
		}
		res, err := runner.Run(ctx, out[i].Command, "-version")
		if err != nil {
			out[i].Detail = fmt.Sprintf("version check failed: %v", err)
			continue
		}
		out[i].Version = firstLine(res.Stdout)
	}
	return out
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
