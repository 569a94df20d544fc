// Package frames samples still images from a video at a fixed interval.
package frames

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vidingest/internal/fileutil"
	"vidingest/internal/logging"
	"vidingest/internal/procrun"
)

const (
	// Pattern is the ffmpeg output template for numbered frames.
	Pattern  = "frame_%06d.jpg"
	MimeType = "image/jpeg"
	prefix   = "frame_"
	suffix   = ".jpg"
)

// Frame is one sampled still image.
type Frame struct {
	Path         string  `json:"path"`
	MimeType     string  `json:"mimeType"`
	TimestampSec float64 `json:"timestampSec"`
}

// Extractor samples frames with ffmpeg.
type Extractor struct {
	Runner  procrun.Runner
	FFmpeg  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Args returns the ffmpeg arguments that write at most maxFrames images,
// one every intervalSec seconds, to outputPattern.
func Args(sourcePath, outputPattern string, intervalSec float64, maxFrames int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin", "-y",
		"-i", sourcePath,
		"-vf", "fps=" + strconv.FormatFloat(1/intervalSec, 'f', -1, 64),
		"-frames:v", strconv.Itoa(maxFrames),
		"-q:v", "2",
		outputPattern,
	}
}

// Extract clears destDir, samples frames from sourcePath into it, and returns
// them ordered by timestamp. maxFrames of 0 returns an empty list without
// running ffmpeg. Tool failures are returned unchanged in kind.
func (e Extractor) Extract(ctx context.Context, sourcePath, destDir string, intervalSec float64, maxFrames int) ([]Frame, error) {
	if maxFrames <= 0 {
		return []Frame{}, nil
	}
	if intervalSec <= 0 {
		return nil, fmt.Errorf("frame interval must be positive, got %v", intervalSec)
	}
	if err := fileutil.ResetDir(destDir); err != nil {
		return nil, fmt.Errorf("prepare frames dir: %w", err)
	}

	binary := strings.TrimSpace(e.FFmpeg)
	if binary == "" {
		binary = "ffmpeg"
	}
	runner := e.Runner
	if runner == nil {
		runner = procrun.Exec{Logger: e.Logger}
	}
	runCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := Args(sourcePath, filepath.Join(destDir, Pattern), intervalSec, maxFrames)
	if _, err := runner.Run(runCtx, binary, args...); err != nil {
		return nil, fmt.Errorf("ffmpeg frame extract: %w", err)
	}

	frames, err := Collect(destDir, intervalSec, maxFrames)
	if err != nil {
		return nil, err
	}
	if e.Logger != nil {
		logging.WithContext(ctx, e.Logger).Debug("frames extracted",
			logging.Int("frames", len(frames)),
			logging.Float64("interval_sec", intervalSec),
		)
	}
	return frames, nil
}

// Collect lists the numbered frames in dir in filename order, capped at
// maxFrames, assigning timestamps index*intervalSec.
func Collect(dir string, intervalSec float64, maxFrames int) ([]Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frames dir: %w", err)
	}
	frames := make([]Frame, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		if len(frames) == maxFrames {
			break
		}
		frames = append(frames, Frame{
			Path:         filepath.Join(dir, name),
			MimeType:     MimeType,
			TimestampSec: float64(len(frames)) * intervalSec,
		})
	}
	return frames, nil
}
