package subtitles

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"vidingest/internal/logging"
)

// Transcript is a parsed sidecar subtitle file.
type Transcript struct {
	Path     string    `json:"path"`
	Format   string    `json:"format"`
	Segments []Segment `json:"segments"`
}

// SidecarFormats lists sidecar extensions in lookup order.
var SidecarFormats = []string{"srt", "vtt"}

// Loader finds and parses sidecar subtitles.
type Loader struct {
	Logger *slog.Logger
}

// Candidates returns the sidecar paths checked for sourcePath, in order.
func Candidates(sourcePath string) []string {
	base := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
	out := make([]string, 0, len(SidecarFormats))
	for _, format := range SidecarFormats {
		out = append(out, base+"."+format)
	}
	return out
}

// Load returns the first sidecar next to sourcePath that yields segments.
// When no sidecar exists it returns (nil, nil). When sidecars exist but none
// is usable it returns nil and an error describing each failure.
func (l Loader) Load(ctx context.Context, sourcePath string) (*Transcript, error) {
	logger := l.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(ctx, logger)

	var failures []error
	for i, candidate := range Candidates(sourcePath) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		segments, err := loadFile(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err == nil && len(segments) == 0 {
			err = errors.New("no valid cues")
		}
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", filepath.Base(candidate), err))
			logging.WarnWithContext(logger, "sidecar subtitle unusable",
				"transcript_sidecar_invalid",
				logging.String("path", candidate),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the subtitle file encoding and timing lines"),
				logging.String(logging.FieldImpact, "sidecar ignored; trying next candidate"),
			)
			continue
		}
		logger.Debug("sidecar subtitle loaded",
			logging.String("path", candidate),
			logging.Int("segments", len(segments)),
		)
		return &Transcript{Path: candidate, Format: SidecarFormats[i], Segments: segments}, nil
	}
	if len(failures) > 0 {
		return nil, errors.Join(failures...)
	}
	return nil, nil
}

func loadFile(path string) ([]Segment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Parse(text), nil
}
