package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vidingest/internal/logging"
	"vidingest/internal/media/ffprobe"
	"vidingest/internal/procrun"
)

const (
	// FileName is the extracted track's name inside the cache entry.
	FileName = "audio.wav"
	// MimeType of the extracted track.
	MimeType = "audio/wav"
	// SampleRate of the extracted track in Hz.
	SampleRate = 16000
	// ChannelCount of the extracted track.
	ChannelCount = 1
)

// Track describes an extracted audio file.
type Track struct {
	Path         string `json:"path"`
	MimeType     string `json:"mimeType"`
	SampleRate   int    `json:"sampleRate"`
	ChannelCount int    `json:"channelCount"`
	SizeBytes    int64  `json:"sizeBytes"`
}

// Extractor writes speech-ready audio using ffmpeg.
type Extractor struct {
	Runner   procrun.Runner
	FFmpeg   string
	Language string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Args returns the ffmpeg arguments that extract mapSpec from sourcePath into
// outputPath, truncated to maxDurationSec.
func Args(sourcePath, outputPath, mapSpec string, maxDurationSec float64) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin", "-y",
		"-i", sourcePath,
		"-map", mapSpec,
		"-vn", "-sn", "-dn",
		"-t", strconv.FormatFloat(maxDurationSec, 'f', -1, 64),
		"-ac", strconv.Itoa(ChannelCount),
		"-ar", strconv.Itoa(SampleRate),
		"-c:a", "pcm_s16le",
		outputPath,
	}
}

// Extract writes destDir/audio.wav from sourcePath. streams, when non-empty,
// drive stream selection. Every failure is logged as a warning and returned;
// the caller proceeds without audio.
func (e Extractor) Extract(ctx context.Context, sourcePath, destDir string, maxDurationSec float64, streams []ffprobe.Stream) (*Track, error) {
	logger := e.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(ctx, logger)

	track, err := e.extract(ctx, sourcePath, destDir, maxDurationSec, streams, logger)
	if err != nil {
		hint := "check ffmpeg output for the source file"
		if errors.Is(err, procrun.ErrToolUnavailable) {
			hint = "install ffmpeg or set tools.ffmpeg in config"
		}
		logging.WarnWithContext(logger, "audio extraction failed; continuing without audio",
			"audio_extract_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, "ingest result has no audio track"),
		)
		return nil, err
	}
	return track, nil
}

func (e Extractor) extract(ctx context.Context, sourcePath, destDir string, maxDurationSec float64, streams []ffprobe.Stream, logger *slog.Logger) (*Track, error) {
	if maxDurationSec <= 0 {
		return nil, fmt.Errorf("audio duration cap must be positive, got %v", maxDurationSec)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	outputPath := filepath.Join(destDir, FileName)

	mapSpec := DefaultMap
	if len(streams) > 0 {
		selection := Select(streams, e.Language)
		if selection.PrimaryIndex < 0 {
			return nil, errors.New("source has no audio stream")
		}
		mapSpec = selection.MapArg()
		logger.Debug("audio stream selected",
			logging.String("stream", selection.PrimaryLabel()),
			logging.Int("stream_index", selection.PrimaryIndex),
			logging.Int("candidates", selection.Candidates),
		)
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
	if _, err := runner.Run(runCtx, binary, Args(sourcePath, outputPath, mapSpec, maxDurationSec)...); err != nil {
		return nil, fmt.Errorf("ffmpeg audio extract: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("stat extracted audio: %w", err)
	}
	return &Track{
		Path:         outputPath,
		MimeType:     MimeType,
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		SizeBytes:    info.Size(),
	}, nil
}
