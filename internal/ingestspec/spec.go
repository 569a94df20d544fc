package ingestspec

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"vidingest/internal/media/audio"
	"vidingest/internal/media/frames"
	"vidingest/internal/subtitles"
	"vidingest/internal/timeline"
)

// SchemaVersion is bumped whenever the manifest shape changes; entries
// written under another version are treated as misses.
const SchemaVersion = 1

// Options controls sampling for one ingest run.
type Options struct {
	FrameIntervalSec    float64 `json:"frameIntervalSec"`
	MaxFrames           int     `json:"maxFrames"`
	SegmentDurationSec  float64 `json:"segmentDurationSec"`
	MaxAudioDurationSec float64 `json:"maxAudioDurationSec"`
}

// DefaultOptions returns the built-in sampling defaults.
func DefaultOptions() Options {
	return Options{
		FrameIntervalSec:    2,
		MaxFrames:           12,
		SegmentDurationSec:  20,
		MaxAudioDurationSec: 600,
	}
}

// Normalize returns o with every invalid field replaced by the matching field
// of defaults. Positive finite durations and non-negative frame caps are kept.
func (o Options) Normalize(defaults Options) Options {
	out := o
	if !positiveFinite(out.FrameIntervalSec) {
		out.FrameIntervalSec = defaults.FrameIntervalSec
	}
	if out.MaxFrames < 0 {
		out.MaxFrames = defaults.MaxFrames
	}
	if !positiveFinite(out.SegmentDurationSec) {
		out.SegmentDurationSec = defaults.SegmentDurationSec
	}
	if !positiveFinite(out.MaxAudioDurationSec) {
		out.MaxAudioDurationSec = defaults.MaxAudioDurationSec
	}
	return out
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Result is the complete output of one ingest run.
type Result struct {
	SourceID           string                `json:"sourceId"`
	SourceName         string                `json:"sourceName"`
	CacheKey           string                `json:"cacheKey"`
	SourcePath         string                `json:"sourcePath"`
	CreatedAt          time.Time             `json:"createdAt"`
	CacheDir           string                `json:"cacheDir"`
	DurationSec        float64               `json:"durationSec"`
	FrameIntervalSec   float64               `json:"frameIntervalSec"`
	SegmentDurationSec float64               `json:"segmentDurationSec"`
	Frames             []frames.Frame        `json:"frames"`
	Segments           []timeline.Segment    `json:"segments"`
	Audio              *audio.Track          `json:"audio,omitempty"`
	Transcript         *subtitles.Transcript `json:"transcript,omitempty"`
	Warnings           []string              `json:"warnings,omitempty"`
}

// ReferencedPaths lists every file the result points at.
func (r Result) ReferencedPaths() []string {
	paths := make([]string, 0, len(r.Frames)+2)
	for _, frame := range r.Frames {
		paths = append(paths, frame.Path)
	}
	if r.Audio != nil {
		paths = append(paths, r.Audio.Path)
	}
	if r.Transcript != nil {
		paths = append(paths, r.Transcript.Path)
	}
	return paths
}

// Manifest is the persisted form of a cache entry.
type Manifest struct {
	Version int     `json:"version"`
	Options Options `json:"options"`
	Result  Result  `json:"result"`
}

// NewManifest wraps a result at the current schema version.
func NewManifest(opts Options, result Result) Manifest {
	return Manifest{Version: SchemaVersion, Options: opts, Result: result}
}

// Parse decodes a manifest document of any schema version. Callers compare
// Version against SchemaVersion before trusting the contents.
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

// Encode serialises the manifest as indented JSON.
func (m Manifest) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return data, nil
}
