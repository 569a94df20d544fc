// Package timeline buckets frames and transcript cues into fixed-width
// segments.
package timeline

import (
	"math"
	"strings"

	"vidingest/internal/media/frames"
	"vidingest/internal/subtitles"
)

// Segment is one contiguous time bucket.
type Segment struct {
	Index                   int      `json:"index"`
	StartSec                float64  `json:"startSec"`
	EndSec                  float64  `json:"endSec"`
	FramePaths              []string `json:"framePaths"`
	RepresentativeFramePath string   `json:"representativeFramePath,omitempty"`
	TranscriptText          string   `json:"transcriptText,omitempty"`
}

// EffectiveDuration is the span the timeline covers: the largest of the probed
// duration, the last frame timestamp, the last cue end, and one segment width.
func EffectiveDuration(probedSec float64, frameList []frames.Frame, cues []subtitles.Segment, segmentSec float64) float64 {
	duration := math.Max(finiteOrZero(probedSec), segmentSec)
	if n := len(frameList); n > 0 {
		duration = math.Max(duration, frameList[n-1].TimestampSec)
	}
	for _, cue := range cues {
		duration = math.Max(duration, cue.EndSec)
	}
	return duration
}

// Build returns the segments for the given inputs. segmentSec must be
// positive. Segment 0 is always present; other segments with neither a frame
// nor transcript text are omitted. Indices keep their position in the full
// grid, so an omitted segment leaves a gap in Index values.
func Build(frameList []frames.Frame, cues []subtitles.Segment, probedSec, segmentSec float64) []Segment {
	duration := EffectiveDuration(probedSec, frameList, cues, segmentSec)
	count := int(math.Ceil(duration / segmentSec))
	if count < 1 {
		count = 1
	}

	segments := make([]Segment, count)
	texts := make([][]string, count)
	for i := range segments {
		segments[i] = Segment{
			Index:      i,
			StartSec:   float64(i) * segmentSec,
			EndSec:     math.Min(float64(i+1)*segmentSec, duration),
			FramePaths: []string{},
		}
	}

	for _, frame := range frameList {
		idx := int(math.Floor(frame.TimestampSec / segmentSec))
		idx = min(max(idx, 0), count-1)
		segments[idx].FramePaths = append(segments[idx].FramePaths, frame.Path)
	}

	for _, cue := range cues {
		text := strings.TrimSpace(cue.Text)
		if text == "" {
			continue
		}
		for i := range segments {
			if cue.StartSec < segments[i].EndSec && cue.EndSec > segments[i].StartSec {
				texts[i] = append(texts[i], text)
			}
		}
	}

	kept := make([]Segment, 0, count)
	for i := range segments {
		seg := segments[i]
		if len(seg.FramePaths) > 0 {
			seg.RepresentativeFramePath = seg.FramePaths[0]
		}
		seg.TranscriptText = strings.TrimSpace(strings.Join(texts[i], " "))
		if i == 0 || seg.RepresentativeFramePath != "" || seg.TranscriptText != "" {
			kept = append(kept, seg)
		}
	}
	return kept
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
