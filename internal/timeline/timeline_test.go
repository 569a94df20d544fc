package timeline

import (
	"fmt"
	"math"
	"testing"

	"vidingest/internal/media/frames"
	"vidingest/internal/subtitles"
)

func sampleFrames(n int, interval float64) []frames.Frame {
	out := make([]frames.Frame, n)
	for i := range out {
		out[i] = frames.Frame{Path: fmt.Sprintf("/f/frame_%06d.jpg", i+1), TimestampSec: float64(i) * interval}
	}
	return out
}

func TestBuildForFortySecondSource(t *testing.T) {
	segments := Build(sampleFrames(20, 2), nil, 40, 20)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].StartSec != 0 || segments[0].EndSec != 20 || segments[1].StartSec != 20 || segments[1].EndSec != 40 {
		t.Fatalf("unexpected bounds %+v", segments)
	}
	if len(segments[0].FramePaths) != 10 || len(segments[1].FramePaths) != 10 {
		t.Fatalf("expected 10 frames per segment, got %d and %d", len(segments[0].FramePaths), len(segments[1].FramePaths))
	}
	if segments[1].RepresentativeFramePath != "/f/frame_000011.jpg" {
		t.Fatalf("unexpected representative frame %q", segments[1].RepresentativeFramePath)
	}
}

func TestBuildCoverageIsContiguous(t *testing.T) {
	cases := []struct{ duration, width float64 }{
		{40, 20}, {41, 20}, {0.3, 20}, {100, 7}, {59.999, 3}, {1e-3, 1e-3},
	}
	for _, tc := range cases {
		// Give every bucket a frame so none are filtered out.
		n := int(math.Ceil(tc.duration/tc.width)) + 1
		var fl []frames.Frame
		for i := 0; i < n; i++ {
			ts := math.Min(float64(i)*tc.width, tc.duration)
			fl = append(fl, frames.Frame{Path: fmt.Sprintf("p%d", i), TimestampSec: ts})
		}
		segments := Build(fl, nil, tc.duration, tc.width)
		effective := math.Max(tc.duration, tc.width)
		if segments[0].StartSec != 0 {
			t.Fatalf("%v: first segment starts at %v", tc, segments[0].StartSec)
		}
		for i := 1; i < len(segments); i++ {
			if segments[i].StartSec != segments[i-1].EndSec {
				t.Fatalf("%v: gap between %d and %d", tc, i-1, i)
			}
			if segments[i].Index != i {
				t.Fatalf("%v: unexpected index %d at %d", tc, segments[i].Index, i)
			}
		}
		if last := segments[len(segments)-1]; last.EndSec != effective {
			t.Fatalf("%v: last end %v want %v", tc, last.EndSec, effective)
		}
	}
}

func TestBuildKeepsFirstSegmentWhenEmpty(t *testing.T) {
	segments := Build(nil, nil, 0, 20)
	if len(segments) != 1 {
		t.Fatalf("expected one anchor segment, got %d", len(segments))
	}
	got := segments[0]
	if got.Index != 0 || got.StartSec != 0 || got.EndSec != 20 || got.RepresentativeFramePath != "" || got.TranscriptText != "" {
		t.Fatalf("unexpected anchor %+v", got)
	}
	if got.FramePaths == nil {
		t.Fatal("frame paths should be an empty list, not nil")
	}
}

func TestBuildDropsEmptyMiddleSegments(t *testing.T) {
	fl := []frames.Frame{{Path: "a", TimestampSec: 0}, {Path: "b", TimestampSec: 50}}
	segments := Build(fl, nil, 60, 20)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %+v", segments)
	}
	if segments[0].Index != 0 || segments[1].Index != 2 {
		t.Fatalf("unexpected indices %d %d", segments[0].Index, segments[1].Index)
	}
}

func TestBuildClampsBoundaryFrame(t *testing.T) {
	fl := []frames.Frame{{Path: "a", TimestampSec: 0}, {Path: "edge", TimestampSec: 40}}
	segments := Build(fl, nil, 40, 20)
	last := segments[len(segments)-1]
	if last.Index != 1 || last.FramePaths[len(last.FramePaths)-1] != "edge" {
		t.Fatalf("boundary frame not placed in last segment: %+v", segments)
	}
}

func TestBuildTranscriptOverlap(t *testing.T) {
	cues := []subtitles.Segment{
		{StartSec: 1, EndSec: 3, Text: "hello"},
		{StartSec: 18, EndSec: 22, Text: " spanning "},
		{StartSec: 20, EndSec: 21, Text: "second"},
		{StartSec: 45, EndSec: 50, Text: "tail"},
	}
	segments := Build(nil, cues, 30, 20)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %+v", segments)
	}
	if segments[0].TranscriptText != "hello spanning" {
		t.Fatalf("segment 0 text %q", segments[0].TranscriptText)
	}
	if segments[1].TranscriptText != "spanning second" {
		t.Fatalf("segment 1 text %q", segments[1].TranscriptText)
	}
	if segments[2].TranscriptText != "tail" || segments[2].EndSec != 50 {
		t.Fatalf("segment 2 %+v", segments[2])
	}
}

func TestEffectiveDuration(t *testing.T) {
	cues := []subtitles.Segment{{StartSec: 0, EndSec: 75}}
	if got := EffectiveDuration(math.NaN(), sampleFrames(3, 2), cues, 20); got != 75 {
		t.Fatalf("unexpected duration %v", got)
	}
	if got := EffectiveDuration(5, nil, nil, 20); got != 20 {
		t.Fatalf("segment width floor not applied: %v", got)
	}
}
