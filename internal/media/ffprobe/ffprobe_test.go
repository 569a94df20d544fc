package ffprobe

import (
	"context"
	"errors"
	"math"
	"testing"

	"vidingest/internal/procrun"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
			{CodecType: "audio"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
			BitRate:  "32000",
		},
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.MediaDuration() != 123.45 {
		t.Fatalf("unexpected media duration: %v", result.MediaDuration())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	if result.BitRate() != 32000 {
		t.Fatalf("unexpected bitrate: %d", result.BitRate())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
			BitRate:  "nope",
		},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.MediaDuration() != 0 {
		t.Fatalf("expected unknown media duration, got %v", result.MediaDuration())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.BitRate() != 0 {
		t.Fatalf("expected bitrate 0, got %d", result.BitRate())
	}
}

func TestMediaDurationFallsBackToStreams(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   float64
	}{
		{"negative container", Result{Format: Format{Duration: "-5"}, Streams: []Stream{{Duration: "12.5"}, {Duration: "40"}}}, 40},
		{"infinite container", Result{Format: Format{Duration: "inf"}}, 0},
		{"zero everywhere", Result{Format: Format{Duration: "0"}, Streams: []Stream{{Duration: "0"}}}, 0},
	}
	for _, tc := range tests {
		if got := tc.result.MediaDuration(); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestInspectUsesRunner(t *testing.T) {
	var gotName string
	var gotArgs []string
	runner := procrun.Func(func(_ context.Context, name string, args ...string) (procrun.Output, error) {
		gotName = name
		gotArgs = args
		return procrun.Output{Stdout: `{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio","tags":{"language":"eng"},"disposition":{"default":1}}],"format":{"duration":"40.000000"}}`}, nil
	})

	result, err := Inspect(context.Background(), runner, "", "/videos/clip.mp4")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if gotName != "ffprobe" {
		t.Fatalf("expected default binary, got %q", gotName)
	}
	if gotArgs[len(gotArgs)-1] != "/videos/clip.mp4" || gotArgs[len(gotArgs)-2] != "--" {
		t.Fatalf("unexpected args %v", gotArgs)
	}
	if result.MediaDuration() != 40 {
		t.Fatalf("unexpected duration %v", result.MediaDuration())
	}
	if result.Streams[1].Tags["language"] != "eng" || result.Streams[1].Disposition["default"] != 1 {
		t.Fatalf("tags/disposition not decoded: %+v", result.Streams[1])
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("expected raw JSON to be retained")
	}
}

func TestInspectPropagatesToolErrors(t *testing.T) {
	runner := procrun.Func(func(context.Context, string, ...string) (procrun.Output, error) {
		return procrun.Output{}, &procrun.ToolUnavailableError{Tool: "ffprobe"}
	})
	_, err := Inspect(context.Background(), runner, "ffprobe", "/videos/clip.mp4")
	if !errors.Is(err, procrun.ErrToolUnavailable) {
		t.Fatalf("expected ErrToolUnavailable, got %v", err)
	}

	garbage := procrun.Func(func(context.Context, string, ...string) (procrun.Output, error) {
		return procrun.Output{Stdout: "not json"}, nil
	})
	if _, err := Inspect(context.Background(), garbage, "ffprobe", "/videos/clip.mp4"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Inspect(context.Background(), garbage, "ffprobe", "  "); err == nil {
		t.Fatal("expected empty path error")
	}
}
