package subtitles

import (
	"math"
	"testing"
)

func TestParseSingleSRTCue(t *testing.T) {
	segments := Parse("1\n00:00:01,000 --> 00:00:03,000\nHello\n")
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	got := segments[0]
	if got.StartSec != 1 || got.EndSec != 3 || got.Text != "Hello" {
		t.Fatalf("unexpected segment %+v", got)
	}
}

func TestParseDiscardsInvertedCueAndContinues(t *testing.T) {
	content := "1\r\n00:00:05,000 --> 00:00:02,000\r\nBad\r\n\r\n2\r\n00:00:06,000 --> 00:00:07,500\r\nGood\r\n"
	segments := Parse(content)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %+v", segments)
	}
	if segments[0].Text != "Good" || segments[0].EndSec != 7.5 {
		t.Fatalf("unexpected segment %+v", segments[0])
	}
}

func TestParseTimecodeFormats(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"00:01:02.500", 62.5},
		{"01:02,500", 62.5},
		{"1:00:00,000", 3600},
		{" 00:00:00.250 ", 0.25},
	}
	for _, tc := range tests {
		got, err := ParseTimecode(tc.in)
		if err != nil {
			t.Fatalf("ParseTimecode(%q) returned error: %v", tc.in, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("ParseTimecode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseTimecodeRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "12", "aa:00:01,000", "00:xx:01,000", "00:00:inf", "00:00:NaN", "1:2:3:4", "00:00:-1"} {
		if _, err := ParseTimecode(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestParseWebVTT(t *testing.T) {
	content := `WEBVTT - sample

NOTE this block has no timing

intro
00:00.500 --> 00:02.000 align:start position:10%
<v Speaker>Hi <b>there</b></v>
second line

00:00:03.000 --> 00:00:04.000
<i></i>
`
	segments := Parse(content)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %+v", segments)
	}
	got := segments[0]
	if got.StartSec != 0.5 || got.EndSec != 2 {
		t.Fatalf("unexpected timing %+v", got)
	}
	if got.Text != "Hi there second line" {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestParseSortsByStart(t *testing.T) {
	content := "00:00:10,000 --> 00:00:11,000\nlater\n\n00:00:01,000 --> 00:00:02,000\nearlier\n"
	segments := Parse(content)
	if len(segments) != 2 || segments[0].Text != "earlier" || segments[1].Text != "later" {
		t.Fatalf("unexpected order %+v", segments)
	}
}

func TestParseStripsOverrideTags(t *testing.T) {
	segments := Parse("00:00:01,000 --> 00:00:02,000\n{\\an8}Top text\n")
	if len(segments) != 1 || segments[0].Text != "Top text" {
		t.Fatalf("unexpected segments %+v", segments)
	}
}

func TestParseEmpty(t *testing.T) {
	if got := Parse(""); len(got) != 0 {
		t.Fatalf("expected no segments, got %+v", got)
	}
	if got := Parse("WEBVTT\n"); len(got) != 0 {
		t.Fatalf("expected no segments for header-only file, got %+v", got)
	}
}
