package subtitles

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const timingSeparator = "-->"

// Segment is one timed cue. EndSec is always greater than StartSec and Text
// is never empty.
type Segment struct {
	StartSec float64 `json:"startSec"`
	EndSec   float64 `json:"endSec"`
	Text     string  `json:"text"`
}

var (
	markupTag   = regexp.MustCompile(`<[^>]*>`)
	overrideTag = regexp.MustCompile(`\{\\[^}]*\}`)
	blankLine   = regexp.MustCompile(`\n[ \t]*\n`)
)

var errInvalidTimecode = errors.New("invalid timecode")

// Parse reads SRT or WebVTT content and returns the well-formed cues sorted by
// start time. Blocks with unparseable timings, non-positive duration, or no
// text after markup removal are dropped without affecting other blocks.
func Parse(content string) []Segment {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	normalized = strings.TrimPrefix(normalized, "\ufeff")
	normalized = stripVTTHeader(normalized)

	var segments []Segment
	for _, block := range blankLine.Split(strings.TrimSpace(normalized), -1) {
		if seg, ok := parseBlock(block); ok {
			segments = append(segments, seg)
		}
	}
	slices.SortStableFunc(segments, func(a, b Segment) int {
		switch {
		case a.StartSec < b.StartSec:
			return -1
		case a.StartSec > b.StartSec:
			return 1
		}
		return 0
	})
	return segments
}

func stripVTTHeader(content string) string {
	trimmed := strings.TrimLeft(content, " \t\n")
	if !strings.HasPrefix(trimmed, "WEBVTT") {
		return content
	}
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		return trimmed[idx+1:]
	}
	return ""
}

func parseBlock(block string) (Segment, bool) {
	lines := strings.Split(block, "\n")
	timing := -1
	for i, line := range lines {
		if strings.Contains(line, timingSeparator) {
			timing = i
			break
		}
	}
	if timing < 0 {
		return Segment{}, false
	}

	start, end, err := parseTiming(lines[timing])
	if err != nil || end <= start {
		return Segment{}, false
	}

	var parts []string
	for _, line := range lines[timing+1:] {
		if text := strings.TrimSpace(line); text != "" {
			parts = append(parts, text)
		}
	}
	text := cleanCueText(strings.Join(parts, " "))
	if text == "" {
		return Segment{}, false
	}
	return Segment{StartSec: start, EndSec: end, Text: text}, true
}

func parseTiming(line string) (float64, float64, error) {
	left, right, ok := strings.Cut(line, timingSeparator)
	if !ok {
		return 0, 0, errInvalidTimecode
	}
	// WebVTT cue settings may follow the end timestamp.
	rightFields := strings.Fields(right)
	if len(rightFields) == 0 {
		return 0, 0, errInvalidTimecode
	}
	start, err := ParseTimecode(left)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimecode(rightFields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ParseTimecode converts `[hh:]mm:ss[.,]mmm` into seconds.
func ParseTimecode(value string) (float64, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w %q", errInvalidTimecode, value)
	}

	hours := 0
	if len(parts) == 3 {
		h, err := parseWhole(parts[0])
		if err != nil {
			return 0, fmt.Errorf("%w %q", errInvalidTimecode, value)
		}
		hours = h
		parts = parts[1:]
	}
	minutes, err := parseWhole(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w %q", errInvalidTimecode, value)
	}
	secText := strings.Replace(parts[1], ",", ".", 1)
	if !isDecimal(secText) {
		return 0, fmt.Errorf("%w %q", errInvalidTimecode, value)
	}
	seconds, err := strconv.ParseFloat(secText, 64)
	if err != nil || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return 0, fmt.Errorf("%w %q", errInvalidTimecode, value)
	}
	return float64(hours*3600+minutes*60) + seconds, nil
}

func parseWhole(value string) (int, error) {
	if value == "" {
		return 0, errInvalidTimecode
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, errInvalidTimecode
		}
	}
	return strconv.Atoi(value)
}

func isDecimal(value string) bool {
	if value == "" || value == "." {
		return false
	}
	dots := 0
	for _, r := range value {
		switch {
		case r == '.':
			dots++
		case r < '0' || r > '9':
			return false
		}
	}
	return dots <= 1
}

func cleanCueText(text string) string {
	text = markupTag.ReplaceAllString(text, "")
	text = overrideTag.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
