package logs

import "testing"

func TestFilterMatch(t *testing.T) {
	jsonWarn := `{"ts":"2026-01-02T03:04:05Z","level":"warn","msg":"audio unavailable","component":"ingest","cache_key":"abcdef0123"}`
	jsonDebug := `{"ts":"2026-01-02T03:04:05Z","level":"debug","msg":"probe","component":"ffprobe"}`
	console := `2026-01-02T03:04:05Z INFO ingest: cache hit cache_key=abcdef0123 segments=2`

	tests := []struct {
		name   string
		filter Filter
		line   string
		want   bool
	}{
		{"zero filter", Filter{}, "anything", true},
		{"json level at floor", Filter{MinLevel: "warn"}, jsonWarn, true},
		{"json level below floor", Filter{MinLevel: "info"}, jsonDebug, false},
		{"json component", Filter{Component: "INGEST"}, jsonWarn, true},
		{"json component mismatch", Filter{Component: "watch"}, jsonWarn, false},
		{"json cache key prefix", Filter{CacheKey: "ABCDEF"}, jsonWarn, true},
		{"console level", Filter{MinLevel: "warn"}, console, false},
		{"console component", Filter{Component: "ingest"}, console, true},
		{"console cache key", Filter{CacheKey: "abcd"}, console, true},
		{"console cache key mismatch", Filter{CacheKey: "ffff"}, console, false},
		{"contains is case-insensitive", Filter{Contains: "CACHE HIT"}, console, true},
		{"contains miss", Filter{Contains: "pruned"}, console, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Match(tc.line); got != tc.want {
				t.Fatalf("Match(%q) = %v, want %v", tc.line, got, tc.want)
			}
		})
	}
}
