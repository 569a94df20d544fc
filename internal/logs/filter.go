package logs

import (
	"encoding/json"
	"strings"
)

// Filter selects log lines. Zero fields match everything.
type Filter struct {
	// MinLevel is one of debug, info, warn, error.
	MinLevel  string
	Component string
	CacheKey  string
	Contains  string
}

// IsZero reports whether the filter accepts every line.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether line passes f. JSON lines are matched on their
// fields; console lines on the "TS LEVEL component: msg k=v" layout.
func (f Filter) Match(line string) bool {
	if f.IsZero() {
		return true
	}
	if f.Contains != "" && !strings.Contains(strings.ToLower(line), strings.ToLower(f.Contains)) {
		return false
	}

	level, component, cacheKey := parseLine(line)
	if f.MinLevel != "" && levelRank(level) < levelRank(f.MinLevel) {
		return false
	}
	if f.Component != "" && !strings.EqualFold(component, f.Component) {
		return false
	}
	if f.CacheKey != "" && !strings.HasPrefix(cacheKey, strings.ToLower(f.CacheKey)) {
		return false
	}
	return true
}

func parseLine(line string) (level, component, cacheKey string) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		var record map[string]any
		if err := json.Unmarshal([]byte(trimmed), &record); err == nil {
			return stringField(record, "level"), stringField(record, "component"), stringField(record, "cache_key")
		}
	}

	fields := strings.Fields(trimmed)
	if len(fields) >= 2 {
		level = fields[1]
	}
	if len(fields) >= 3 && strings.HasSuffix(fields[2], ":") {
		component = strings.TrimSuffix(fields[2], ":")
	}
	for _, field := range fields {
		if value, ok := strings.CutPrefix(field, "cache_key="); ok {
			cacheKey = strings.Trim(value, `"`)
			break
		}
	}
	return level, component, cacheKey
}

func stringField(record map[string]any, key string) string {
	value, _ := record[key].(string)
	return value
}

func levelRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return 0
	case "info":
		return 1
	case "warn", "warning":
		return 2
	case "error":
		return 3
	default:
		return 1
	}
}
