package audio

import (
	"fmt"
	"strconv"
	"strings"

	"vidingest/internal/language"
	"vidingest/internal/media/ffprobe"
)

// DefaultMap is the ffmpeg stream specifier used without probe data: the
// first audio stream if there is one.
const DefaultMap = "0:a:0?"

// Selection describes the audio stream chosen for speech extraction.
type Selection struct {
	Primary      ffprobe.Stream
	PrimaryIndex int
	Candidates   int
}

// MapArg returns the ffmpeg -map value for the selection.
func (s Selection) MapArg() string {
	if s.PrimaryIndex < 0 {
		return DefaultMap
	}
	return fmt.Sprintf("0:%d", s.PrimaryIndex)
}

// PrimaryLabel returns a human-readable summary of the selected primary stream.
func (s Selection) PrimaryLabel() string {
	if s.PrimaryIndex < 0 {
		return ""
	}
	return formatStreamSummary(s.Primary)
}

// Select returns the audio stream most likely to carry the main dialogue in
// language ("en", "eng", "English"; empty accepts any). Streams in the
// preferred language are considered first; when none match, every audio
// stream competes. PrimaryIndex is -1 when there is no audio stream.
func Select(streams []ffprobe.Stream, preferred string) Selection {
	candidates := buildCandidates(streams, preferred)
	if len(candidates) == 0 {
		return Selection{PrimaryIndex: -1}
	}

	pool := candidates.preferred()
	if len(pool) == 0 {
		pool = candidates
	}

	primary := choosePrimary(pool)
	return Selection{
		Primary:      primary.stream,
		PrimaryIndex: primary.stream.Index,
		Candidates:   len(candidates),
	}
}

// candidate captures the derived metadata used for audio ranking.
type candidate struct {
	stream         ffprobe.Stream
	order          int
	title          string
	preferredLang  bool
	isLossless     bool
	isSecondary    bool
	channels       int
	defaultFlagged bool
}

type candidateList []candidate

func (c candidateList) preferred() candidateList {
	result := make(candidateList, 0, len(c))
	for _, cand := range c {
		if cand.preferredLang {
			result = append(result, cand)
		}
	}
	return result
}

func choosePrimary(candidates candidateList) candidate {
	best := candidates[0]
	bestScore := scorePrimary(best)
	for i := 1; i < len(candidates); i++ {
		score := scorePrimary(candidates[i])
		if score > bestScore {
			best = candidates[i]
			bestScore = score
		}
	}
	return best
}

func scorePrimary(cand candidate) float64 {
	score := 0.0

	// Commentary and audio description drown out the programme dialogue.
	if cand.isSecondary {
		score -= 1000
	}
	if cand.defaultFlagged {
		score += 300
	}

	switch {
	case cand.channels >= 6:
		score += 60
	case cand.channels >= 2:
		score += 40
	case cand.channels == 1:
		score += 20
	}

	if cand.isLossless {
		score += 10
	}

	score -= float64(cand.order) * 0.1
	return score
}

func buildCandidates(streams []ffprobe.Stream, preferred string) candidateList {
	result := make(candidateList, 0)
	order := 0
	for _, stream := range streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		lang := language.FromTags(stream.Tags)
		cand := candidate{
			stream:         stream,
			order:          order,
			title:          normalizeTitle(stream.Tags),
			channels:       channelCount(stream),
			defaultFlagged: flag(stream, "default"),
			preferredLang:  language.Matches(lang, preferred),
		}
		cand.isSecondary = flag(stream, "comment") || flag(stream, "visual_impaired") ||
			strings.Contains(cand.title, "commentary") || strings.Contains(cand.title, "description")
		cand.isLossless = detectLossless(stream)
		result = append(result, cand)
		order++
	}
	return result
}

func flag(stream ffprobe.Stream, name string) bool {
	return stream.Disposition != nil && stream.Disposition[name] == 1
}

func normalizeTitle(tags map[string]string) string {
	for _, key := range []string{"title", "TITLE", "handler_name", "HANDLER_NAME"} {
		if value, ok := tags[key]; ok {
			return strings.ToLower(strings.TrimSpace(value))
		}
	}
	return ""
}

func channelCount(stream ffprobe.Stream) int {
	if stream.Channels > 0 {
		return stream.Channels
	}
	layout := strings.ToLower(strings.TrimSpace(stream.ChannelLayout))
	switch {
	case layout == "":
		return 0
	case layout == "mono":
		return 1
	case layout == "stereo":
		return 2
	}
	total := 0
	for _, part := range strings.Split(layout, ".") {
		part = strings.Trim(part, "abcdefghijklmnopqrstuvwxyz ()")
		if n, err := strconv.Atoi(part); err == nil {
			total += n
		}
	}
	return total
}

func detectLossless(stream ffprobe.Stream) bool {
	name := strings.ToLower(stream.CodecName)
	if strings.HasPrefix(name, "pcm_") {
		return true
	}
	switch name {
	case "truehd", "flac", "mlp", "alac":
		return true
	}
	long := strings.ToLower(stream.CodecLong)
	return strings.Contains(long, "lossless") || strings.Contains(long, "master audio")
}

func formatStreamSummary(stream ffprobe.Stream) string {
	parts := make([]string, 0, 4)
	if lang := language.FromTags(stream.Tags); lang != "" {
		parts = append(parts, language.DisplayName(lang))
	}
	codec := stream.CodecLong
	if codec == "" {
		codec = stream.CodecName
	}
	if codec != "" {
		parts = append(parts, codec)
	}
	if ch := channelCount(stream); ch > 0 {
		parts = append(parts, strconv.Itoa(ch)+"ch")
	}
	if title := strings.TrimSpace(stream.Tags["title"]); title != "" {
		parts = append(parts, title)
	}
	if len(parts) == 0 {
		return "audio"
	}
	return strings.Join(parts, " | ")
}
