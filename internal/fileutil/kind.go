package fileutil

import (
	"path/filepath"
	"strings"
)

// Media kinds recorded for catalogued files.
const (
	KindVideo    = "video"
	KindAudio    = "audio"
	KindSubtitle = "subtitle"
	KindOther    = "other"
)

var kindsByExt = map[string]string{
	".mp4":  KindVideo,
	".m4v":  KindVideo,
	".mkv":  KindVideo,
	".mov":  KindVideo,
	".avi":  KindVideo,
	".webm": KindVideo,
	".wmv":  KindVideo,
	".flv":  KindVideo,
	".mpg":  KindVideo,
	".mpeg": KindVideo,
	".ts":   KindVideo,
	".m2ts": KindVideo,
	".3gp":  KindVideo,
	".mp3":  KindAudio,
	".wav":  KindAudio,
	".flac": KindAudio,
	".m4a":  KindAudio,
	".ogg":  KindAudio,
	".opus": KindAudio,
	".srt":  KindSubtitle,
	".vtt":  KindSubtitle,
}

// NormalizeExt lowercases ext and ensures a leading dot. Empty stays empty.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// KindForExt classifies a file extension such as ".MP4" or "mkv".
func KindForExt(ext string) string {
	if kind, ok := kindsByExt[NormalizeExt(ext)]; ok {
		return kind
	}
	return KindOther
}

// KindForPath classifies path by its extension.
func KindForPath(path string) string {
	return KindForExt(filepath.Ext(path))
}
