// Package subtitles parses SRT and WebVTT sidecar files into timed transcript
// segments.
//
// Parse turns raw cue text into ordered Segments, silently discarding
// malformed blocks. Loader locates `name.srt` or `name.vtt` next to a source
// video and returns the first sidecar that yields at least one segment.
// Sidecar bytes are decoded with BOM detection (UTF-8, UTF-16 LE/BE) and
// NFC-normalized before parsing.
package subtitles
