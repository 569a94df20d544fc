// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Inspect runs ffprobe through a procrun.Runner so callers can substitute
// process execution. MediaDuration collapses the reported values into the
// advisory duration the ingest pipeline needs, returning 0 when unknown.
package ffprobe
