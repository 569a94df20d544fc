// Package audio extracts the speech-ready audio track of a source video.
//
// Select ranks the container's audio streams for dialogue: it prefers the
// requested language, skips commentary and described-video tracks, and then
// favours the default-flagged, wider, lossless stream. Extractor runs ffmpeg
// through a procrun.Runner to write audio.wav as mono 16 kHz signed 16-bit
// PCM, truncated to a duration cap.
//
// Audio is an enrichment: Extract logs a warning and returns an error the
// caller records as a degraded step, never a reason to fail an ingest.
package audio
