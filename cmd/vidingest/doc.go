// Command vidingest ingests video files into a content-addressed cache of
// sampled frames, speech-ready audio, and sidecar transcripts aligned on a
// fixed-width timeline.
//
// Typical use:
//
//	vidingest ingest lecture.mp4          # register, ingest, print a summary
//	vidingest ingest --json lecture.mp4   # full result as JSON
//	vidingest watch ~/Videos/inbox        # ingest new videos as they land
//	vidingest cache stats                 # cache usage
//	vidingest doctor                      # check ffmpeg/ffprobe
package main
