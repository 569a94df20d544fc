// Package ingest turns a video file into a cached, timeline-aligned bundle of
// frames, audio, and transcript.
//
// Service.Ingest validates the source, resolves a readable path (stored path
// first, then {filesDir}/{id}{ext}), normalises options against configured
// defaults, and content-hashes the file to find its cache entry. A valid
// manifest short-circuits the pipeline. On a miss the service takes the
// entry's file lock, re-checks the cache, probes the file, then extracts
// frames and audio and loads the sidecar transcript concurrently before
// bucketing everything into timeline segments and persisting the manifest.
//
// Concurrent requests for the same content and options inside one process
// share a single computation. Requests from other processes serialise on the
// entry lock and reuse whatever manifest the first writer produced.
//
// Frame extraction failures abort the request. Probe, audio, and transcript
// problems degrade the result (zero duration, no audio, no transcript) and are
// reported in Result.Warnings.
package ingest
