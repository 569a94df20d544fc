// Package ingestspec defines the payload shared between the ingest pipeline
// and its cache.
//
// # Key Types
//
// Options: the four sampling knobs of a run. Normalize replaces invalid or
// non-finite values with defaults, and two runs share a cache entry only
// when their normalized Options are equal field by field.
//
// Result: everything one run produced (frames, timeline segments, optional
// audio and transcript) plus the source identity and cache location. It is
// the cached artifact.
//
// Manifest: the persisted {version, options, result} document stored as
// manifest.json in each cache entry.
//
// # Entry Points
//
// Parse: decode a manifest and reject unknown schema versions.
// Manifest.Encode: serialise for persistence.
// Result.ReferencedPaths: files that must still exist for a manifest to count
// as a cache hit.
package ingestspec
