// Package fileutil holds the file primitives shared by the ingest pipeline:
// streaming content digests used as cache keys, directory reset, and verified
// copies into the managed files directory.
package fileutil
