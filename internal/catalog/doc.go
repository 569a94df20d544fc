// Package catalog persists the files vidingest knows about in SQLite.
//
// Every file gets a stable UUID. Register records a file where it already
// lives; Import copies it into the managed files directory as {id}{ext} and
// leaves the stored path empty, so ingestion resolves it through the files
// directory fallback. RecordIngest remembers the last cache key produced for
// a file so `vidingest files list` can show which files are cached.
//
// Schema changes bump schemaVersion in schema.go; users delete catalog.db to
// adopt a new schema.
package catalog
