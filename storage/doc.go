// Package storage implements the flash-backed sprite store.
//
// Sprites are persisted as an append-only log of records on a raw erase-block
// device. A record is never rewritten in place: uploading an existing key
// appends a superseding record, deleting appends a tombstone. The most recent
// record for a key wins, which is unambiguous because write offsets strictly
// increase. Space is reclaimed by Format (bulk erase) or by compaction when an
// upload no longer fits.
//
// On Open the live-key index is rebuilt by a single scan of the log. A record
// that fails its integrity trailer (a crash during write) ends the scan and
// is never treated as live.
package storage
