// Package ingest turns RSS, Atom and JSON feeds into stored articles.
//
// A run validates its input, fetches the feed, parses it, drops items whose
// link is already known and inserts the rest in one batch. Runs never return
// an error or panic to the caller: every outcome is reported as a Result.
package ingest
