// Package banlist manages the banned term set.
//
// A built-in default list ships embedded in the binary; user-added terms are
// persisted in the store and merged on top. Merging normalizes whitespace,
// deduplicates case-insensitively with Unicode case folding, and keeps a
// deterministic order: defaults in embedded order first, then user terms
// sorted. Terms containing whitespace are phrases and match by substring;
// single words match on word boundaries (the distinction lives in the match
// package, Split is the seam between them).
package banlist
