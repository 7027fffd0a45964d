// Package match compiles the banned term set into a caption matcher.
//
// Single-word terms compile into one case-insensitive word-boundary pattern;
// phrase terms each compile into a case-insensitive substring pattern checked
// in order. Matching and censoring are independent passes over the same
// text: Match reports whether any term hit and returns the censored
// rendering, Censor performs the replacement pass alone. Censoring replaces
// every matched span with a fixed placeholder, phrases before single words
// so a phrase hit collapses to one placeholder instead of leaving its
// individually-banned words behind.
package match
