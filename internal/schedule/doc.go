// Package schedule defines the per-video mute window model.
//
// A Schedule records which canonical video URL it was produced for and an
// ordered list of [start, end] second intervals during which playback should
// be muted. Schedules are produced by the analysis result stage, persisted as
// JSON window lists in the schedules table, and read back by the mute
// coordinator's periodic position check.
//
// Window boundaries are inclusive on both ends: a position equal to start or
// end counts as inside the window. A stored schedule only applies when its
// CanonicalURL matches the currently viewed video's canonical URL; callers
// treat a mismatch as "no schedule" rather than an error.
//
// ParseWindows and EncodeWindows convert the window list to and from its
// persisted JSON form (blank input parses to an empty list).
package schedule
