// Package session tracks what the viewer is watching right now: the current
// video identity and the last reported playback position. Observers feed it
// over the daemon API; the mute coordinator reads it on every schedule tick.
// The tracker holds observations only and never touches mute state.
package session
