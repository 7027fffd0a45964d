// Package mute decides when playback audio is silenced.
//
// The Gate is a generic OR of named reasons: a reason flips on or off, the
// gate recomputes the union, and only a change in the union drives the
// actuator and emits a transition. The Coordinator owns the two live
// reasons: caption matches hold the mute for a fixed window after the last
// hit, and a ticker mutes whenever the reported playback position sits
// inside a stored mute window for the current video. A stored schedule whose
// canonical URL does not match the current video is ignored.
//
// Manual toggles invert the actuator directly. Toggling to unmuted clears
// every reason so the next tick cannot immediately re-mute; toggling to
// muted holds until the next automatic transition takes over.
package mute
