// Package analysis provides the HTTP client for the remote mute-schedule
// service.
//
// The service accepts a video URL, transcribes the audio in the background,
// and exposes per-word mute windows once transcription finishes. The client
// covers the full job lifecycle:
//   - Submit registers a video and returns the remote job id.
//   - Poll reports the job state (processing, downloading, transcribing,
//     done, error).
//   - FetchResult retrieves the finished window list; the service answers
//     202 while the job is still running.
//   - Health checks service reachability for preflight.
//
// Failures are tagged with the services error taxonomy so callers can
// classify them without inspecting message text.
package analysis
