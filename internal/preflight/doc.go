// Package preflight provides readiness checks for the directories and
// external services Bleep depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs the outcome so a
//     misconfigured install fails loudly instead of silently queueing
//     videos that can never be analyzed.
//   - Status surfaces (CLI and HTTP) use LocalChecks, which skips
//     network probes; analysis reachability already shows up in the
//     engine's phase health.
//
// Optional checks report their state but never gate startup.
package preflight
