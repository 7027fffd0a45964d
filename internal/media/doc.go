// Package media normalizes video identity.
//
// The same video can be referenced through many URL forms (watch pages,
// short links, shorts, embeds). The rest of the system keys everything on
// one canonical watch URL plus the extracted video id, so stored schedules
// can be checked against whatever form the viewer is currently on.
package media
