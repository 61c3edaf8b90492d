// Package playback drives audio for the entries on screen: it resolves a
// headword through the cache, plays the result or a fallback sound, runs the
// auto-play timer and exposes the data behind the audio menu and exports.
package playback
