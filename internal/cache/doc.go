// Package cache memoizes pronunciation audio for a session. Resolution keeps
// one discovery per (term, reading, source) and one resolution per candidate,
// along with the user's primary audio choice. BodyCache is a byte bounded LRU
// of downloaded response bodies.
package cache
