// Package sources describes the configured pronunciation audio sources, the
// language they are queried for, and the unresolved info descriptors that
// discovery produces for a term.
package sources
