// Package discovery finds pronunciation audio for a term. Each source type
// has a handler that turns (term, reading, language) into a list of
// unresolved infos; the package also implements the export path that
// downloads the first working audio file across sources.
package discovery
