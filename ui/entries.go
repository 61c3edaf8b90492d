package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgnsrekt/kikitori/internal/playback"
)

const kanjiPrefix = "kanji:"

// ParseEntries reads a word list. Each non-empty line that does not start
// with '#' is one entry. Headwords of an entry are separated by ';' and
// each headword is a term optionally followed by a tab or spaces and its
// reading. Lines starting with "kanji:" are kanji entries; they are shown
// but never played.
func ParseEntries(r io.Reader) ([]playback.Entry, error) {
	var entries []playback.Entry
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if rest, ok := strings.CutPrefix(text, kanjiPrefix); ok {
			rest = strings.TrimSpace(rest)
			if rest == "" {
				return nil, fmt.Errorf("line %d: empty kanji entry", line)
			}
			entries = append(entries, playback.Entry{
				Kanji:     true,
				Headwords: []playback.Headword{{Term: rest}},
			})
			continue
		}

		var entry playback.Entry
		for _, part := range strings.Split(text, ";") {
			hw, err := parseHeadword(part)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			entry.Headwords = append(entry.Headwords, hw)
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("unable to read word list: %w", err)
	}
	return entries, nil
}

func parseHeadword(s string) (playback.Headword, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		return playback.Headword{Term: fields[0], Reading: fields[0]}, nil
	case 2:
		return playback.Headword{Term: fields[0], Reading: fields[1]}, nil
	case 0:
		return playback.Headword{}, fmt.Errorf("empty headword")
	default:
		return playback.Headword{}, fmt.Errorf("headword %q has more than a term and a reading", strings.TrimSpace(s))
	}
}

// LoadEntries reads a word list from path, or from stdin when path is "-".
func LoadEntries(path string) ([]playback.Entry, error) {
	if path == "" || path == "-" {
		return ParseEntries(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open word list: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return ParseEntries(f)
}
