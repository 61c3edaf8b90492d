package playback

import (
	"github.com/dgnsrekt/kikitori/internal/audio"
	"github.com/dgnsrekt/kikitori/internal/cache"
	"github.com/dgnsrekt/kikitori/internal/sources"
)

// State is the playback state of the controller.
type State int

const (
	StateIdle State = iota
	StatePlaying
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	default:
		return "idle"
	}
}

// Headword is one (term, reading) form of an entry.
type Headword struct {
	Term    string
	Reading string
}

// Key returns the cache key of the headword.
func (h Headword) Key() cache.Key {
	return cache.Key{Term: h.Term, Reading: h.Reading}
}

// Entry is one dictionary entry on screen. Kanji entries have no audio.
type Entry struct {
	Kanji     bool
	Headwords []Headword
}

// Result describes what a play request ended up playing.
type Result struct {
	// Audio is the resolved audio, the fallback sound, or nil.
	Audio    audio.Playable
	Source   *sources.AudioSource
	SubIndex int
	Valid    bool
	Title    string
}

// Badge is the indicator shown on a play button.
type Badge int

const (
	BadgeHidden Badge = iota
	// BadgeCross means no candidate can produce audio.
	BadgeCross
	// BadgePlus means more than one candidate may produce audio.
	BadgePlus
)

// String returns the string representation of the badge.
func (b Badge) String() string {
	switch b {
	case BadgeCross:
		return "cross"
	case BadgePlus:
		return "plus"
	default:
		return "hidden"
	}
}

// badgeFor maps an availability count to a badge. ok is false when the
// headword has no cache entry.
func badgeFor(count int, ok bool) Badge {
	switch {
	case !ok || count == 1:
		return BadgeHidden
	case count == 0:
		return BadgeCross
	default:
		return BadgePlus
	}
}

// UpdateKind tells listeners what changed.
type UpdateKind int

const (
	// UpdatePlayed follows every play request.
	UpdatePlayed UpdateKind = iota
	// UpdateCache follows discovery or resolution progress for a key.
	UpdateCache
	// UpdateState follows a change of playback state.
	UpdateState
)

// Update is pushed to the listener registered with SetOnUpdate.
type Update struct {
	Kind          UpdateKind
	EntryIndex    int
	HeadwordIndex int
	Key           cache.Key
	Title         string
	Badge         Badge
	State         State
}

// MenuItem is one row of the audio menu.
type MenuItem struct {
	Valid cache.Validity
	// Index is the candidate index, cache.NoSubIndex for a row standing in
	// for a source without known candidates.
	Index     int
	Name      string
	URL       string
	Label     string
	IsPrimary bool
}

// MenuSource groups the rows of one source.
type MenuSource struct {
	Source sources.AudioSource
	Items  []MenuItem
}

// ExportRequest is what a note exporter needs to download audio.
type ExportRequest struct {
	Sources []sources.SourceConfig
	// PreferredIndex narrows each source to one candidate when set.
	PreferredIndex *int
	EnableDefaults bool
}
