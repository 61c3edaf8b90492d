package cache

import (
	"github.com/dgnsrekt/kikitori/internal/audio"
	"github.com/dgnsrekt/kikitori/internal/sources"
)

// Key identifies a headword. Two lookups with equal keys share every cached
// result.
type Key struct {
	Term    string
	Reading string
}

// NoSubIndex marks a primary audio chosen from a menu row that had no
// candidate of its own.
const NoSubIndex = -1

// PrimaryAudio is the user's pinned candidate for a key.
type PrimaryAudio struct {
	Index    int // source index
	SubIndex int // candidate index or NoSubIndex
}

// Validity is the known state of one candidate.
type Validity int

const (
	ValidityUnknown Validity = iota
	ValidityValid
	ValidityInvalid
)

// String returns the string representation of the validity.
func (v Validity) String() string {
	switch v {
	case ValidityValid:
		return "valid"
	case ValidityInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ItemState is a snapshot of one candidate.
type ItemState struct {
	Info     sources.Info
	Resolved bool
	Audio    audio.Playable
}

// Validity derives the tri-state validity of the snapshot.
func (s ItemState) Validity() Validity {
	switch {
	case !s.Resolved:
		return ValidityUnknown
	case s.Audio != nil:
		return ValidityValid
	default:
		return ValidityInvalid
	}
}

// Resolved is the outcome of a successful ResolveAudio.
type Resolved struct {
	Audio    audio.Playable
	Source   sources.AudioSource
	SubIndex int
}

// Range selects which candidates of a source ResolveAudio may try.
type Range struct {
	index int
	all   bool
}

// AllCandidates tries every candidate in discovery order.
func AllCandidates() Range { return Range{all: true} }

// Candidate tries only candidate i. Out of range indexes select nothing.
func Candidate(i int) Range { return Range{index: i} }

// bounds clamps the range to a list of n candidates.
func (r Range) bounds(n int) (start, end int) {
	if r.all {
		return 0, n
	}
	start = max(0, min(n, r.index))
	end = max(0, min(n, r.index+1))
	return start, end
}

// Stats counts work done by a Resolution.
type Stats struct {
	Entries          int
	DiscoveryCalls   int64
	ResolutionCalls  int64
	DiscoveryHits    int64
	ResolutionHits   int64
	ResolvedAudio    int64
	FailedResolution int64
}
