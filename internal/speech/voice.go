package speech

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/go-audio/audio"
)

var (
	// ErrEmptyText is returned when asked to synthesize nothing.
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrTextTooLong is returned for text over MaxTextSize bytes.
	ErrTextTooLong = errors.New("text too long")
)

// MaxTextSize bounds a single synthesis request.
const MaxTextSize = 5000

// Voice synthesizes text into PCM.
type Voice interface {
	// ID is the identifier stored in a source's voice option, e.g. "gtts:ja".
	ID() string
	// Name is a human readable label.
	Name() string
	// Lang is the ISO 639-1 code the voice speaks.
	Lang() string
	Synthesize(ctx context.Context, text string) (*audio.IntBuffer, error)
}

// Registry maps voice identifiers to voices.
type Registry struct {
	mu     sync.RWMutex
	voices map[string]Voice
}

// NewRegistry returns a registry holding voices.
func NewRegistry(voices ...Voice) *Registry {
	r := &Registry{voices: make(map[string]Voice)}
	for _, v := range voices {
		r.Register(v)
	}
	return r
}

// Register adds or replaces a voice.
func (r *Registry) Register(v Voice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voices[v.ID()] = v
}

// Lookup finds a voice by identifier. Matching is case insensitive.
func (r *Registry) Lookup(id string) (Voice, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.voices[id]; ok {
		return v, true
	}
	for key, v := range r.voices {
		if strings.EqualFold(key, id) {
			return v, true
		}
	}
	return nil, false
}

// Voices returns all voices sorted by identifier.
func (r *Registry) Voices() []Voice {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Voice, 0, len(r.voices))
	for _, v := range r.voices {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func checkText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if len(text) > MaxTextSize {
		return ErrTextTooLong
	}
	return nil
}
