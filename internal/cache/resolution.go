package cache

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/kikitori/internal/audio"
	"github.com/dgnsrekt/kikitori/internal/sources"
)

// InfoProvider discovers the candidates a source has for a headword.
type InfoProvider interface {
	GetInfoList(ctx context.Context, source sources.AudioSource, term, reading string, lang sources.LanguageSummary) ([]sources.Info, error)
}

// AudioCreator turns one candidate into playable audio.
type AudioCreator interface {
	Create(ctx context.Context, info sources.Info, source sources.AudioSource) (audio.Playable, error)
}

// Config holds configuration for a Resolution.
type Config struct {
	Language sources.LanguageSummary
	// CacheFailures keeps failed discoveries and candidates that did not
	// resolve for the rest of the session. When false they are retried on
	// the next access.
	CacheFailures bool
	Logger        *log.Logger
}

// DefaultConfig returns the default configuration for Japanese.
func DefaultConfig() Config {
	return Config{
		Language:      sources.LookupLanguage("ja"),
		CacheFailures: true,
	}
}

type item struct {
	info     sources.Info
	audio    *future[audio.Playable]
	resolved bool
	playable audio.Playable
}

type sourceEntry struct {
	infoList *future[[]*item]
	failed   bool
}

type entry struct {
	sources map[int]*sourceEntry
	primary *PrimaryAudio
}

// Resolution is the per-session memo of discovery and resolution results.
// Every future is stored under mu before anyone waits on it, so concurrent
// callers for the same key and source share a single operation. The work
// itself runs detached from the caller's context; a caller that gives up
// only stops waiting.
type Resolution struct {
	provider InfoProvider
	creator  AudioCreator
	logger   *log.Logger

	mu            sync.Mutex
	entries       map[Key]*entry
	lang          sources.LanguageSummary
	cacheFailures bool
	onUpdate      func(Key)
	stats         Stats
}

// NewResolution creates an empty cache.
func NewResolution(provider InfoProvider, creator AudioCreator, config Config) *Resolution {
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Resolution{
		provider:      provider,
		creator:       creator,
		logger:        logger.WithPrefix("cache"),
		entries:       make(map[Key]*entry),
		lang:          config.Language,
		cacheFailures: config.CacheFailures,
	}
}

// SetLanguage changes the language passed to discovery. Existing entries are
// kept; callers clear the cache when the language changes.
func (r *Resolution) SetLanguage(lang sources.LanguageSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lang = lang
}

// SetCacheFailures toggles failure caching.
func (r *Resolution) SetCacheFailures(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheFailures = enabled
}

// SetOnUpdate registers fn to be called, without locks held, whenever new
// discovery or resolution results land for a key.
func (r *Resolution) SetOnUpdate(fn func(Key)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onUpdate = fn
}

func (r *Resolution) notify(key Key) {
	r.mu.Lock()
	fn := r.onUpdate
	r.mu.Unlock()
	if fn != nil {
		fn(key)
	}
}

// GetOrCreateEntry makes sure an entry for key exists.
func (r *Resolution) GetOrCreateEntry(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entryLocked(key)
}

func (r *Resolution) entryLocked(key Key) *entry {
	e, ok := r.entries[key]
	if !ok {
		e = &entry{sources: make(map[int]*sourceEntry)}
		r.entries[key] = e
	}
	return e
}

// ResolveInfoList returns the candidates of source for key, running
// discovery at most once. Discovery errors are logged and yield an empty
// list. The only error returned is ctx's.
func (r *Resolution) ResolveInfoList(ctx context.Context, key Key, source sources.AudioSource) ([]ItemState, error) {
	items, err := r.infoList(ctx, key, source)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return snapshot(items), nil
}

func (r *Resolution) infoList(ctx context.Context, key Key, source sources.AudioSource) ([]*item, error) {
	r.mu.Lock()
	e := r.entryLocked(key)
	se, ok := e.sources[source.Index]
	if ok && se.failed && !r.cacheFailures {
		ok = false
	}
	if ok {
		r.stats.DiscoveryHits++
		r.mu.Unlock()
		return se.infoList.wait(ctx)
	}

	se = &sourceEntry{infoList: newFuture[[]*item]()}
	e.sources[source.Index] = se
	r.stats.DiscoveryCalls++
	lang := r.lang
	r.mu.Unlock()

	go r.discover(context.WithoutCancel(ctx), key, source, lang, se)
	return se.infoList.wait(ctx)
}

func (r *Resolution) discover(ctx context.Context, key Key, source sources.AudioSource, lang sources.LanguageSummary, se *sourceEntry) {
	infos, err := r.provider.GetInfoList(ctx, source, key.Term, key.Reading, lang)
	if err != nil {
		r.logger.Warn("discovery failed", "source", source.Label(), "term", key.Term, "reading", key.Reading, "err", err)
		infos = nil
	}

	items := make([]*item, len(infos))
	for i, info := range infos {
		items[i] = &item{info: info}
	}

	r.mu.Lock()
	se.failed = err != nil
	r.mu.Unlock()

	se.infoList.set(items, nil)
	r.logger.Debug("discovered", "source", source.Label(), "term", key.Term, "candidates", len(items))
	r.notify(key)
}

// ResolveAudio returns the first candidate of source within rng that
// resolves to audio, resolving each candidate at most once. It returns
// nil, nil when none does.
func (r *Resolution) ResolveAudio(ctx context.Context, key Key, source sources.AudioSource, rng Range) (*Resolved, error) {
	items, err := r.infoList(ctx, key, source)
	if err != nil {
		return nil, err
	}

	start, end := rng.bounds(len(items))
	for i := start; i < end; i++ {
		it := items[i]

		r.mu.Lock()
		if it.resolved && it.playable == nil && !r.cacheFailures {
			it.resolved = false
			it.audio = nil
		}
		if it.resolved {
			p := it.playable
			r.stats.ResolutionHits++
			r.mu.Unlock()
			if p != nil {
				return &Resolved{Audio: p, Source: source, SubIndex: i}, nil
			}
			continue
		}
		f := it.audio
		if f == nil {
			f = newFuture[audio.Playable]()
			it.audio = f
			r.stats.ResolutionCalls++
			go r.resolve(context.WithoutCancel(ctx), key, source, it, f)
		} else {
			r.stats.ResolutionHits++
		}
		r.mu.Unlock()

		p, err := f.wait(ctx)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return &Resolved{Audio: p, Source: source, SubIndex: i}, nil
		}
	}
	return nil, nil
}

func (r *Resolution) resolve(ctx context.Context, key Key, source sources.AudioSource, it *item, f *future[audio.Playable]) {
	p, err := r.creator.Create(ctx, it.info, source)
	if err != nil {
		r.logger.Debug("candidate failed", "source", source.Label(), "term", key.Term, "err", err)
		p = nil
	}

	r.mu.Lock()
	it.resolved = true
	it.playable = p
	if p == nil {
		r.stats.FailedResolution++
	} else {
		r.stats.ResolvedAudio++
	}
	r.mu.Unlock()

	f.set(p, nil)
	r.notify(key)
}

// SetPrimary pins source/subIndex as the primary audio of key and returns
// the new primary. With allowToggleOff, pinning the current primary again
// clears it. Sources that cannot be downloaded are ignored.
func (r *Resolution) SetPrimary(key Key, source sources.AudioSource, subIndex int, allowToggleOff bool) *PrimaryAudio {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entryLocked(key)
	if !source.Downloadable {
		return copyPrimary(e.primary)
	}

	cur := e.primary
	if !allowToggleOff || cur == nil || cur.Index != source.Index || cur.SubIndex != subIndex {
		e.primary = &PrimaryAudio{Index: source.Index, SubIndex: subIndex}
	} else {
		e.primary = nil
	}
	return copyPrimary(e.primary)
}

// Primary returns the pinned audio for key, or nil.
func (r *Resolution) Primary(key Key) *PrimaryAudio {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return nil
	}
	return copyPrimary(e.primary)
}

func copyPrimary(p *PrimaryAudio) *PrimaryAudio {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// AvailabilityCount counts candidates of discovered sources that are either
// unresolved or resolved to audio. ok is false when key has no entry.
func (r *Resolution) AvailabilityCount(key Key) (count int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return 0, false
	}
	for _, se := range e.sources {
		if !se.infoList.ready() {
			continue
		}
		for _, it := range se.infoList.value {
			if !it.resolved || it.playable != nil {
				count++
			}
		}
	}
	return count, true
}

// SourceItems returns the candidates of a discovered source. discovered is
// false while discovery has not run or is still in flight.
func (r *Resolution) SourceItems(key Key, sourceIndex int) (items []ItemState, discovered bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	se, ok := e.sources[sourceIndex]
	if !ok || !se.infoList.ready() {
		return nil, false
	}
	return snapshot(se.infoList.value), true
}

func snapshot(items []*item) []ItemState {
	out := make([]ItemState, len(items))
	for i, it := range items {
		out[i] = ItemState{Info: it.info, Resolved: it.resolved, Audio: it.playable}
	}
	return out
}

// Clear drops every entry. Work still in flight completes into the dropped
// entries and is not visible afterwards.
func (r *Resolution) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[Key]*entry)
}

// Stats returns counters for the session.
func (r *Resolution) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	s.Entries = len(r.entries)
	return s
}
