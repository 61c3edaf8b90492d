package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/kikitori/internal/audio"
	"github.com/dgnsrekt/kikitori/internal/cache"
	"github.com/dgnsrekt/kikitori/internal/discovery"
	"github.com/dgnsrekt/kikitori/internal/options"
	"github.com/dgnsrekt/kikitori/internal/sources"
	"github.com/google/uuid"
)

const titleNotFound = "Could not find audio"

// Config holds the collaborators of a Controller.
type Config struct {
	Provider cache.InfoProvider
	Creator  cache.AudioCreator
	// Output plays the fallback sounds.
	Output audio.Output
	Logger *log.Logger
}

// Controller plays audio for the entries currently on screen.
type Controller struct {
	cache  *cache.Resolution
	output audio.Output
	log    *log.Logger
	// ctx bounds auto-play and is cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	opts      options.Options
	sources   []sources.AudioSource
	volume    float64
	autoPlay  bool
	entries   []Entry
	token     string
	visible   bool
	current   audio.Playable
	timer     *time.Timer
	timerGen  uint64
	fallbacks map[audio.FallbackSound]audio.Playable
	onUpdate  func(Update)
}

// New creates a Controller and applies opts.
func New(config Config, opts options.Options) *Controller {
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		ctx:       ctx,
		cancel:    cancel,
		output:    config.Output,
		log:       logger.WithPrefix("playback"),
		token:     uuid.NewString(),
		visible:   true,
		fallbacks: make(map[audio.FallbackSound]audio.Playable),
	}
	c.cache = cache.NewResolution(config.Provider, config.Creator, cache.Config{
		Language:      sources.LookupLanguage(opts.Language),
		CacheFailures: opts.Audio.CacheFailures,
		Logger:        logger,
	})
	c.cache.SetOnUpdate(c.cacheUpdated)
	c.ApplyOptions(opts)
	return c
}

// Close cancels a pending or running auto-play and stops the current
// audio. Calls made with their own context keep working.
func (c *Controller) Close() {
	c.cancel()
	c.ClearAutoPlayTimer()
	c.Stop()
}

// Cache returns the resolution cache.
func (c *Controller) Cache() *cache.Resolution {
	return c.cache
}

// SetOnUpdate registers the listener for play, cache and state updates.
// fn is called without the controller lock held.
func (c *Controller) SetOnUpdate(fn func(Update)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = fn
}

func (c *Controller) emit(u Update) {
	c.mu.Lock()
	fn := c.onUpdate
	c.mu.Unlock()
	if fn != nil {
		fn(u)
	}
}

func (c *Controller) cacheUpdated(key cache.Key) {
	count, ok := c.cache.AvailabilityCount(key)
	c.emit(Update{Kind: UpdateCache, Key: key, Badge: badgeFor(count, ok)})
}

// ApplyOptions rebuilds the source list, clears the cache and takes over
// volume, fallback and auto-play settings.
func (c *Controller) ApplyOptions(opts options.Options) {
	c.mu.Lock()
	c.opts = opts
	c.sources = sources.Build(opts.Audio.Sources, opts.Audio.EnableDefaultSources, opts.Language)
	c.volume = opts.Audio.PlaybackVolume()
	c.autoPlay = opts.Audio.AutoPlayEnabled()
	count := len(c.sources)
	c.mu.Unlock()

	c.cache.SetLanguage(sources.LookupLanguage(opts.Language))
	c.cache.SetCacheFailures(opts.Audio.CacheFailures)
	c.cache.Clear()
	c.log.Debug("options applied", "sources", count, "volume", opts.Audio.PlaybackVolume(), "autoPlay", opts.Audio.AutoPlayEnabled())
}

// Options returns the options last applied.
func (c *Controller) Options() options.Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// Sources returns the current source list.
func (c *Controller) Sources() []sources.AudioSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sources.AudioSource(nil), c.sources...)
}

// State reports whether audio is playing.
func (c *Controller) State() State {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	if current == nil {
		return StateIdle
	}
	if p, ok := current.(interface{ IsPlaying() bool }); ok && !p.IsPlaying() {
		return StateIdle
	}
	return StatePlaying
}

// SetContent replaces the entries on screen. The cache is cleared and a
// pending auto-play is cancelled.
func (c *Controller) SetContent(entries []Entry) {
	c.mu.Lock()
	c.entries = append([]Entry(nil), entries...)
	c.token = uuid.NewString()
	c.clearTimerLocked()
	c.mu.Unlock()

	c.cache.Clear()
}

// ClearContent removes every entry.
func (c *Controller) ClearContent() {
	c.SetContent(nil)
}

// ContentUpdated schedules auto-play of the first headword once the
// entries are rendered.
func (c *Controller) ContentUpdated() {
	c.mu.Lock()
	if !c.autoPlay || !c.visible {
		c.mu.Unlock()
		return
	}
	c.clearTimerLocked()
	if len(c.entries) == 0 || c.entries[0].Kanji {
		c.mu.Unlock()
		return
	}

	delay := c.opts.Audio.AutoPlayDelay
	if delay > 0 {
		c.timerGen++
		gen := c.timerGen
		c.timer = time.AfterFunc(delay, func() { c.fireAutoPlay(gen) })
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	go c.autoPlayNow()
}

func (c *Controller) fireAutoPlay(gen uint64) {
	c.mu.Lock()
	if c.timer == nil || c.timerGen != gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.mu.Unlock()
	c.autoPlayNow()
}

func (c *Controller) autoPlayNow() {
	if _, err := c.Play(c.ctx, 0, 0, ""); err != nil {
		c.log.Debug("auto play failed", "err", err)
	}
}

// SetFrameVisible records visibility. Hiding cancels a pending auto-play
// but leaves audio that already started alone.
func (c *Controller) SetFrameVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = visible
	if !visible {
		c.clearTimerLocked()
	}
}

// ClearAutoPlayTimer cancels a pending auto-play.
func (c *Controller) ClearAutoPlayTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearTimerLocked()
}

// AutoPlayPending reports whether an auto-play is scheduled.
func (c *Controller) AutoPlayPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

func (c *Controller) clearTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

// Stop pauses the current audio.
func (c *Controller) Stop() {
	c.mu.Lock()
	prev := c.takeCurrentLocked()
	c.mu.Unlock()
	if prev != nil {
		prev.Pause()
		c.emit(Update{Kind: UpdateState, State: StateIdle})
	}
}

// takeCurrentLocked detaches the current audio. The caller pauses it after
// releasing c.mu; Playable methods may block on their own locks.
func (c *Controller) takeCurrentLocked() audio.Playable {
	prev := c.current
	c.current = nil
	return prev
}

// Play plays the first audio any source of sourceType yields for the
// headword. An empty sourceType tries every source.
func (c *Controller) Play(ctx context.Context, entryIndex, headwordIndex int, sourceType sources.SourceType) (Result, error) {
	list := sources.FilterByType(c.Sources(), sourceType)
	return c.play(ctx, entryIndex, headwordIndex, list, cache.AllCandidates())
}

// PlayFromSource plays one source, narrowed to candidate subIndex unless it
// is cache.NoSubIndex. A valid result is pinned as the primary audio when
// the content did not change meanwhile.
func (c *Controller) PlayFromSource(ctx context.Context, entryIndex, headwordIndex, sourceIndex, subIndex int) (Result, error) {
	c.mu.Lock()
	if sourceIndex < 0 || sourceIndex >= len(c.sources) {
		c.mu.Unlock()
		return Result{}, nil
	}
	source := c.sources[sourceIndex]
	token := c.token
	c.mu.Unlock()

	rng := cache.AllCandidates()
	if subIndex != cache.NoSubIndex {
		rng = cache.Candidate(subIndex)
	}
	res, err := c.play(ctx, entryIndex, headwordIndex, []sources.AudioSource{source}, rng)
	if err != nil || !res.Valid {
		return res, err
	}

	c.mu.Lock()
	hw, ok := c.headwordLocked(entryIndex, headwordIndex)
	same := token == c.token
	c.mu.Unlock()
	if ok && same {
		c.cache.SetPrimary(hw.Key(), source, subIndex, false)
	}
	return res, nil
}

func (c *Controller) play(ctx context.Context, entryIndex, headwordIndex int, list []sources.AudioSource, rng cache.Range) (Result, error) {
	c.mu.Lock()
	prev := c.takeCurrentLocked()
	c.clearTimerLocked()
	hw, ok := c.headwordLocked(entryIndex, headwordIndex)
	c.mu.Unlock()
	if prev != nil {
		prev.Pause()
	}
	if !ok {
		return Result{}, nil
	}

	key := hw.Key()
	c.cache.GetOrCreateEntry(key)

	var res Result
	for i, source := range list {
		resolved, err := c.cache.ResolveAudio(ctx, key, source, rng)
		if err != nil {
			return Result{}, err
		}
		if resolved == nil {
			continue
		}
		src := resolved.Source
		res = Result{
			Audio:    resolved.Audio,
			Source:   &src,
			SubIndex: resolved.SubIndex,
			Valid:    true,
			Title:    fmt.Sprintf("From source %d: %s", i+1, source.Name),
		}
		break
	}
	if !res.Valid {
		res = Result{Audio: c.fallback(), Title: titleNotFound}
	}

	count, known := c.cache.AvailabilityCount(key)
	badge := badgeFor(count, known)

	c.mu.Lock()
	prev = c.takeCurrentLocked()
	volume := c.volume
	if res.Audio != nil {
		c.current = res.Audio
	}
	c.mu.Unlock()
	if prev != nil {
		prev.Pause()
	}

	if res.Audio != nil {
		res.Audio.SetCurrentTime(0)
		res.Audio.SetVolume(volume)
		if err := res.Audio.Play(); err != nil {
			c.log.Debug("play failed", "term", hw.Term, "err", err)
		}

		c.mu.Lock()
		superseded := c.current != res.Audio
		c.mu.Unlock()
		if superseded {
			res.Audio.Pause()
		}
	}

	c.log.Info("play", "term", hw.Term, "reading", hw.Reading, "valid", res.Valid, "title", res.Title)
	c.emit(Update{
		Kind:          UpdatePlayed,
		EntryIndex:    entryIndex,
		HeadwordIndex: headwordIndex,
		Key:           key,
		Title:         res.Title,
		Badge:         badge,
		State:         c.State(),
	})
	return res, nil
}

func (c *Controller) headwordLocked(entryIndex, headwordIndex int) (Headword, bool) {
	if entryIndex < 0 || entryIndex >= len(c.entries) {
		return Headword{}, false
	}
	e := c.entries[entryIndex]
	if e.Kanji || headwordIndex < 0 || headwordIndex >= len(e.Headwords) {
		return Headword{}, false
	}
	return e.Headwords[headwordIndex], true
}

func (c *Controller) fallback() audio.Playable {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.output == nil {
		return nil
	}
	kind := c.opts.Audio.FallbackSound
	if p, ok := c.fallbacks[kind]; ok {
		return p
	}
	p := audio.NewFallback(c.output, kind)
	c.fallbacks[kind] = p
	return p
}

// SetPrimary toggles the primary audio of a headword from the menu and
// returns the new primary.
func (c *Controller) SetPrimary(entryIndex, headwordIndex, sourceIndex, subIndex int) *cache.PrimaryAudio {
	c.mu.Lock()
	hw, ok := c.headwordLocked(entryIndex, headwordIndex)
	valid := sourceIndex >= 0 && sourceIndex < len(c.sources)
	var source sources.AudioSource
	if valid {
		source = c.sources[sourceIndex]
	}
	c.mu.Unlock()
	if !ok || !valid {
		return nil
	}

	key := hw.Key()
	primary := c.cache.SetPrimary(key, source, subIndex, true)
	c.emit(Update{
		Kind:          UpdateCache,
		EntryIndex:    entryIndex,
		HeadwordIndex: headwordIndex,
		Key:           key,
		Badge:         badgeFor(c.cache.AvailabilityCount(key)),
	})
	return primary
}

// Headword returns the headword at the given position.
func (c *Controller) Headword(entryIndex, headwordIndex int) (Headword, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.headwordLocked(entryIndex, headwordIndex)
}

// Badge returns the current badge of a headword.
func (c *Controller) Badge(entryIndex, headwordIndex int) Badge {
	hw, ok := c.Headword(entryIndex, headwordIndex)
	if !ok {
		return BadgeHidden
	}
	return badgeFor(c.cache.AvailabilityCount(hw.Key()))
}

// ExportDetails returns the sources an exporter should download from. A
// pinned primary narrows the request to that source and candidate;
// otherwise every source from the options is used.
func (c *Controller) ExportDetails(term, reading string) ExportRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := ExportRequest{EnableDefaults: c.opts.Audio.EnableDefaultSources}
	primary := c.cache.Primary(cache.Key{Term: term, Reading: reading})
	if primary != nil && primary.Index >= 0 && primary.Index < len(c.sources) {
		req.Sources = []sources.SourceConfig{c.sources[primary.Index].Config()}
		if primary.SubIndex != cache.NoSubIndex {
			idx := primary.SubIndex
			req.PreferredIndex = &idx
		}
		return req
	}
	for _, s := range c.sources {
		if s.IsInOptions {
			req.Sources = append(req.Sources, s.Config())
		}
	}
	return req
}

// DownloadRequest turns the export details of a headword into a download
// request using the current language and idle timeout.
func (c *Controller) DownloadRequest(term, reading string) discovery.DownloadRequest {
	details := c.ExportDetails(term, reading)
	opts := c.Options()
	return discovery.DownloadRequest{
		Sources:        details.Sources,
		PreferredIndex: details.PreferredIndex,
		Term:           term,
		Reading:        reading,
		IdleTimeout:    opts.Audio.IdleTimeout,
		Language:       opts.Language,
		EnableDefaults: details.EnableDefaults,
	}
}
