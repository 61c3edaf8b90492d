package playback

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/kikitori/internal/audio"
	"github.com/dgnsrekt/kikitori/internal/cache"
	"github.com/dgnsrekt/kikitori/internal/options"
	"github.com/dgnsrekt/kikitori/internal/sources"
	"github.com/dgnsrekt/kikitori/internal/speech"
	goaudio "github.com/go-audio/audio"
)

type fakeProvider struct {
	mu    sync.Mutex
	infos map[sources.SourceType][]sources.Info
	errs  map[sources.SourceType]error
	calls map[sources.SourceType]int
	// gate, when set, holds every discovery until it is closed.
	gate chan struct{}
}

func (p *fakeProvider) GetInfoList(_ context.Context, source sources.AudioSource, _, _ string, _ sources.LanguageSummary) ([]sources.Info, error) {
	p.mu.Lock()
	if p.calls == nil {
		p.calls = make(map[sources.SourceType]int)
	}
	p.calls[source.Type]++
	gate := p.gate
	p.mu.Unlock()

	if gate != nil {
		<-gate
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.errs[source.Type]; err != nil {
		return nil, err
	}
	return p.infos[source.Type], nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		n += c
	}
	return n
}

// fakeCreator turns URLs listed in ok into clips on dev, and speech into
// clips of voice when one is set.
type fakeCreator struct {
	dev   *audio.MockDevice
	ok    map[string]bool
	voice speech.Voice
}

func (f *fakeCreator) Create(_ context.Context, info sources.Info, _ sources.AudioSource) (audio.Playable, error) {
	switch info := info.(type) {
	case sources.URLInfo:
		if f.ok[info.URL] {
			return audio.NewClip(f.dev, make([]byte, 4*441)), nil
		}
	case sources.TTSInfo:
		if f.voice != nil {
			return audio.NewSpeechClip(context.Background(), f.dev, f.voice, info.Text), nil
		}
	}
	return nil, errors.New("no audio")
}

type fixture struct {
	dev      *audio.MockDevice
	provider *fakeProvider
	creator  *fakeCreator
	ctrl     *Controller
}

func newFixture(t *testing.T, infos map[sources.SourceType][]sources.Info, ok []string, configure func(*options.Options)) *fixture {
	t.Helper()
	dev := audio.NewMockDevice()
	provider := &fakeProvider{infos: infos}
	creator := &fakeCreator{dev: dev, ok: make(map[string]bool)}
	for _, u := range ok {
		creator.ok[u] = true
	}

	opts := options.Default()
	opts.Audio.Sources = []sources.SourceConfig{
		{Type: sources.TypeJpod101},
		{Type: sources.TypeJisho},
	}
	opts.Audio.EnableDefaultSources = false
	if configure != nil {
		configure(&opts)
	}

	ctrl := New(Config{
		Provider: provider,
		Creator:  creator,
		Output:   dev,
		Logger:   log.New(io.Discard),
	}, opts)
	ctrl.SetContent([]Entry{
		{Headwords: []Headword{{Term: "食べる", Reading: "たべる"}}},
		{Kanji: true, Headwords: []Headword{{Term: "食", Reading: "しょく"}}},
	})
	return &fixture{dev: dev, provider: provider, creator: creator, ctrl: ctrl}
}

func taberuInfos() map[sources.SourceType][]sources.Info {
	return map[sources.SourceType][]sources.Info{
		sources.TypeJpod101: {sources.URLInfo{URL: "jpod/taberu"}},
		sources.TypeJisho: {
			sources.URLInfo{URL: "jisho/taberu-1"},
			sources.URLInfo{URL: "jisho/taberu-2"},
		},
	}
}

func TestPlayFallsThroughSources(t *testing.T) {
	f := newFixture(t, taberuInfos(), []string{"jisho/taberu-1", "jisho/taberu-2"}, nil)

	var updates []Update
	var mu sync.Mutex
	f.ctrl.SetOnUpdate(func(u Update) {
		mu.Lock()
		defer mu.Unlock()
		if u.Kind == UpdatePlayed {
			updates = append(updates, u)
		}
	})

	res, err := f.ctrl.Play(context.Background(), 0, 0, "")
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if !res.Valid {
		t.Fatal("expected valid result")
	}
	if res.Source == nil || res.Source.Type != sources.TypeJisho || res.SubIndex != 0 {
		t.Errorf("source = %+v, subIndex = %d", res.Source, res.SubIndex)
	}
	if res.Title != "From source 2: Jisho.org" {
		t.Errorf("title = %q", res.Title)
	}
	if got := len(f.dev.Playing()); got != 1 {
		t.Errorf("expected 1 playing stream, got %d", got)
	}
	if f.ctrl.State() != StatePlaying {
		t.Errorf("state = %v, want playing", f.ctrl.State())
	}

	mu.Lock()
	defer mu.Unlock()
	if len(updates) != 1 {
		t.Fatalf("expected 1 play update, got %d", len(updates))
	}
	// jpod101 failed, jisho has one valid and one unresolved candidate.
	if updates[0].Badge != BadgePlus {
		t.Errorf("badge = %v, want plus", updates[0].Badge)
	}
}

func TestPlayReusesCache(t *testing.T) {
	f := newFixture(t, taberuInfos(), []string{"jisho/taberu-1"}, nil)
	ctx := context.Background()

	first, err := f.ctrl.Play(ctx, 0, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.ctrl.Play(ctx, 0, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if first.Audio != second.Audio {
		t.Error("expected the cached audio to be reused")
	}

	f.provider.mu.Lock()
	defer f.provider.mu.Unlock()
	for typ, n := range f.provider.calls {
		if n != 1 {
			t.Errorf("%s discovered %d times", typ, n)
		}
	}
	if len(f.dev.Playing()) != 1 {
		t.Errorf("expected previous playback to be stopped, %d playing", len(f.dev.Playing()))
	}
}

func TestPlayFallback(t *testing.T) {
	tests := []struct {
		name     string
		fallback audio.FallbackSound
		audible  bool
	}{
		{"click", audio.FallbackClick, true},
		{"bloop", audio.FallbackBloop, true},
		{"none", audio.FallbackNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, taberuInfos(), nil, func(o *options.Options) {
				o.Audio.FallbackSound = tt.fallback
			})

			var badge Badge
			f.ctrl.SetOnUpdate(func(u Update) {
				if u.Kind == UpdatePlayed {
					badge = u.Badge
				}
			})

			res, err := f.ctrl.Play(context.Background(), 0, 0, "")
			if err != nil {
				t.Fatal(err)
			}
			if res.Valid {
				t.Error("expected invalid result")
			}
			if res.Title != "Could not find audio" {
				t.Errorf("title = %q", res.Title)
			}
			if (res.Audio != nil) != tt.audible {
				t.Errorf("audio = %v, audible = %v", res.Audio, tt.audible)
			}
			if got := len(f.dev.Playing()) == 1; got != tt.audible {
				t.Errorf("playing = %v, want %v", got, tt.audible)
			}
			if badge != BadgeCross {
				t.Errorf("badge = %v, want cross", badge)
			}
		})
	}
}

func TestPlayInvalidTarget(t *testing.T) {
	f := newFixture(t, taberuInfos(), []string{"jisho/taberu-1"}, nil)
	ctx := context.Background()

	tests := []struct {
		name            string
		entry, headword int
	}{
		{"kanji entry", 1, 0},
		{"entry out of range", 5, 0},
		{"headword out of range", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.ctrl.Play(ctx, tt.entry, tt.headword, "")
			if err != nil {
				t.Fatal(err)
			}
			if res.Valid || res.Audio != nil {
				t.Errorf("expected empty result, got %+v", res)
			}
		})
	}
	if len(f.dev.Streams()) != 0 {
		t.Error("nothing should have played")
	}
}

func TestPlaySourceType(t *testing.T) {
	f := newFixture(t, taberuInfos(), []string{"jpod/taberu", "jisho/taberu-1"}, nil)

	res, err := f.ctrl.Play(context.Background(), 0, 0, sources.TypeJisho)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Valid || res.Source.Type != sources.TypeJisho {
		t.Errorf("expected jisho, got %+v", res.Source)
	}
	if res.Title != "From source 1: Jisho.org" {
		t.Errorf("title = %q", res.Title)
	}
}

func TestPlayAppliesVolume(t *testing.T) {
	f := newFixture(t, taberuInfos(), []string{"jisho/taberu-1"}, func(o *options.Options) {
		o.Audio.Volume = 50
	})

	if _, err := f.ctrl.Play(context.Background(), 0, 0, ""); err != nil {
		t.Fatal(err)
	}
	playing := f.dev.Playing()
	if len(playing) != 1 {
		t.Fatalf("expected 1 playing stream, got %d", len(playing))
	}
	if v := playing[0].Volume(); v != 0.5 {
		t.Errorf("volume = %v, want 0.5", v)
	}
	if off := playing[0].Offset(); off != 0 {
		t.Errorf("offset = %d, want 0", off)
	}
}

func TestVolumeChangeAffectsNextPlayOnly(t *testing.T) {
	f := newFixture(t, taberuInfos(), []string{"jisho/taberu-1"}, func(o *options.Options) {
		o.Audio.Volume = 50
	})
	ctx := context.Background()

	if _, err := f.ctrl.Play(ctx, 0, 0, ""); err != nil {
		t.Fatal(err)
	}
	opts := f.ctrl.Options()
	opts.Audio.Volume = 80
	f.ctrl.ApplyOptions(opts)

	first := f.dev.Streams()
	if len(first) != 1 {
		t.Fatalf("expected 1 stream, got %d", len(first))
	}
	if v := first[0].Volume(); v != 0.5 {
		t.Errorf("volume of audio in progress = %v, want 0.5", v)
	}

	if _, err := f.ctrl.Play(ctx, 0, 0, ""); err != nil {
		t.Fatal(err)
	}
	streams := f.dev.Streams()
	if len(streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(streams))
	}
	if v := streams[0].Volume(); v != 0.5 {
		t.Errorf("first play volume = %v, want 0.5", v)
	}
	if v := streams[1].Volume(); v != 0.8 {
		t.Errorf("second play volume = %v, want 0.8", v)
	}
}

func TestPlayWithMalformedCustomJSON(t *testing.T) {
	f := newFixture(t, map[sources.SourceType][]sources.Info{
		sources.TypeJpod101: {sources.URLInfo{URL: "jpod/taberu"}},
	}, []string{"jpod/taberu"}, func(o *options.Options) {
		o.Audio.Sources = []sources.SourceConfig{
			{Type: sources.TypeJpod101},
			{Type: sources.TypeCustomJSON, URL: "https://example.com/{term}.json"},
		}
	})
	f.provider.errs = map[sources.SourceType]error{
		sources.TypeCustomJSON: errors.New("invalid custom audio list"),
	}
	ctx := context.Background()

	res, err := f.ctrl.Play(ctx, 0, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Valid || res.Source.Type != sources.TypeJpod101 {
		t.Fatalf("expected audio from jpod101, got %+v", res)
	}

	// Discovering the custom source adds no candidates.
	if err := f.ctrl.Discover(ctx, 0, 0); err != nil {
		t.Fatal(err)
	}
	menu := f.ctrl.Menu(0, 0)
	if items := menu[1].Items; len(items) != 1 || items[0].Valid != cache.ValidityInvalid {
		t.Errorf("custom json rows = %+v", items)
	}

	key := cache.Key{Term: "食べる", Reading: "たべる"}
	if count, ok := f.ctrl.Cache().AvailabilityCount(key); !ok || count != 1 {
		t.Errorf("availability = %d, %v, want 1", count, ok)
	}
	if got := f.ctrl.Badge(0, 0); got != BadgeHidden {
		t.Errorf("badge = %s, want hidden", got)
	}
	if p := f.ctrl.Cache().Primary(key); p != nil {
		t.Errorf("primary = %+v, want nil", p)
	}
}

// gatedVoice blocks in Synthesize until ctx ends.
type gatedVoice struct {
	started chan struct{}
}

func (v *gatedVoice) ID() string   { return "gated:ja" }
func (v *gatedVoice) Name() string { return "Gated" }
func (v *gatedVoice) Lang() string { return "ja" }
func (v *gatedVoice) Synthesize(ctx context.Context, _ string) (*goaudio.IntBuffer, error) {
	v.started <- struct{}{}
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestStopDuringSpeechSynthesis(t *testing.T) {
	f := newFixture(t, map[sources.SourceType][]sources.Info{
		sources.TypeJpod101: {sources.TTSInfo{Text: "たべる", Voice: "gated:ja"}},
	}, nil, nil)
	voice := &gatedVoice{started: make(chan struct{}, 1)}
	f.creator.voice = voice

	played := make(chan Result, 1)
	go func() {
		res, _ := f.ctrl.Play(context.Background(), 0, 0, "")
		played <- res
	}()
	<-voice.started

	done := make(chan [2]State, 1)
	go func() {
		before := f.ctrl.State()
		f.ctrl.Stop()
		done <- [2]State{before, f.ctrl.State()}
	}()

	select {
	case states := <-done:
		if states[0] != StatePlaying {
			t.Errorf("state during synthesis = %v, want playing", states[0])
		}
		if states[1] != StateIdle {
			t.Errorf("state after stop = %v, want idle", states[1])
		}
	case <-time.After(time.Second):
		t.Fatal("Stop or State blocked while speech was synthesizing")
	}

	select {
	case <-played:
	case <-time.After(time.Second):
		t.Fatal("Play did not return after Stop")
	}
	if n := len(f.dev.Playing()); n != 0 {
		t.Errorf("expected nothing playing, got %d streams", n)
	}
}

func TestPlayFromSourcePinsPrimary(t *testing.T) {
	f := newFixture(t, taberuInfos(), []string{"jisho/taberu-1", "jisho/taberu-2"}, nil)
	ctx := context.Background()

	res, err := f.ctrl.PlayFromSource(ctx, 0, 0, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Valid || res.SubIndex != 1 {
		t.Fatalf("expected candidate 1, got %+v", res)
	}

	key := cache.Key{Term: "食べる", Reading: "たべる"}
	primary := f.ctrl.Cache().Primary(key)
	if primary == nil || primary.Index != 1 || primary.SubIndex != 1 {
		t.Fatalf("primary = %+v", primary)
	}

	// Playing again must not toggle the primary off.
	if _, err := f.ctrl.PlayFromSource(ctx, 0, 0, 1, 1); err != nil {
		t.Fatal(err)
	}
	if f.ctrl.Cache().Primary(key) == nil {
		t.Error("primary was toggled off by playback")
	}

	details := f.ctrl.ExportDetails("食べる", "たべる")
	if len(details.Sources) != 1 || details.Sources[0].Type != sources.TypeJisho {
		t.Errorf("export sources = %+v", details.Sources)
	}
	if details.PreferredIndex == nil || *details.PreferredIndex != 1 {
		t.Errorf("preferred index = %v", details.PreferredIndex)
	}
}

func TestPlayFromSourceInvalidDoesNotPin(t *testing.T) {
	f := newFixture(t, taberuInfos(), nil, nil)

	res, err := f.ctrl.PlayFromSource(context.Background(), 0, 0, 0, cache.NoSubIndex)
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid {
		t.Error("expected invalid result")
	}
	if p := f.ctrl.Cache().Primary(cache.Key{Term: "食べる", Reading: "たべる"}); p != nil {
		t.Errorf("primary = %+v, want nil", p)
	}

	if res, _ := f.ctrl.PlayFromSource(context.Background(), 0, 0, 9, 0); res.Valid || res.Audio != nil {
		t.Errorf("out of range source should do nothing, got %+v", res)
	}
}

func TestSetPrimaryToggles(t *testing.T) {
	f := newFixture(t, taberuInfos(), nil, func(o *options.Options) {
		o.Audio.Sources = append(o.Audio.Sources, sources.SourceConfig{Type: sources.TypeTextToSpeech, Voice: "gtts:ja"})
	})

	if p := f.ctrl.SetPrimary(0, 0, 0, cache.NoSubIndex); p == nil || p.Index != 0 {
		t.Fatalf("primary = %+v", p)
	}
	if p := f.ctrl.SetPrimary(0, 0, 0, cache.NoSubIndex); p != nil {
		t.Errorf("second SetPrimary should toggle off, got %+v", p)
	}
	if p := f.ctrl.SetPrimary(0, 0, 2, 0); p != nil {
		t.Errorf("speech sources cannot be primary, got %+v", p)
	}
}

func TestExportDetailsWithoutPrimary(t *testing.T) {
	f := newFixture(t, taberuInfos(), nil, func(o *options.Options) {
		o.Audio.Sources = []sources.SourceConfig{{Type: sources.TypeCustom, URL: "https://x/{term}.mp3"}}
		o.Audio.EnableDefaultSources = true
	})

	details := f.ctrl.ExportDetails("食べる", "たべる")
	if len(details.Sources) != 1 || details.Sources[0].Type != sources.TypeCustom {
		t.Errorf("sources = %+v, want only the configured custom source", details.Sources)
	}
	if details.PreferredIndex != nil {
		t.Errorf("preferred index = %v, want nil", *details.PreferredIndex)
	}
	if !details.EnableDefaults {
		t.Error("EnableDefaults should follow the options")
	}

	req := f.ctrl.DownloadRequest("食べる", "たべる")
	if req.Term != "食べる" || req.Language != "ja" || len(req.Sources) != 1 {
		t.Errorf("download request = %+v", req)
	}
}

func TestContentChangeClearsCache(t *testing.T) {
	f := newFixture(t, taberuInfos(), []string{"jisho/taberu-1"}, nil)
	ctx := context.Background()

	if _, err := f.ctrl.Play(ctx, 0, 0, ""); err != nil {
		t.Fatal(err)
	}
	if f.ctrl.Cache().Stats().Entries != 1 {
		t.Fatal("expected a cache entry")
	}

	f.ctrl.ClearContent()
	if f.ctrl.Cache().Stats().Entries != 0 {
		t.Error("ClearContent should clear the cache")
	}
	if res, _ := f.ctrl.Play(ctx, 0, 0, ""); res.Valid {
		t.Error("no entries should be playable after ClearContent")
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func autoPlayOptions(delay time.Duration) func(*options.Options) {
	return func(o *options.Options) {
		o.Audio.AutoPlay = true
		o.Audio.AutoPlayDelay = delay
	}
}

func TestAutoPlay(t *testing.T) {
	f := newFixture(t, taberuInfos(), []string{"jisho/taberu-1"}, autoPlayOptions(20*time.Millisecond))

	f.ctrl.ContentUpdated()
	if !f.ctrl.AutoPlayPending() {
		t.Fatal("expected auto play to be scheduled")
	}
	waitFor(t, "auto play", func() bool { return len(f.dev.Playing()) == 1 })
	if f.ctrl.AutoPlayPending() {
		t.Error("timer should be cleared after firing")
	}
}

func TestAutoPlayImmediate(t *testing.T) {
	f := newFixture(t, taberuInfos(), []string{"jisho/taberu-1"}, autoPlayOptions(0))

	f.ctrl.ContentUpdated()
	if f.ctrl.AutoPlayPending() {
		t.Error("zero delay should not schedule a timer")
	}
	waitFor(t, "auto play", func() bool { return len(f.dev.Playing()) == 1 })
}

func TestAutoPlayCancelled(t *testing.T) {
	tests := []struct {
		name   string
		cancel func(*Controller)
	}{
		{"hidden", func(c *Controller) { c.SetFrameVisible(false) }},
		{"cleared", func(c *Controller) { c.ClearContent() }},
		{"new content", func(c *Controller) { c.SetContent([]Entry{{Headwords: []Headword{{Term: "猫", Reading: "ねこ"}}}}) }},
		{"explicit", func(c *Controller) { c.ClearAutoPlayTimer() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, taberuInfos(), []string{"jisho/taberu-1"}, autoPlayOptions(30*time.Millisecond))

			f.ctrl.ContentUpdated()
			tt.cancel(f.ctrl)
			if f.ctrl.AutoPlayPending() {
				t.Error("timer still pending")
			}
			time.Sleep(80 * time.Millisecond)
			if len(f.dev.Streams()) != 0 {
				t.Error("cancelled auto play still played")
			}
		})
	}
}

func TestAutoPlaySkipped(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, taberuInfos(), nil, nil)
		f.ctrl.ContentUpdated()
		if f.ctrl.AutoPlayPending() {
			t.Error("auto play is off by default")
		}
	})

	t.Run("audio disabled", func(t *testing.T) {
		f := newFixture(t, taberuInfos(), nil, func(o *options.Options) {
			autoPlayOptions(time.Second)(o)
			o.Audio.Enabled = false
		})
		f.ctrl.ContentUpdated()
		if f.ctrl.AutoPlayPending() {
			t.Error("auto play requires audio to be enabled")
		}
	})

	t.Run("kanji first", func(t *testing.T) {
		f := newFixture(t, taberuInfos(), nil, autoPlayOptions(time.Second))
		f.ctrl.SetContent([]Entry{{Kanji: true, Headwords: []Headword{{Term: "食", Reading: "しょく"}}}})
		f.ctrl.ContentUpdated()
		if f.ctrl.AutoPlayPending() {
			t.Error("kanji entries are not auto played")
		}
	})

	t.Run("hidden frame", func(t *testing.T) {
		f := newFixture(t, taberuInfos(), nil, autoPlayOptions(time.Second))
		f.ctrl.SetFrameVisible(false)
		f.ctrl.ContentUpdated()
		if f.ctrl.AutoPlayPending() {
			t.Error("hidden frames are not auto played")
		}
	})
}

func TestManualPlayCancelsAutoPlay(t *testing.T) {
	f := newFixture(t, taberuInfos(), []string{"jisho/taberu-1"}, autoPlayOptions(time.Second))

	f.ctrl.ContentUpdated()
	if _, err := f.ctrl.Play(context.Background(), 0, 0, ""); err != nil {
		t.Fatal(err)
	}
	if f.ctrl.AutoPlayPending() {
		t.Error("manual play should cancel the auto play timer")
	}
}

func TestBadgeFor(t *testing.T) {
	tests := []struct {
		count int
		ok    bool
		want  Badge
	}{
		{0, false, BadgeHidden},
		{0, true, BadgeCross},
		{1, true, BadgeHidden},
		{2, true, BadgePlus},
		{7, true, BadgePlus},
	}
	for _, tt := range tests {
		if got := badgeFor(tt.count, tt.ok); got != tt.want {
			t.Errorf("badgeFor(%d, %v) = %v, want %v", tt.count, tt.ok, got, tt.want)
		}
	}
}

func TestStop(t *testing.T) {
	f := newFixture(t, taberuInfos(), []string{"jpod/taberu"}, nil)

	if _, err := f.ctrl.Play(context.Background(), 0, 0, ""); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	f.ctrl.Stop()
	if f.ctrl.State() != StateIdle {
		t.Errorf("state = %v, want idle", f.ctrl.State())
	}
	if got := len(f.dev.Playing()); got != 0 {
		t.Errorf("expected no playing streams, got %d", got)
	}

	// A second Stop is a no-op.
	f.ctrl.Stop()
}

func TestCloseCancelsAutoPlay(t *testing.T) {
	f := newFixture(t, taberuInfos(), []string{"jisho/taberu-1"}, autoPlayOptions(0))
	gate := make(chan struct{})
	f.provider.gate = gate

	var mu sync.Mutex
	played := 0
	f.ctrl.SetOnUpdate(func(u Update) {
		if u.Kind == UpdatePlayed {
			mu.Lock()
			played++
			mu.Unlock()
		}
	})

	f.ctrl.ContentUpdated()
	waitFor(t, "auto play discovery", func() bool { return f.provider.callCount() > 0 })

	f.ctrl.Close()
	close(gate)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if played != 0 {
		t.Errorf("auto play finished after Close")
	}
	if n := len(f.dev.Streams()); n != 0 {
		t.Errorf("expected no streams, got %d", n)
	}
}
