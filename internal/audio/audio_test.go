package audio

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/kikitori/internal/sources"
	"github.com/dgnsrekt/kikitori/internal/speech"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestDeviceConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    DeviceConfig
		expectErr bool
	}{
		{name: "default", config: DefaultDeviceConfig()},
		{name: "48000Hz mono", config: DeviceConfig{SampleRate: 48000, Channels: 1}},
		{name: "invalid sample rate", config: DeviceConfig{SampleRate: 22050, Channels: 2}, expectErr: true},
		{name: "invalid channels", config: DeviceConfig{SampleRate: 44100, Channels: 3}, expectErr: true},
		{name: "negative buffer", config: DeviceConfig{SampleRate: 44100, Channels: 2, BufferSize: -time.Second}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDevice(tt.config)
			if (err != nil) != tt.expectErr {
				t.Errorf("expected error=%v, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestClipLifecycle(t *testing.T) {
	dev := NewMockDevice()
	pcm := make([]byte, dev.Format().BytesPerFrame()*44100)
	clip := NewClip(dev, pcm)

	if clip.Duration() != time.Second {
		t.Fatalf("unexpected duration %v", clip.Duration())
	}

	clip.SetVolume(0.4)
	clip.SetCurrentTime(500 * time.Millisecond)
	if len(dev.Streams()) != 0 {
		t.Fatal("stream opened before Play")
	}

	if err := clip.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	streams := dev.Streams()
	if len(streams) != 1 {
		t.Fatalf("expected one stream, got %d", len(streams))
	}
	s := streams[0]
	if !s.IsPlaying() || !clip.IsPlaying() {
		t.Error("clip should be playing")
	}
	if s.Volume() != 0.4 {
		t.Errorf("expected volume 0.4, got %v", s.Volume())
	}
	if s.Offset() != int64(22050*4) {
		t.Errorf("pending seek not applied, offset %d", s.Offset())
	}

	clip.Pause()
	if s.IsPlaying() {
		t.Error("clip should be paused")
	}

	clip.SetCurrentTime(10 * time.Second)
	if s.Offset() != s.Size() {
		t.Errorf("seek past end should clamp, got %d", s.Offset())
	}

	clip.SetVolume(3)
	if s.Volume() != 1 {
		t.Errorf("volume should clamp to 1, got %v", s.Volume())
	}

	if err := clip.Play(); err != nil {
		t.Fatalf("second Play: %v", err)
	}
	if len(dev.Streams()) != 1 {
		t.Error("second Play must reuse the stream")
	}
	if plays, pauses := s.Counts(); plays != 2 || pauses != 1 {
		t.Errorf("unexpected counts plays=%d pauses=%d", plays, pauses)
	}
}

func TestClipStreamError(t *testing.T) {
	dev := NewMockDevice()
	dev.StreamErr = errors.New("no device")
	clip := NewClip(dev, []byte{0, 0, 0, 0})
	if err := clip.Play(); err == nil {
		t.Fatal("expected stream error")
	}
}

type fakeFetcher struct {
	data        []byte
	contentType string
	err         error
	calls       atomic.Int32
}

func (f *fakeFetcher) FetchAudio(ctx context.Context, url string) ([]byte, string, error) {
	f.calls.Add(1)
	return f.data, f.contentType, f.err
}

func wavFixture(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, 22050, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 22050},
		Data:           make([]int, 2205),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestFactoryURL(t *testing.T) {
	dev := NewMockDevice()
	fetcher := &fakeFetcher{data: wavFixture(t), contentType: "audio/wav"}
	f := NewFactory(fetcher, speech.NewRegistry(), dev, quietLogger())

	source := sources.AudioSource{Type: sources.TypeLinguaLibre}
	p, err := f.Create(context.Background(), sources.URLInfo{URL: "https://example.com/a.wav"}, source)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	clip, ok := p.(*Clip)
	if !ok {
		t.Fatalf("expected *Clip, got %T", p)
	}
	if d := clip.Duration(); d < 99*time.Millisecond || d > 101*time.Millisecond {
		t.Errorf("unexpected duration %v", d)
	}
}

func TestFactoryURLErrors(t *testing.T) {
	dev := NewMockDevice()
	source := sources.AudioSource{Type: sources.TypeCustom}

	fetchErr := errors.New("404")
	f := NewFactory(&fakeFetcher{err: fetchErr}, nil, dev, quietLogger())
	if _, err := f.Create(context.Background(), sources.URLInfo{URL: "https://x/a.mp3"}, source); !errors.Is(err, fetchErr) {
		t.Errorf("expected fetch error, got %v", err)
	}

	f = NewFactory(&fakeFetcher{data: []byte("<html></html>"), contentType: "text/html"}, nil, dev, quietLogger())
	if _, err := f.Create(context.Background(), sources.URLInfo{URL: "https://x/page"}, source); err == nil {
		t.Error("expected decode error for html body")
	}
}

type fakeVoice struct {
	calls atomic.Int32
	err   error
}

func (v *fakeVoice) ID() string   { return "fake:ja" }
func (v *fakeVoice) Name() string { return "Fake" }
func (v *fakeVoice) Lang() string { return "ja" }
func (v *fakeVoice) Synthesize(ctx context.Context, text string) (*goaudio.IntBuffer, error) {
	v.calls.Add(1)
	if v.err != nil {
		return nil, v.err
	}
	return &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 44100},
		Data:           make([]int, 441),
		SourceBitDepth: 16,
	}, nil
}

func TestFactorySpeech(t *testing.T) {
	dev := NewMockDevice()
	voice := &fakeVoice{}
	f := NewFactory(nil, speech.NewRegistry(voice), dev, quietLogger())

	p, err := f.Create(context.Background(), sources.TTSInfo{Text: "たべる", Voice: "fake:ja"}, sources.AudioSource{Type: sources.TypeTextToSpeech})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if voice.calls.Load() != 0 {
		t.Fatal("synthesis must wait for Play")
	}
	p.SetVolume(0.5)
	for i := 0; i < 2; i++ {
		if err := p.Play(); err != nil {
			t.Fatalf("Play: %v", err)
		}
	}
	if voice.calls.Load() != 1 {
		t.Errorf("expected one synthesis, got %d", voice.calls.Load())
	}
	if s := dev.Streams(); len(s) != 1 || s[0].Volume() != 0.5 {
		t.Errorf("unexpected streams %v", s)
	}

	if _, err := f.Create(context.Background(), sources.TTSInfo{Text: "x", Voice: "nope"}, sources.AudioSource{}); !errors.Is(err, ErrInvalidVoice) {
		t.Errorf("expected ErrInvalidVoice, got %v", err)
	}
}

func TestSpeechClipError(t *testing.T) {
	voice := &fakeVoice{err: errors.New("offline")}
	clip := NewSpeechClip(context.Background(), NewMockDevice(), voice, "x")
	if err := clip.Play(); err == nil {
		t.Fatal("expected synthesis error")
	}
	clip.Pause()
}

// gatedVoice blocks in Synthesize until release is closed or ctx ends.
type gatedVoice struct {
	fakeVoice
	started chan struct{}
	release chan struct{}
}

func newGatedVoice() *gatedVoice {
	return &gatedVoice{started: make(chan struct{}, 4), release: make(chan struct{})}
}

func (v *gatedVoice) Synthesize(ctx context.Context, text string) (*goaudio.IntBuffer, error) {
	v.started <- struct{}{}
	select {
	case <-v.release:
		return v.fakeVoice.Synthesize(ctx, text)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestSpeechClipPauseCancelsSynthesis(t *testing.T) {
	dev := NewMockDevice()
	voice := newGatedVoice()
	clip := NewSpeechClip(context.Background(), dev, voice, "たべる")

	errc := make(chan error, 1)
	go func() { errc <- clip.Play() }()
	<-voice.started

	if !clip.IsPlaying() {
		t.Error("pending synthesis should report playing")
	}

	paused := make(chan struct{})
	go func() {
		clip.Pause()
		close(paused)
	}()
	select {
	case <-paused:
	case <-time.After(time.Second):
		t.Fatal("Pause blocked on synthesis")
	}

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Play did not return after Pause")
	}
	if clip.IsPlaying() {
		t.Error("cancelled clip still playing")
	}
	if n := len(dev.Streams()); n != 0 {
		t.Errorf("expected no streams, got %d", n)
	}

	// A later Play synthesizes again.
	close(voice.release)
	if err := clip.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if n := len(dev.Playing()); n != 1 {
		t.Errorf("expected 1 playing stream, got %d", n)
	}
}

func TestFallback(t *testing.T) {
	dev := NewMockDevice()
	if p := NewFallback(dev, FallbackNone); p != nil {
		t.Error("none should not produce a sound")
	}
	for _, kind := range []FallbackSound{FallbackClick, FallbackBloop} {
		p := NewFallback(dev, kind)
		if p == nil {
			t.Fatalf("%s: expected a sound", kind)
		}
		if err := p.Play(); err != nil {
			t.Errorf("%s: Play: %v", kind, err)
		}
	}
	if len(dev.Playing()) != 2 {
		t.Errorf("expected 2 playing streams, got %d", len(dev.Playing()))
	}
}

func TestParseFallbackSound(t *testing.T) {
	tests := map[string]FallbackSound{"click": FallbackClick, " Bloop": FallbackBloop, "": FallbackNone, "none": FallbackNone}
	for in, want := range tests {
		got, err := ParseFallbackSound(in)
		if err != nil || got != want {
			t.Errorf("%q: got %q, %v", in, got, err)
		}
	}
	if _, err := ParseFallbackSound("beep"); err == nil {
		t.Error("expected error for unknown sound")
	}
}
