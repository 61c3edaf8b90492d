package audio

import (
	"errors"
	"sync"
	"time"

	"github.com/dgnsrekt/kikitori/internal/codec"
	goaudio "github.com/go-audio/audio"
)

// Playable is a resolved piece of audio the controller can start and stop.
type Playable interface {
	Play() error
	Pause()
	SetCurrentTime(t time.Duration)
	SetVolume(volume float64)
}

// Clip plays decoded PCM on an Output. The stream is opened on first Play
// so unplayed candidates hold no device resources.
type Clip struct {
	mu      sync.Mutex
	out     Output
	pcm     []byte
	stream  Stream
	volume  float64
	pending int64
}

// NewClip wraps device format PCM.
func NewClip(out Output, pcm []byte) *Clip {
	return &Clip{out: out, pcm: pcm, volume: 1}
}

// Play implements Playable.
func (c *Clip) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == nil {
		s, err := c.out.NewStream(c.pcm)
		if err != nil {
			return err
		}
		c.stream = s
		c.stream.SetVolume(c.volume)
		if c.pending > 0 {
			if err := c.stream.Seek(c.pending); err != nil {
				return err
			}
		}
	}
	c.stream.Play()
	return nil
}

// Pause implements Playable.
func (c *Clip) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		c.stream.Pause()
	}
}

// SetCurrentTime implements Playable. Times past the end clamp to the end.
func (c *Clip) SetCurrentTime(t time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	offset := c.out.Format().Offset(t)
	if offset > int64(len(c.pcm)) {
		offset = int64(len(c.pcm))
	}
	if c.stream == nil {
		c.pending = offset
		return
	}
	_ = c.stream.Seek(offset)
}

// SetVolume implements Playable.
func (c *Clip) SetVolume(volume float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = clampVolume(volume)
	if c.stream != nil {
		c.stream.SetVolume(c.volume)
	}
}

// Duration returns the clip length.
func (c *Clip) Duration() time.Duration {
	return c.out.Format().Duration(len(c.pcm))
}

// IsPlaying reports whether the clip is audible.
func (c *Clip) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream != nil && c.stream.IsPlaying()
}

// Close releases the device stream. The clip may be played again.
func (c *Clip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == nil {
		return nil
	}
	err := c.stream.Close()
	c.stream = nil
	return err
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// errNoAudio is returned when a buffer encodes to zero bytes.
var errNoAudio = errors.New("no audio samples")

// clipFromBuffer converts decoded audio into a clip for out.
func clipFromBuffer(out Output, buf *goaudio.IntBuffer) (*Clip, error) {
	pcm, err := codec.Encode(buf, out.Format())
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, errNoAudio
	}
	return NewClip(out, pcm), nil
}
