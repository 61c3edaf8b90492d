package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dgnsrekt/kikitori/internal/codec"
	"github.com/ebitengine/oto/v3"
)

// Output is a sink for device format PCM.
type Output interface {
	Format() codec.DeviceFormat
	NewStream(pcm []byte) (Stream, error)
}

// Stream is one loaded clip on an Output.
type Stream interface {
	Play()
	Pause()
	IsPlaying() bool
	// Seek moves to a byte offset from the start of the PCM.
	Seek(offset int64) error
	SetVolume(volume float64)
	Close() error
}

// DeviceConfig contains configuration for the output device.
type DeviceConfig struct {
	SampleRate int           // 44100 or 48000 Hz only
	Channels   int           // 1 = mono, 2 = stereo
	BufferSize time.Duration // 0 lets oto choose
}

// DefaultDeviceConfig returns 44.1kHz stereo.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		SampleRate: codec.DefaultDeviceFormat.SampleRate,
		Channels:   codec.DefaultDeviceFormat.Channels,
	}
}

func validateConfig(config DeviceConfig) error {
	// oto only supports specific sample rates reliably
	if config.SampleRate != 44100 && config.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", config.SampleRate)
	}
	if config.Channels != 1 && config.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", config.Channels)
	}
	if config.BufferSize < 0 {
		return errors.New("buffer size must not be negative")
	}
	return nil
}

// Device is the oto backed Output. The oto context is created on the first
// stream since a process may only ever own one.
type Device struct {
	config DeviceConfig

	once sync.Once
	ctx  *oto.Context
	err  error
}

// NewDevice validates config. No audio hardware is touched until a stream
// is requested.
func NewDevice(config DeviceConfig) (*Device, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Device{config: config}, nil
}

// Format implements Output.
func (d *Device) Format() codec.DeviceFormat {
	return codec.DeviceFormat{SampleRate: d.config.SampleRate, Channels: d.config.Channels}
}

func (d *Device) context() (*oto.Context, error) {
	d.once.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   d.config.SampleRate,
			ChannelCount: d.config.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   d.config.BufferSize,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			d.err = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready
		d.ctx = ctx
	})
	return d.ctx, d.err
}

// NewStream implements Output.
func (d *Device) NewStream(pcm []byte) (Stream, error) {
	if len(pcm) == 0 {
		return nil, errors.New("audio data is empty")
	}
	ctx, err := d.context()
	if err != nil {
		return nil, err
	}
	// The reader must outlive playback, so the stream owns it.
	reader := bytes.NewReader(pcm)
	player := ctx.NewPlayer(reader)
	if player == nil {
		return nil, errors.New("failed to create oto player")
	}
	return &otoStream{player: player, reader: reader}, nil
}

type otoStream struct {
	mu     sync.Mutex
	player *oto.Player
	reader *bytes.Reader
	closed bool
}

func (s *otoStream) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.player.Play()
	}
}

func (s *otoStream) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.player.Pause()
	}
}

func (s *otoStream) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.player.IsPlaying()
}

func (s *otoStream) Seek(offset int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("stream is closed")
	}
	_, err := s.player.Seek(offset, io.SeekStart)
	return err
}

func (s *otoStream) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.player.SetVolume(volume)
	}
}

func (s *otoStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.player.Pause()
	err := s.player.Close()
	s.reader = nil
	return err
}
