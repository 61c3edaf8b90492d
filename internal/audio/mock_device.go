package audio

import (
	"errors"
	"sync"

	"github.com/dgnsrekt/kikitori/internal/codec"
)

// MockDevice is an Output that produces no sound. Tests use it to observe
// what would have been played.
type MockDevice struct {
	mu      sync.Mutex
	format  codec.DeviceFormat
	streams []*MockStream

	// StreamErr, when set, is returned by NewStream.
	StreamErr error
}

// NewMockDevice returns a mock device in the default device format.
func NewMockDevice() *MockDevice {
	return &MockDevice{format: codec.DefaultDeviceFormat}
}

// Format implements Output.
func (d *MockDevice) Format() codec.DeviceFormat {
	return d.format
}

// NewStream implements Output.
func (d *MockDevice) NewStream(pcm []byte) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.StreamErr != nil {
		return nil, d.StreamErr
	}
	if len(pcm) == 0 {
		return nil, errors.New("audio data is empty")
	}
	s := &MockStream{size: int64(len(pcm)), volume: 1}
	d.streams = append(d.streams, s)
	return s, nil
}

// Streams returns every stream created so far.
func (d *MockDevice) Streams() []*MockStream {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*MockStream, len(d.streams))
	copy(out, d.streams)
	return out
}

// Playing returns the streams currently playing.
func (d *MockDevice) Playing() []*MockStream {
	var out []*MockStream
	for _, s := range d.Streams() {
		if s.IsPlaying() {
			out = append(out, s)
		}
	}
	return out
}

// MockStream records the calls made on it.
type MockStream struct {
	mu      sync.Mutex
	size    int64
	playing bool
	closed  bool
	offset  int64
	volume  float64

	playCount  int
	pauseCount int
}

func (s *MockStream) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.playing = true
	s.playCount++
}

func (s *MockStream) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.pauseCount++
}

func (s *MockStream) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *MockStream) Seek(offset int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("stream is closed")
	}
	if offset < 0 || offset > s.size {
		return errors.New("seek out of range")
	}
	s.offset = offset
	return nil
}

func (s *MockStream) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = volume
}

func (s *MockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.playing = false
	return nil
}

// Offset returns the last seek position.
func (s *MockStream) Offset() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// Volume returns the last volume set.
func (s *MockStream) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Size returns the PCM length in bytes.
func (s *MockStream) Size() int64 {
	return s.size
}

// Counts returns the number of Play and Pause calls.
func (s *MockStream) Counts() (plays, pauses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playCount, s.pauseCount
}
