package codec

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/pkg/errors"
)

// DeviceFormat describes the PCM layout the output device consumes. Samples
// are always signed 16-bit little endian.
type DeviceFormat struct {
	SampleRate int
	Channels   int
}

// DefaultDeviceFormat is 44.1kHz stereo.
var DefaultDeviceFormat = DeviceFormat{SampleRate: 44100, Channels: 2}

// BytesPerFrame returns the size of one interleaved frame.
func (f DeviceFormat) BytesPerFrame() int {
	return f.Channels * 2
}

// Duration returns how long n bytes of PCM in this format play for.
func (f DeviceFormat) Duration(n int) time.Duration {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return 0
	}
	frames := n / f.BytesPerFrame()
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// Offset returns the byte offset of d into a stream, aligned to a frame.
func (f DeviceFormat) Offset(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	frames := int64(d) * int64(f.SampleRate) / int64(time.Second)
	return frames * int64(f.BytesPerFrame())
}

// Encode converts buf into 16-bit little endian PCM in the device format:
// bit depth is normalized, channels are mapped and the sample rate is
// linearly resampled.
func Encode(buf *audio.IntBuffer, out DeviceFormat) ([]byte, error) {
	if buf == nil || buf.Format == nil {
		return nil, errors.New("encode: missing buffer format")
	}
	inCh := buf.Format.NumChannels
	if inCh <= 0 || buf.Format.SampleRate <= 0 {
		return nil, errors.Errorf("encode: invalid source format %d ch / %d Hz", inCh, buf.Format.SampleRate)
	}
	if out.Channels != 1 && out.Channels != 2 {
		return nil, errors.Errorf("encode: unsupported output channels %d", out.Channels)
	}

	frames := normalizeFrames(buf, out.Channels)
	frames = resample(frames, out.Channels, buf.Format.SampleRate, out.SampleRate)

	data := make([]byte, len(frames)*2)
	for i, s := range frames {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return data, nil
}

// normalizeFrames scales samples to int16 range and maps channels.
func normalizeFrames(buf *audio.IntBuffer, outCh int) []int16 {
	inCh := buf.Format.NumChannels
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = 16
	}

	scale := func(v int) int16 {
		switch {
		case depth == 8:
			// 8-bit wav is unsigned.
			v = (v - 128) << 8
		case depth > 16:
			v >>= uint(depth - 16)
		case depth < 16:
			v <<= uint(16 - depth)
		}
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		return int16(v)
	}

	n := len(buf.Data) / inCh
	out := make([]int16, n*outCh)
	for f := 0; f < n; f++ {
		src := buf.Data[f*inCh : f*inCh+inCh]
		switch {
		case outCh == 1 && inCh == 1:
			out[f] = scale(src[0])
		case outCh == 1:
			out[f] = int16((int(scale(src[0])) + int(scale(src[1]))) / 2)
		case inCh == 1:
			s := scale(src[0])
			out[f*2], out[f*2+1] = s, s
		default:
			out[f*2], out[f*2+1] = scale(src[0]), scale(src[1])
		}
	}
	return out
}

func resample(in []int16, channels, from, to int) []int16 {
	if from == to || len(in) == 0 {
		return in
	}
	inFrames := len(in) / channels
	outFrames := int(int64(inFrames) * int64(to) / int64(from))
	if outFrames == 0 {
		return nil
	}
	out := make([]int16, outFrames*channels)
	ratio := float64(from) / float64(to)
	for f := 0; f < outFrames; f++ {
		pos := float64(f) * ratio
		i := int(pos)
		frac := pos - float64(i)
		j := i + 1
		if j >= inFrames {
			j = inFrames - 1
		}
		for c := 0; c < channels; c++ {
			a := float64(in[i*channels+c])
			b := float64(in[j*channels+c])
			out[f*channels+c] = int16(math.Round(a + (b-a)*frac))
		}
	}
	return out
}
