package codec

import (
	"math"
	"time"

	"github.com/go-audio/audio"
)

// Tone synthesizes a mono 16-bit sine sweep from startHz to endHz with an
// exponential decay envelope. It backs the built-in fallback sounds.
func Tone(startHz, endHz float64, length time.Duration, sampleRate int, gain float64) *audio.IntBuffer {
	n := int(int64(sampleRate) * int64(length) / int64(time.Second))
	data := make([]int, n)
	phase := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		freq := startHz + (endHz-startHz)*t
		phase += 2 * math.Pi * freq / float64(sampleRate)
		env := math.Exp(-5 * t)
		if i < 32 {
			env *= float64(i) / 32
		}
		data[i] = int(math.Round(math.Sin(phase) * env * gain * math.MaxInt16))
	}
	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
}
