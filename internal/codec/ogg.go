package codec

import (
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/jfreymuth/oggvorbis"
	"github.com/pkg/errors"
)

func decodeOgg(r io.ReadSeeker) (*audio.IntBuffer, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read ogg vorbis failed")
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(math.Round(float64(clampUnit(s)) * math.MaxInt16))
	}

	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: format.Channels,
			SampleRate:  format.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}, nil
}

func clampUnit(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
