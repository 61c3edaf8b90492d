package codec

import (
	"encoding/binary"
	"io"

	"github.com/go-audio/audio"
	"github.com/hajimehoshi/go-mp3"
	"github.com/pkg/errors"
)

// go-mp3 always produces interleaved stereo signed 16-bit little endian.
func decodeMP3(r io.ReadSeeker) (*audio.IntBuffer, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, errors.Wrap(err, "new mp3 decoder failed")
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, errors.Wrap(err, "read mp3 failed")
	}

	samples := make([]int, len(raw)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(raw[i*2:])))
	}

	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  decoder.SampleRate(),
		},
		Data:           samples,
		SourceBitDepth: 16,
	}, nil
}
