package codec

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

func decodeWAV(r io.ReadSeeker) (*audio.IntBuffer, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, errors.Errorf("invalid wav file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "read wav failed")
	}
	if buf.Format == nil {
		buf.Format = &audio.Format{}
	}
	buf.Format.NumChannels = int(decoder.NumChans)
	buf.Format.SampleRate = int(decoder.SampleRate)
	if buf.SourceBitDepth == 0 {
		buf.SourceBitDepth = int(decoder.BitDepth)
	}
	return buf, nil
}
