package codec

import (
	"bytes"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/go-audio/audio"
	"github.com/pkg/errors"
)

// Format is a container/codec this package can decode.
type Format string

const (
	FormatUnknown Format = ""
	FormatMP3     Format = "mp3"
	FormatWAV     Format = "wav"
	FormatOgg     Format = "ogg"
)

// ErrUnsupportedFormat is returned when no decoder matches the data.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

type decoderFunc func(r io.ReadSeeker) (*audio.IntBuffer, error)

var decoders map[Format]decoderFunc

func registerDecoder(f Format, d decoderFunc) {
	if decoders == nil {
		decoders = make(map[Format]decoderFunc)
	}
	decoders[f] = d
}

func init() {
	registerDecoder(FormatMP3, decodeMP3)
	registerDecoder(FormatWAV, decodeWAV)
	registerDecoder(FormatOgg, decodeOgg)
}

// Detect picks a format from the content type, then the file extension of
// location, then the leading magic bytes of data.
func Detect(contentType, location string, data []byte) Format {
	if f := formatFromContentType(contentType); f != FormatUnknown {
		return f
	}
	if f := formatFromLocation(location); f != FormatUnknown {
		return f
	}
	return formatFromMagic(data)
}

func formatFromContentType(contentType string) Format {
	if contentType == "" {
		return FormatUnknown
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return FormatUnknown
	}
	switch mediaType {
	case "audio/mpeg", "audio/mp3", "audio/mpeg3", "audio/x-mpeg-3":
		return FormatMP3
	case "audio/wav", "audio/wave", "audio/x-wav", "audio/vnd.wave":
		return FormatWAV
	case "audio/ogg", "application/ogg", "audio/vorbis":
		return FormatOgg
	}
	return FormatUnknown
}

func formatFromLocation(location string) Format {
	if location == "" {
		return FormatUnknown
	}
	p := location
	if u, err := url.Parse(location); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".mp3":
		return FormatMP3
	case ".wav", ".wave":
		return FormatWAV
	case ".ogg", ".oga":
		return FormatOgg
	}
	return FormatUnknown
}

func formatFromMagic(data []byte) Format {
	switch {
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("OggS")):
		return FormatOgg
	case len(data) >= 3 && bytes.Equal(data[:3], []byte("ID3")):
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	}
	return FormatUnknown
}

// Decode decodes data of the given format into an integer PCM buffer.
func Decode(data []byte, format Format) (*audio.IntBuffer, error) {
	dec, ok := decoders[format]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "format %q", format)
	}
	buf, err := dec(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", format)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, errors.Errorf("decode %s: no samples", format)
	}
	return buf, nil
}
