package sources

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrInvalidAudio is returned for audio a source is known to serve in place
// of a real pronunciation.
var ErrInvalidAudio = errors.New("could not retrieve audio")

// invalidAudioDigests maps a source type to SHA-256 digests of placeholder
// bodies it serves.
var invalidAudioDigests = map[SourceType]map[string]struct{}{
	TypeJpod101: {
		"ae6398b5a27bc8c0a771df6c907ade794be15518174773c58c7c7ddd17098906": {},
	},
}

// JapanesePod101 answers unknown words with a "this word is not available"
// recording of this length.
const (
	jpod101PlaceholderMin = 5640 * time.Millisecond
	jpod101PlaceholderMax = 5700 * time.Millisecond
)

// ValidateAudio rejects downloaded bodies that are known placeholders.
func ValidateAudio(t SourceType, data []byte) error {
	digests, ok := invalidAudioDigests[t]
	if !ok {
		return nil
	}
	sum := sha256.Sum256(data)
	if _, bad := digests[hex.EncodeToString(sum[:])]; bad {
		return ErrInvalidAudio
	}
	return nil
}

// ValidateDuration rejects decoded audio whose length matches a known
// placeholder recording.
func ValidateDuration(t SourceType, d time.Duration) error {
	if t == TypeJpod101 && d >= jpod101PlaceholderMin && d <= jpod101PlaceholderMax {
		return ErrInvalidAudio
	}
	return nil
}
