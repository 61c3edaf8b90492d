package discovery

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration errors are returned to the caller. Every other discovery
// failure is treated as transient and yields an empty list.
var (
	ErrMissingVoice        = errors.New("no voice configured")
	ErrMissingURL          = errors.New("no custom URL configured")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidAudioList    = errors.New("invalid custom audio list")
	ErrUnknownSourceType   = errors.New("unknown audio source type")
	ErrAudioNotFound       = errors.New("failed to find audio URL")
	ErrIdleTimeout         = errors.New("idle timeout")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("invalid response from %s: %d", e.URL, e.Status)
}

// DownloadError aggregates every failure seen while exporting audio.
type DownloadError struct {
	Errors []error
}

func (e *DownloadError) Error() string {
	if len(e.Errors) == 0 {
		return "could not download audio"
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return "could not download audio: " + strings.Join(msgs, "; ")
}

// Unwrap exposes each cause to errors.Is and errors.As.
func (e *DownloadError) Unwrap() []error {
	return e.Errors
}

func isConfigError(err error) bool {
	return errors.Is(err, ErrMissingVoice) ||
		errors.Is(err, ErrMissingURL) ||
		errors.Is(err, ErrUnsupportedLanguage) ||
		errors.Is(err, ErrInvalidAudioList) ||
		errors.Is(err, ErrUnknownSourceType)
}
