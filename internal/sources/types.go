package sources

import (
	"fmt"
	"strings"
)

// SourceType identifies how audio is discovered for a source.
type SourceType string

const (
	TypeJpod101             SourceType = "jpod101"
	TypeLanguagePod101      SourceType = "language-pod-101"
	TypeJisho               SourceType = "jisho"
	TypeLinguaLibre         SourceType = "lingua-libre"
	TypeWiktionary          SourceType = "wiktionary"
	TypeTextToSpeech        SourceType = "text-to-speech"
	TypeTextToSpeechReading SourceType = "text-to-speech-reading"
	TypeCustom              SourceType = "custom"
	TypeCustomJSON          SourceType = "custom-json"
)

// AllTypes lists every known source type in display order.
var AllTypes = []SourceType{
	TypeJpod101,
	TypeLanguagePod101,
	TypeJisho,
	TypeLinguaLibre,
	TypeWiktionary,
	TypeTextToSpeech,
	TypeTextToSpeechReading,
	TypeCustom,
	TypeCustomJSON,
}

var typeNames = map[SourceType]string{
	TypeJpod101:             "JapanesePod101",
	TypeLanguagePod101:      "LanguagePod101",
	TypeJisho:               "Jisho.org",
	TypeLinguaLibre:         "Lingua Libre",
	TypeWiktionary:          "Wiktionary",
	TypeTextToSpeech:        "Text-to-speech",
	TypeTextToSpeechReading: "Text-to-speech (Kana reading)",
	TypeCustom:              "Custom URL",
	TypeCustomJSON:          "Custom URL (JSON)",
}

// DisplayName returns the label shown for the type, or "Unknown".
func (t SourceType) DisplayName() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Downloadable reports whether audio from this type can be exported.
// Speech synthesis only exists on the playing device.
func (t SourceType) Downloadable() bool {
	switch t {
	case TypeTextToSpeech, TypeTextToSpeechReading:
		return false
	default:
		return true
	}
}

// Known reports whether t is one of AllTypes.
func (t SourceType) Known() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseSourceType converts a configuration string into a SourceType.
func ParseSourceType(s string) (SourceType, error) {
	t := SourceType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Known() {
		return "", fmt.Errorf("unknown audio source type %q", s)
	}
	return t, nil
}

// SourceConfig is one source as stored in the options.
type SourceConfig struct {
	Type  SourceType `mapstructure:"type"  yaml:"type"`
	URL   string     `mapstructure:"url"   yaml:"url"`
	Voice string     `mapstructure:"voice" yaml:"voice"`
}

// AudioSource is a source as seen by the cache and the UI. It is immutable
// for the lifetime of one registry snapshot.
type AudioSource struct {
	Index        int
	Type         SourceType
	URL          string
	Voice        string
	IsInOptions  bool
	Downloadable bool
	Name         string
	NameIndex    int
	NameUnique   bool
}

// Config returns the type/url/voice triple handed to discovery.
func (s AudioSource) Config() SourceConfig {
	return SourceConfig{Type: s.Type, URL: s.URL, Voice: s.Voice}
}

// Label returns the name with its index suffix when the name is shared.
func (s AudioSource) Label() string {
	if s.NameUnique {
		return s.Name
	}
	return fmt.Sprintf("%s %d", s.Name, s.NameIndex+1)
}
