package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgnsrekt/kikitori/internal/sources"
)

func TestHeadwordArgs(t *testing.T) {
	tests := []struct {
		args        []string
		term, reads string
	}{
		{[]string{"食べる", "たべる"}, "食べる", "たべる"},
		{[]string{"ねこ"}, "ねこ", "ねこ"},
		{[]string{"猫", ""}, "猫", "猫"},
	}
	for _, tt := range tests {
		term, reading := headwordArgs(tt.args)
		if term != tt.term || reading != tt.reads {
			t.Errorf("headwordArgs(%q) = %q, %q", tt.args, term, reading)
		}
	}
}

func TestMatchSourceType(t *testing.T) {
	tests := []struct {
		in      string
		want    sources.SourceType
		wantErr bool
	}{
		{in: "jisho", want: sources.TypeJisho},
		{in: "JPOD101", want: sources.TypeJpod101},
		{in: "wikt", want: sources.TypeWiktionary},
		{in: "lingua", want: sources.TypeLinguaLibre},
		{in: "zzzz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := matchSourceType(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAudioExtension(t *testing.T) {
	tests := map[string]string{
		"audio/mpeg":               ".mp3",
		"audio/ogg; codecs=vorbis": ".ogg",
		"audio/x-wav":              ".wav",
		"":                         ".mp3",
		"audio/flac":               ".flac",
	}
	for ct, want := range tests {
		if got := audioExtension(ct); got != want {
			t.Errorf("audioExtension(%q) = %q, want %q", ct, got, want)
		}
	}
}

func TestSourcesMarkdown(t *testing.T) {
	list := sources.Build([]sources.SourceConfig{
		{Type: sources.TypeCustom, URL: "https://example.com/{term}|x"},
	}, true, "ja")

	md := sourcesMarkdown("ja", list, nil)
	for _, want := range []string{
		"# Audio sources (Japanese)",
		"| 1 | Custom URL | `custom` | https://example.com/{term}\\|x | yes | config |",
		"| 2 | JapanesePod101 | `jpod101` | - | yes | default |",
		"No text to speech voices available.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown is missing %q:\n%s", want, md)
		}
	}
}

func TestWriteInfoTable(t *testing.T) {
	list := []sources.AudioSource{
		{Index: 0, Type: sources.TypeJisho, Name: "Jisho.org", NameUnique: true},
		{Index: 1, Type: sources.TypeTextToSpeech, Name: "Text-to-speech", NameUnique: true},
		{Index: 2, Type: sources.TypeWiktionary, Name: "Wiktionary", NameUnique: true},
	}
	results := [][]sources.Info{
		{sources.URLInfo{URL: "https://a/1.mp3"}, sources.URLInfo{URL: "https://a/2.mp3", Name: "Alice"}},
		{sources.TTSInfo{Text: "食べる", Voice: "gtts:ja"}},
		nil,
	}

	var b bytes.Buffer
	writeInfoTable(&b, list, results)
	want := "" +
		"Jisho.org       https://a/1.mp3\n" +
		"                https://a/2.mp3 (Alice)\n" +
		"Text-to-speech  speech gtts:ja \"食べる\"\n" +
		"Wiktionary      -\n"
	if b.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", b.String(), want)
	}
}
