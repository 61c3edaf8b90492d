package speech

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

type recordedCall struct {
	name  string
	args  []string
	stdin string
}

func fakeRunner(out []byte, err error, calls *[]recordedCall) Runner {
	return func(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, error) {
		call := recordedCall{name: name, args: args}
		if stdin != nil {
			b, _ := io.ReadAll(stdin)
			call.stdin = string(b)
		}
		*calls = append(*calls, call)
		return out, err
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestGTTSVoiceArguments(t *testing.T) {
	var calls []recordedCall
	voices := NewGTTSVoices(GTTSConfig{Languages: []string{"ja"}, Slow: true, RequestsPerMinute: 6000},
		fakeRunner([]byte("not an mp3"), nil, &calls), quietLogger())
	if len(voices) != 1 {
		t.Fatalf("expected 1 voice, got %d", len(voices))
	}
	v := voices[0]
	if v.ID() != "gtts:ja" || v.Lang() != "ja" {
		t.Errorf("unexpected voice %s/%s", v.ID(), v.Lang())
	}

	if _, err := v.Synthesize(context.Background(), "食べる"); err == nil {
		t.Fatal("expected decode error for invalid mp3")
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	want := "食べる -l ja --slow -o -"
	if got := strings.Join(calls[0].args, " "); got != want {
		t.Errorf("expected args %q, got %q", want, got)
	}
	if calls[0].name != "gtts-cli" {
		t.Errorf("unexpected command %q", calls[0].name)
	}
}

func TestGTTSVoiceErrors(t *testing.T) {
	var calls []recordedCall
	boom := errors.New("boom")
	v := NewGTTSVoices(GTTSConfig{Languages: []string{"en"}}, fakeRunner(nil, boom, &calls), quietLogger())[0]

	if _, err := v.Synthesize(context.Background(), "  "); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
	if _, err := v.Synthesize(context.Background(), strings.Repeat("a", MaxTextSize+1)); !errors.Is(err, ErrTextTooLong) {
		t.Errorf("expected ErrTextTooLong, got %v", err)
	}
	if _, err := v.Synthesize(context.Background(), "hello"); !errors.Is(err, boom) {
		t.Errorf("expected runner error, got %v", err)
	}
	if len(calls) != 1 {
		t.Errorf("invalid text must not reach the runner, got %d calls", len(calls))
	}
}

func writePiperModel(t *testing.T, config string) string {
	t.Helper()
	dir := t.TempDir()
	model := filepath.Join(dir, "ja_JP-test-medium.onnx")
	if err := os.WriteFile(model, []byte("model"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(model+".json", []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	return model
}

func TestPiperVoice(t *testing.T) {
	model := writePiperModel(t, `{"audio":{"sample_rate":16000},"espeak":{"voice":"ja"}}`)

	pcm := make([]byte, 6)
	binary.LittleEndian.PutUint16(pcm[0:], uint16(100))
	binary.LittleEndian.PutUint16(pcm[2:], uint16(0xFFFF))
	binary.LittleEndian.PutUint16(pcm[4:], uint16(300))

	var calls []recordedCall
	v, err := NewPiperVoice(PiperConfig{}, PiperModel{Model: model, Speaker: "2"}, fakeRunner(pcm, nil, &calls), quietLogger())
	if err != nil {
		t.Fatalf("NewPiperVoice: %v", err)
	}
	if v.ID() != "piper:ja_JP-test-medium" {
		t.Errorf("unexpected id %q", v.ID())
	}
	if v.Lang() != "ja" {
		t.Errorf("unexpected lang %q", v.Lang())
	}

	buf, err := v.Synthesize(context.Background(), "たべる")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if buf.Format.SampleRate != 16000 || buf.Format.NumChannels != 1 {
		t.Errorf("unexpected format %+v", buf.Format)
	}
	want := []int{100, -1, 300}
	for i, w := range want {
		if buf.Data[i] != w {
			t.Errorf("sample %d: expected %d, got %d", i, w, buf.Data[i])
		}
	}
	if calls[0].stdin != "たべる\n" {
		t.Errorf("unexpected stdin %q", calls[0].stdin)
	}
	if !strings.Contains(strings.Join(calls[0].args, " "), "--speaker 2") {
		t.Errorf("speaker not passed: %v", calls[0].args)
	}
}

func TestPiperVoiceMissingModel(t *testing.T) {
	if _, err := NewPiperVoice(PiperConfig{}, PiperModel{}, nil, quietLogger()); err == nil {
		t.Error("expected error for empty model path")
	}
	if _, err := NewPiperVoice(PiperConfig{}, PiperModel{Model: filepath.Join(t.TempDir(), "missing.onnx")}, nil, quietLogger()); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestLoadRegistry(t *testing.T) {
	model := writePiperModel(t, `{"audio":{"sample_rate":22050},"language":{"code":"ja_JP"}}`)
	cfg := Config{
		GTTS: GTTSConfig{Languages: []string{"ja", "en"}},
		Piper: PiperConfig{Models: []PiperModel{
			{Name: "kokoro", Model: model},
			{Name: "broken", Model: filepath.Join(t.TempDir(), "nope.onnx")},
		}},
	}

	r := Load(cfg, nil, quietLogger())
	voices := r.Voices()
	if len(voices) != 3 {
		t.Fatalf("expected 3 voices, got %d", len(voices))
	}
	ids := []string{voices[0].ID(), voices[1].ID(), voices[2].ID()}
	if strings.Join(ids, ",") != "gtts:en,gtts:ja,piper:kokoro" {
		t.Errorf("unexpected voices %v", ids)
	}
	if v, ok := r.Lookup("GTTS:JA"); !ok || v.ID() != "gtts:ja" {
		t.Error("case insensitive lookup failed")
	}
	if _, ok := r.Lookup("piper:broken"); ok {
		t.Error("broken model should not be registered")
	}
	if v, _ := r.Lookup("piper:kokoro"); v.Lang() != "ja" {
		t.Errorf("unexpected piper lang %q", v.Lang())
	}
}
