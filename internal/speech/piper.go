package speech

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-audio/audio"
)

// PiperModel is one installed piper voice model.
type PiperModel struct {
	// Name becomes the voice id suffix, "piper:<name>".
	Name  string `mapstructure:"name"  yaml:"name"`
	Model string `mapstructure:"model" yaml:"model"`
	// Config defaults to the model path with a .json extension.
	Config  string `mapstructure:"config"  yaml:"config"`
	Speaker string `mapstructure:"speaker" yaml:"speaker"`
}

// PiperConfig configures offline piper voices.
type PiperConfig struct {
	Command string
	Models  []PiperModel
	Timeout time.Duration
}

// PiperVoice synthesizes with a local piper model, reading raw PCM from
// stdout.
type PiperVoice struct {
	command    string
	model      PiperModel
	lang       string
	sampleRate int
	timeout    time.Duration
	run        Runner
	logger     *log.Logger
}

// piperModelConfig is the subset of a piper model's json we need.
type piperModelConfig struct {
	Audio struct {
		SampleRate int `json:"sample_rate"`
	} `json:"audio"`
	Espeak struct {
		Voice string `json:"voice"`
	} `json:"espeak"`
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
}

// NewPiperVoice validates the model files and reads the model config.
func NewPiperVoice(cfg PiperConfig, model PiperModel, run Runner, logger *log.Logger) (*PiperVoice, error) {
	if model.Model == "" {
		return nil, errors.New("model path is required")
	}
	if _, err := os.Stat(model.Model); err != nil {
		return nil, fmt.Errorf("model file not found: %w", err)
	}
	if model.Config == "" {
		model.Config = strings.TrimSuffix(model.Model, filepath.Ext(model.Model)) + ".onnx.json"
		if _, err := os.Stat(model.Config); err != nil {
			model.Config = strings.TrimSuffix(model.Model, filepath.Ext(model.Model)) + ".json"
		}
	}
	if model.Name == "" {
		model.Name = strings.TrimSuffix(filepath.Base(model.Model), filepath.Ext(model.Model))
	}

	raw, err := os.ReadFile(model.Config)
	if err != nil {
		return nil, fmt.Errorf("read model config: %w", err)
	}
	var mc piperModelConfig
	if err := json.Unmarshal(raw, &mc); err != nil {
		return nil, fmt.Errorf("parse model config: %w", err)
	}

	sampleRate := mc.Audio.SampleRate
	if sampleRate == 0 {
		sampleRate = 22050
	}
	lang := mc.Espeak.Voice
	if lang == "" {
		lang = mc.Language.Code
	}
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}

	if cfg.Command == "" {
		cfg.Command = "piper"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if run == nil {
		run = ExecRunner
	}
	if logger == nil {
		logger = log.Default()
	}

	return &PiperVoice{
		command:    cfg.Command,
		model:      model,
		lang:       strings.ToLower(lang),
		sampleRate: sampleRate,
		timeout:    cfg.Timeout,
		run:        run,
		logger:     logger.WithPrefix("piper"),
	}, nil
}

func (v *PiperVoice) ID() string   { return "piper:" + v.model.Name }
func (v *PiperVoice) Name() string { return "Piper " + v.model.Name }
func (v *PiperVoice) Lang() string { return v.lang }

// Synthesize pipes text into piper and wraps its raw mono output.
func (v *PiperVoice) Synthesize(ctx context.Context, text string) (*audio.IntBuffer, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}

	args := []string{
		"--model", v.model.Model,
		"--config", v.model.Config,
		"--output-raw",
	}
	if v.model.Speaker != "" {
		args = append(args, "--speaker", v.model.Speaker)
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	data, err := v.run(ctx, v.command, args, strings.NewReader(text+"\n"))
	if err != nil {
		return nil, fmt.Errorf("piper synthesis: %w", err)
	}
	v.logger.Debug("synthesized", "voice", v.model.Name, "bytes", len(data))

	samples := make([]int, len(data)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}
	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: v.sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}, nil
}
