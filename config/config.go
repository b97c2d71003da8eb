package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Hotkey HotkeyConfig `yaml:"hotkey"`
	Speech SpeechConfig `yaml:"speech"`
	Voice  VoiceConfig  `yaml:"voice"`
	XAI    XAIConfig    `yaml:"xai"`
	Log    LogConfig    `yaml:"log"`
}

type HotkeyConfig struct {
	TalkKey      string `yaml:"talk_key"`
	QuitKey      string `yaml:"quit_key"`
	PollInterval string `yaml:"poll_interval"`
}

type SpeechConfig struct {
	ModelPath      string `yaml:"model_path"`
	SampleRate     int    `yaml:"sample_rate"`
	ListenTimeout  string `yaml:"listen_timeout"`
	InitialSilence string `yaml:"initial_silence"`
}

type VoiceConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type XAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	EventFile string `yaml:"event_file"`
}

// Load reads the YAML config at path. A missing file is not an error: the
// assistant can run configured entirely by environment, so defaults apply.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			cfg.setDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Hotkey.TalkKey == "" {
		c.Hotkey.TalkKey = "f8"
	}
	if c.Hotkey.QuitKey == "" {
		c.Hotkey.QuitKey = "esc"
	}
	if c.Hotkey.PollInterval == "" {
		c.Hotkey.PollInterval = "100ms"
	}
	if c.Speech.ModelPath == "" {
		c.Speech.ModelPath = "models/vosk"
	}
	if c.Speech.SampleRate == 0 {
		c.Speech.SampleRate = 16000
	}
	if c.Speech.ListenTimeout == "" {
		c.Speech.ListenTimeout = "10s"
	}
	if c.Speech.InitialSilence == "" {
		c.Speech.InitialSilence = "5s"
	}
	if c.XAI.APIKey == "" {
		c.XAI.APIKey = os.Getenv("XAI_API_KEY")
	}
	if c.XAI.Model == "" {
		c.XAI.Model = "grok-beta"
	}
	if c.XAI.BaseURL == "" {
		c.XAI.BaseURL = "https://api.x.ai/v1"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.EventFile == "" {
		c.Log.EventFile = "grokory.log"
	}
}
