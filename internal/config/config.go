// Package config resolves runtime settings from the environment, an
// optional .env file, and platform-specific defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable. Values come from KOESCRIPT_* environment
// variables with sensible defaults; directories default per platform.
type Config struct {
	ModelsDir  string `env:"KOESCRIPT_MODELS_DIR"`
	LogDir     string `env:"KOESCRIPT_LOG_DIR"`
	LogLevel   string `env:"KOESCRIPT_LOG_LEVEL" envDefault:"info"`
	WhisperBin string `env:"KOESCRIPT_WHISPER_BIN"`

	Model    string `env:"KOESCRIPT_MODEL" envDefault:"small"`
	Language string `env:"KOESCRIPT_LANGUAGE" envDefault:"en"`

	SampleRate    int           `env:"KOESCRIPT_SAMPLE_RATE" envDefault:"16000"`
	Channels      int           `env:"KOESCRIPT_CHANNELS" envDefault:"1"`
	FrameDuration time.Duration `env:"KOESCRIPT_FRAME_DURATION" envDefault:"500ms"`
	QueueDepth    int           `env:"KOESCRIPT_QUEUE_DEPTH" envDefault:"8"`

	BeamSize          int           `env:"KOESCRIPT_BEAM_SIZE" envDefault:"5"`
	TranscribeTimeout time.Duration `env:"KOESCRIPT_TRANSCRIBE_TIMEOUT" envDefault:"30s"`
}

// Load builds a Config. envFile, when non-empty, is read first the way a
// local .env is; a missing default .env is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.ModelsDir == "" {
		cfg.ModelsDir = defaultModelsDir()
	}
	if cfg.LogDir == "" {
		cfg.LogDir = defaultLogDir()
	}
	if err := ValidateModelName(cfg.Model); err != nil {
		return nil, err
	}
	return cfg, nil
}

var modelNames = []string{"tiny", "base", "small", "medium", "large"}

// ValidateModelName accepts the whisper model sizes this tool downloads.
func ValidateModelName(name string) error {
	for _, m := range modelNames {
		if name == m {
			return nil
		}
	}
	return fmt.Errorf("unknown model %q, expected one of %v", name, modelNames)
}

// ModelPath returns the on-disk location of the named ggml model.
func (c *Config) ModelPath(model string) string {
	return filepath.Join(c.ModelsDir, "ggml-"+model+".bin")
}

func defaultModelsDir() string {
	var base string
	switch runtime.GOOS {
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support")
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".local", "share")
		}
	}
	return filepath.Join(base, "koescript", "models")
}

func defaultLogDir() string {
	var base string
	switch runtime.GOOS {
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Logs")
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
			base = xdg
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".local", "state")
		}
	}
	return filepath.Join(base, "koescript")
}
