package transcribe

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/koescript/koescript/internal/platform"
)

// Select picks the transcription backend for this run. The external
// whisper-cli process wins when a binary and a valid ggml model are present
// and the binary answers a probe; anything short of that falls back to the
// in-process CPU engine. A missing GPU is never an error.
func Select(ctx context.Context, caps platform.Capabilities, cfg Config, log zerolog.Logger) (Backend, error) {
	bin := cfg.BinaryOverride
	if bin == "" {
		bin = caps.WhisperBin
	}

	if bin != "" {
		if err := ValidateModel(cfg.ModelPath); err != nil {
			log.Warn().Err(err).Msg("model unusable for whisper-cli, trying CPU engine")
		} else {
			pb := NewProcessBackend(bin, cfg, log)
			if err := pb.Probe(ctx); err != nil {
				log.Warn().Err(err).Str("bin", bin).Msg("whisper-cli probe failed, falling back to CPU engine")
			} else {
				log.Info().
					Str("bin", bin).
					Str("gpu", caps.GPU.Backend).
					Msg("using whisper-cli backend")
				return pb, nil
			}
		}
	} else {
		log.Info().Msg("no whisper-cli binary found, using CPU engine")
	}

	engine, err := NewEngine(cfg.ModelPath, cfg.Language)
	if err != nil {
		return nil, err
	}
	return NewEngineBackend(engine, cfg.Language, log), nil
}
