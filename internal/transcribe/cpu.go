package transcribe

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/koescript/koescript/internal/audio"
)

// EngineBackend adapts the in-process CPU Engine to the Backend contract.
// It is the unconditional fallback: selection never fails just because no
// GPU-capable binary exists.
type EngineBackend struct {
	engine   Engine
	language string
	log      zerolog.Logger
}

func NewEngineBackend(engine Engine, language string, log zerolog.Logger) *EngineBackend {
	return &EngineBackend{
		engine:   engine,
		language: language,
		log:      log.With().Str("component", "transcribe").Str("backend", "cpu").Logger(),
	}
}

func (b *EngineBackend) Name() string { return "cpu" }

func (b *EngineBackend) Transcribe(ctx context.Context, frame *audio.Frame) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, &TranscriptionError{Seq: frame.Seq, Backend: b.Name(), Err: err}
	}

	text, err := b.engine.Process(frame.Samples)
	if err != nil {
		return Result{}, &TranscriptionError{Seq: frame.Seq, Backend: b.Name(), Err: err}
	}
	b.log.Debug().Uint64("seq", frame.Seq).Int("chars", len(text)).Msg("frame transcribed")
	return Result{Text: text, Language: b.language, Seq: frame.Seq}, nil
}

func (b *EngineBackend) Close() error { return b.engine.Close() }
