package capture

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/koescript/koescript/internal/audio"
	"github.com/koescript/koescript/internal/transcribe"
)

// Consecutive transcription failures before the pipeline flags itself
// degraded. The stream keeps running either way.
const degradedThreshold = 5

// Pipeline drives frames from a Session through a transcription backend, one
// at a time and in sequence order. Per-frame backend failures are reported
// and skipped, never fatal.
type Pipeline struct {
	session   *Session
	backend   transcribe.Backend
	assembler *Assembler
	log       zerolog.Logger

	OnResult   func(transcribe.Result)
	OnError    func(error)
	OnDegraded func(consecutive int)
}

// NewPipeline wires a session to a backend. assembler may be nil to
// transcribe every frame individually.
func NewPipeline(session *Session, backend transcribe.Backend, assembler *Assembler, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		session:   session,
		backend:   backend,
		assembler: assembler,
		log:       log.With().Str("component", "pipeline").Logger(),
	}
}

// Run consumes frames until the session ends or ctx is canceled. A clean
// stop returns nil; a device fault or context error is returned as-is.
func (p *Pipeline) Run(ctx context.Context) error {
	consecutive := 0
	notified := false

	for {
		frame, err := p.session.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrSessionClosed) {
				if p.assembler != nil {
					if merged, ok := p.assembler.Flush(); ok {
						p.transcribeOne(ctx, merged, &consecutive, &notified)
					}
				}
				return nil
			}
			return err
		}

		if p.assembler != nil {
			merged, ok := p.assembler.Feed(frame)
			if !ok {
				continue
			}
			frame = merged
		}
		p.transcribeOne(ctx, frame, &consecutive, &notified)
	}
}

func (p *Pipeline) transcribeOne(ctx context.Context, frame *audio.Frame, consecutive *int, notified *bool) {
	res, err := p.backend.Transcribe(ctx, frame)
	if err != nil {
		*consecutive++
		p.log.Warn().Err(err).Uint64("seq", frame.Seq).Int("consecutive", *consecutive).Msg("frame failed")
		if p.OnError != nil {
			p.OnError(err)
		}
		if *consecutive >= degradedThreshold && !*notified {
			*notified = true
			p.log.Error().Int("failures", *consecutive).Msg("transcription degraded, audio continues")
			if p.OnDegraded != nil {
				p.OnDegraded(*consecutive)
			}
		}
		return
	}

	*consecutive = 0
	*notified = false
	if res.Text != "" && p.OnResult != nil {
		p.OnResult(res)
	}
}
