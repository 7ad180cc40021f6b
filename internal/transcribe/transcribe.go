// Package transcribe selects and drives a speech-to-text backend: the
// external GPU-accelerated whisper.cpp process when present, otherwise an
// in-process CPU engine. Both sit behind one Backend contract; callers never
// learn which is active except through Name().
package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/koescript/koescript/internal/audio"
)

// Result is one transcription outcome, tagged with the originating frame's
// sequence number so downstream display/translation preserves ordering.
type Result struct {
	Text     string
	Language string
	Score    float64 // backend-reported confidence, 0 when unavailable
	Seq      uint64
}

// Backend converts audio frames to text.
type Backend interface {
	Name() string

	// Transcribe processes one frame. Backend-internal faults (process
	// crash, timeout, malformed output) surface as *TranscriptionError and
	// are scoped to that frame only; the capture session keeps streaming.
	Transcribe(ctx context.Context, frame *audio.Frame) (Result, error)

	Close() error
}

// TranscriptionError is a single-frame transcription failure. It never
// terminates a session.
type TranscriptionError struct {
	Seq     uint64
	Backend string
	Err     error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcribe frame %d (%s): %v", e.Seq, e.Backend, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// Config carries the transcription settings resolved from CLI input and
// platform defaults.
type Config struct {
	ModelPath      string
	Language       string // "auto" disables the language flag
	BeamSize       int
	Threads        int
	Timeout        time.Duration
	BinaryOverride string // skip discovery, use this whisper-cli path
}
