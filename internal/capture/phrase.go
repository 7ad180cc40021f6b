package capture

import (
	"time"

	"github.com/koescript/koescript/internal/audio"
)

// PhraseConfig tunes how raw frames are merged into utterances before
// transcription. Short models do much better on whole phrases than on
// isolated half-second slices.
type PhraseConfig struct {
	Enabled         bool
	EnergyThreshold float64       // RMS below this counts as silence
	SilenceTimeout  time.Duration // silence that ends a phrase
	MaxDuration     time.Duration // emit even mid-speech past this
	HardCap         time.Duration // absolute ceiling, runaway guard
}

// DefaultPhraseConfig returns the tuning that works well for speech at
// 16 kHz.
func DefaultPhraseConfig() PhraseConfig {
	return PhraseConfig{
		Enabled:         true,
		EnergyThreshold: 0.0015,
		SilenceTimeout:  600 * time.Millisecond,
		MaxDuration:     4 * time.Second,
		HardCap:         30 * time.Second,
	}
}

// Assembler accumulates frames into phrases. Not safe for concurrent use;
// the pipeline feeds it from a single goroutine.
type Assembler struct {
	cfg     PhraseConfig
	pending []*audio.Frame
	voiced  time.Duration // speech time only
	total   time.Duration // wall time since the phrase opened
	silence time.Duration
}

func NewAssembler(cfg PhraseConfig) *Assembler {
	return &Assembler{cfg: cfg}
}

// Feed adds one frame. It returns a merged phrase frame and true when a
// phrase boundary is reached; otherwise the frame is buffered or, for
// leading silence, discarded.
func (a *Assembler) Feed(frame *audio.Frame) (*audio.Frame, bool) {
	speech := frame.RMS() >= a.cfg.EnergyThreshold

	if len(a.pending) == 0 {
		if !speech {
			return nil, false
		}
		a.pending = append(a.pending, frame)
		a.voiced = frame.Duration()
		a.total = frame.Duration()
		a.silence = 0
		return nil, false
	}

	a.pending = append(a.pending, frame)
	a.total += frame.Duration()
	if speech {
		a.voiced += frame.Duration()
		a.silence = 0
	} else {
		a.silence += frame.Duration()
	}

	// MaxDuration bounds accumulated speech; HardCap bounds wall time so a
	// phrase that never quite goes silent cannot grow without limit.
	if a.silence >= a.cfg.SilenceTimeout ||
		a.voiced >= a.cfg.MaxDuration ||
		a.total >= a.cfg.HardCap {
		return a.merge(), true
	}
	return nil, false
}

// Flush emits whatever is buffered, for end-of-stream.
func (a *Assembler) Flush() (*audio.Frame, bool) {
	if len(a.pending) == 0 {
		return nil, false
	}
	return a.merge(), true
}

// merge concatenates the pending frames. The phrase inherits the first
// frame's sequence number and capture time so ordering holds downstream.
func (a *Assembler) merge() *audio.Frame {
	first := a.pending[0]
	total := 0
	for _, f := range a.pending {
		total += len(f.Samples)
	}
	samples := make([]float32, 0, total)
	degraded := false
	for _, f := range a.pending {
		samples = append(samples, f.Samples...)
		degraded = degraded || f.Degraded
	}

	a.pending = a.pending[:0]
	a.voiced = 0
	a.total = 0
	a.silence = 0

	return &audio.Frame{
		Samples:    samples,
		SampleRate: first.SampleRate,
		Seq:        first.Seq,
		Captured:   first.Captured,
		Degraded:   degraded,
	}
}
