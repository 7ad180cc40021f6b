package audio

import (
	"math"
	"time"
)

// Frame is one fixed-duration buffer of mono/interleaved float32 samples.
// Ownership transfers to the transcription stage for one call; frames are
// not retained or replayed.
type Frame struct {
	Samples    []float32
	SampleRate int
	Seq        uint64
	Captured   time.Time

	// Degraded marks a frame whose tail was silence-padded after an OS
	// buffer underrun. Full length is still guaranteed.
	Degraded bool
}

// Duration returns the playback time covered by the frame.
func (f *Frame) Duration() time.Duration {
	if f.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(len(f.Samples)) / float64(f.SampleRate) * float64(time.Second))
}

// RMS returns the root-mean-square energy of the frame, used by the phrase
// assembler to separate speech from silence.
func (f *Frame) RMS() float64 {
	if len(f.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range f.Samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(f.Samples)))
}
