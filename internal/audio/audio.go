// Package audio provides device enumeration and frame-based capture across
// host audio subsystems. Two adapters exist: a generic PortAudio adapter and
// a WASAPI loopback adapter (miniaudio), hidden behind one interface.
package audio

import (
	"context"
	"time"
)

// Direction classifies an audio endpoint.
type Direction int

const (
	DirAny Direction = iota
	DirInput
	DirOutput
	DirLoopback
)

func (d Direction) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	case DirLoopback:
		return "loopback"
	default:
		return "any"
	}
}

// Device is a normalized audio endpoint record. Devices are snapshots taken
// during one enumeration; they are not valid across registry refreshes.
type Device struct {
	ID          string
	Name        string
	Direction   Direction
	Channels    int
	SampleRates []int
	Default     bool
}

// CaptureConfig describes one capture session. Constructed once from CLI
// input and platform defaults; owned by the session for its lifetime.
type CaptureConfig struct {
	DeviceID      string
	SampleRate    int
	Channels      int
	FrameDuration time.Duration
	Loopback      bool
}

// FrameSamples returns the number of samples in one full frame quantum.
func (c CaptureConfig) FrameSamples() int {
	return int(float64(c.SampleRate) * c.FrameDuration.Seconds() * float64(c.Channels))
}

// Adapter wraps one OS capture technology behind a uniform interface.
type Adapter interface {
	Name() string

	// Devices enumerates endpoints fresh from the OS on every call.
	Devices(dir Direction) ([]Device, error)

	// Open acquires a capture handle for a previously enumerated device.
	// Returns ErrDeviceUnavailable if the device vanished since enumeration;
	// the caller must re-enumerate, the handle is never recoverable.
	Open(dev Device, cfg CaptureConfig) (Handle, error)

	Close() error
}

// Handle is a scoped capture stream for one device.
type Handle interface {
	// ReadFrame blocks until one full frame quantum has been captured. It
	// never returns a short frame: on underrun the remainder is padded with
	// silence and the frame is flagged Degraded.
	ReadFrame(ctx context.Context) (*Frame, error)

	Close() error
}
