package audio

import "errors"

var (
	// ErrEnumeration means the OS audio subsystem is unreachable (e.g.
	// PulseAudio not running). Reported immediately, never retried silently.
	ErrEnumeration = errors.New("audio subsystem unreachable")

	// ErrDeviceUnavailable means the selected device vanished between
	// enumeration and open, or during streaming.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
)
