package platform

import (
	"context"
	"fmt"
	"strings"
)

const pulseInstructions = `Load the PulseAudio loopback module manually:
  pactl load-module module-loopback latency_msec=1
To persist across reboots add "load-module module-loopback" to
/etc/pulse/default.pa. PipeWire hosts expose the same pactl interface.`

// linuxStrategy relies on the PulseAudio (or PipeWire-pulse) loopback
// module; monitor sources make system output capturable as input.
type linuxStrategy struct {
	run Runner
}

func (s *linuxStrategy) Name() string       { return "Linux" }
func (s *linuxStrategy) DriverName() string { return "PulseAudio Loopback" }

func (s *linuxStrategy) LoopbackKeywords() []string {
	return []string{"pulse", "monitor", "loopback", "null", "sink"}
}

func (s *linuxStrategy) PreferredAdapter() string { return "portaudio" }

func (s *linuxStrategy) DriverPresent(ctx context.Context) bool {
	out, err := s.run.Run(ctx, "pactl", "list", "modules")
	if err != nil {
		// pactl missing or the daemon is down; enumeration will surface the
		// hard error, this probe only answers the driver question.
		return false
	}
	return strings.Contains(out, "module-loopback")
}

func (s *linuxStrategy) InstallDriver(ctx context.Context, consent bool) InstallOutcome {
	if !consent {
		return InstallOutcome{
			Message:      "driver install requires explicit consent",
			Instructions: pulseInstructions,
		}
	}
	out, err := s.run.Run(ctx, "pactl", "load-module", "module-loopback", "latency_msec=1")
	if err != nil {
		return InstallOutcome{
			Message:      fmt.Sprintf("loading module-loopback failed: %s", firstLines(out, 3)),
			Instructions: pulseInstructions,
		}
	}
	return InstallOutcome{OK: true, Message: "PulseAudio loopback module loaded"}
}

func (s *linuxStrategy) DetectGPU(ctx context.Context) GPUInfo {
	out, err := s.run.Run(ctx, "nvidia-smi", "--query-gpu=name", "--format=csv,noheader")
	if err == nil && out != "" {
		return GPUInfo{Backend: "cuda", Name: firstLines(out, 1)}
	}
	return GPUInfo{}
}
