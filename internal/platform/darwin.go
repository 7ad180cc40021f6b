package platform

import (
	"context"
	"fmt"
	"strings"
)

const blackholeInstructions = `Install BlackHole manually:
  brew install blackhole-2ch
then create a Multi-Output Device in Audio MIDI Setup that includes BlackHole,
and select it as the system output.`

// darwinStrategy captures system audio through the BlackHole virtual driver
// and accelerates transcription with Metal on Apple Silicon.
type darwinStrategy struct {
	run Runner
}

func (s *darwinStrategy) Name() string       { return "macOS" }
func (s *darwinStrategy) DriverName() string { return "BlackHole 2ch" }

func (s *darwinStrategy) LoopbackKeywords() []string {
	return []string{"blackhole", "loopback", "soundflower", "virtual", "aggregate"}
}

func (s *darwinStrategy) PreferredAdapter() string { return "portaudio" }

func (s *darwinStrategy) DriverPresent(ctx context.Context) bool {
	if out, err := s.run.Run(ctx, "brew", "list", "blackhole-2ch"); err == nil && out != "" {
		return true
	}
	out, err := s.run.Run(ctx, "system_profiler", "SPAudioDataType")
	return err == nil && strings.Contains(out, "BlackHole")
}

func (s *darwinStrategy) InstallDriver(ctx context.Context, consent bool) InstallOutcome {
	if !consent {
		return InstallOutcome{
			Message:      "driver install requires explicit consent",
			Instructions: blackholeInstructions,
		}
	}
	if _, err := s.run.Run(ctx, "which", "brew"); err != nil {
		return InstallOutcome{
			Message:      "Homebrew not found",
			Instructions: "Install Homebrew from https://brew.sh/ then re-run, or:\n" + blackholeInstructions,
		}
	}
	if out, err := s.run.Run(ctx, "brew", "install", "blackhole-2ch"); err != nil {
		return InstallOutcome{
			Message:      fmt.Sprintf("brew install failed: %s", firstLines(out, 3)),
			Instructions: blackholeInstructions,
		}
	}
	return InstallOutcome{OK: true, Message: "BlackHole installed via Homebrew"}
}

func (s *darwinStrategy) DetectGPU(ctx context.Context) GPUInfo {
	out, err := s.run.Run(ctx, "sysctl", "machdep.cpu.brand_string")
	if err == nil && strings.Contains(out, "Apple M") {
		name := out
		if i := strings.Index(out, ":"); i >= 0 {
			name = strings.TrimSpace(out[i+1:])
		}
		return GPUInfo{Backend: "metal", Name: name}
	}
	return GPUInfo{}
}

func firstLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
