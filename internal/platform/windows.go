package platform

import (
	"context"
	"strings"
)

const vbCableInstructions = `Install VB-CABLE manually:
  1. Download from https://vb-audio.com/Cable/
  2. Run the installer as Administrator and reboot.
Set "CABLE Input" as the default playback device to route system audio.
WASAPI loopback capture also works without a virtual cable on most hosts.`

// windowsStrategy prefers WASAPI loopback, which records any render
// endpoint directly; VB-CABLE covers hosts where loopback is unavailable.
type windowsStrategy struct {
	run Runner
}

func (s *windowsStrategy) Name() string       { return "Windows" }
func (s *windowsStrategy) DriverName() string { return "VB-CABLE" }

func (s *windowsStrategy) LoopbackKeywords() []string {
	return []string{"cable", "vb-audio", "stereo mix", "what u hear", "wave out", "loopback"}
}

func (s *windowsStrategy) PreferredAdapter() string { return "wasapi" }

func (s *windowsStrategy) DriverPresent(ctx context.Context) bool {
	out, err := s.run.Run(ctx, "powershell", "-NoProfile", "-Command",
		"Get-CimInstance Win32_SoundDevice | Select-Object -ExpandProperty Name")
	if err != nil {
		return false
	}
	lower := strings.ToLower(out)
	return strings.Contains(lower, "vb-audio") || strings.Contains(lower, "cable")
}

func (s *windowsStrategy) InstallDriver(ctx context.Context, consent bool) InstallOutcome {
	if !consent {
		return InstallOutcome{
			Message:      "driver install requires explicit consent",
			Instructions: vbCableInstructions,
		}
	}
	// The VB-CABLE installer needs an interactive elevation prompt; there is
	// no unattended path worth automating, so report manual instructions.
	return InstallOutcome{
		Message:      "VB-CABLE has no unattended installer",
		Instructions: vbCableInstructions,
	}
}

func (s *windowsStrategy) DetectGPU(ctx context.Context) GPUInfo {
	out, err := s.run.Run(ctx, "nvidia-smi", "--query-gpu=name", "--format=csv,noheader")
	if err == nil && out != "" {
		return GPUInfo{Backend: "cuda", Name: firstLines(out, 1)}
	}
	return GPUInfo{}
}
