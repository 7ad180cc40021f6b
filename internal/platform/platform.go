// Package platform resolves per-OS capture policy: which virtual loopback
// driver is expected, whether it is installed, which GPU acceleration path
// is available, and which capture adapter to prefer. Capabilities are
// resolved once per process and never mutated afterwards; a run started
// after the user changes audio drivers must re-resolve.
package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
)

// GPUInfo describes the detected acceleration path.
type GPUInfo struct {
	Backend string // "metal", "cuda", or "" for CPU-only
	Name    string
}

// Capabilities is the immutable result of platform detection.
type Capabilities struct {
	OS               string
	DriverName       string
	DriverInstalled  bool
	GPU              GPUInfo
	Threads          int
	PreferredAdapter string // "portaudio" or "wasapi"
	WhisperBin       string // external transcription binary, "" if absent
}

// InstallOutcome is the structured result of a loopback-driver install
// attempt. Failure is reported here, never as a process crash; Instructions
// always carries enough detail for manual-instructions mode.
type InstallOutcome struct {
	OK           bool
	Message      string
	Instructions string
}

// Strategy is the per-OS policy object.
type Strategy interface {
	Name() string

	// DriverName is the virtual loopback driver expected on this OS.
	DriverName() string

	// LoopbackKeywords classify device names as virtual/loopback endpoints.
	LoopbackKeywords() []string

	// DriverPresent probes live OS state for the loopback driver.
	DriverPresent(ctx context.Context) bool

	// InstallDriver performs the consent-gated driver install. It is the
	// only operation with side effects outside the process and never runs
	// without consent.
	InstallDriver(ctx context.Context, consent bool) InstallOutcome

	// DetectGPU probes for a supported acceleration path.
	DetectGPU(ctx context.Context) GPUInfo

	PreferredAdapter() string
}

// ForOS returns the strategy for a host OS identifier (runtime.GOOS values).
func ForOS(goos string, run Runner) (Strategy, error) {
	switch goos {
	case "darwin":
		return &darwinStrategy{run: run}, nil
	case "linux":
		return &linuxStrategy{run: run}, nil
	case "windows":
		return &windowsStrategy{run: run}, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// Detect resolves the host strategy once and assembles Capabilities.
func Detect(ctx context.Context) (Capabilities, Strategy, error) {
	s, err := ForOS(runtime.GOOS, NewRunner())
	if err != nil {
		return Capabilities{}, nil, err
	}
	return DetectWith(ctx, runtime.GOOS, s), s, nil
}

// DetectWith builds Capabilities from an explicit strategy. Split out from
// Detect so tests can inject fake strategies and probes.
func DetectWith(ctx context.Context, goos string, s Strategy) Capabilities {
	return Capabilities{
		OS:               goos,
		DriverName:       s.DriverName(),
		DriverInstalled:  s.DriverPresent(ctx),
		GPU:              s.DetectGPU(ctx),
		Threads:          defaultThreads(),
		PreferredAdapter: s.PreferredAdapter(),
		WhisperBin:       FindWhisperBinary(),
	}
}

// defaultThreads picks a transcription thread count from the host CPU,
// leaving headroom for the capture thread.
func defaultThreads() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 2 {
		return 4
	}
	if n > 8 {
		return 8
	}
	return n
}
