package platform

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeRunner maps "cmd arg..." prefixes to canned output.
type fakeRunner struct {
	responses map[string]string
	failures  map[string]bool
	calls     []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	for prefix, out := range f.responses {
		if strings.HasPrefix(key, prefix) {
			if f.failures[prefix] {
				return out, errors.New("exit status 1")
			}
			return out, nil
		}
	}
	return "", errors.New("command not found")
}

func TestForOSUnsupported(t *testing.T) {
	if _, err := ForOS("plan9", &fakeRunner{}); err == nil {
		t.Fatal("expected error for unsupported platform")
	}
}

func TestForOSKnownPlatforms(t *testing.T) {
	for _, goos := range []string{"darwin", "linux", "windows"} {
		s, err := ForOS(goos, &fakeRunner{})
		if err != nil {
			t.Fatalf("ForOS(%s): %v", goos, err)
		}
		if s.DriverName() == "" {
			t.Errorf("%s strategy has no driver name", goos)
		}
		if len(s.LoopbackKeywords()) == 0 {
			t.Errorf("%s strategy has no loopback keywords", goos)
		}
	}
}

func TestLinuxDriverPresent(t *testing.T) {
	run := &fakeRunner{responses: map[string]string{
		"pactl list modules": "Module #23\n\tName: module-loopback\n",
	}}
	s := &linuxStrategy{run: run}
	if !s.DriverPresent(context.Background()) {
		t.Error("expected loopback module to be detected")
	}
}

func TestLinuxDriverAbsentWhenPulseDown(t *testing.T) {
	s := &linuxStrategy{run: &fakeRunner{}}
	if s.DriverPresent(context.Background()) {
		t.Error("expected driver absent when pactl is unavailable")
	}
}

func TestLinuxInstallWithoutConsent(t *testing.T) {
	run := &fakeRunner{responses: map[string]string{"pactl": "ok"}}
	s := &linuxStrategy{run: run}

	outcome := s.InstallDriver(context.Background(), false)
	if outcome.OK {
		t.Error("install must not succeed without consent")
	}
	if outcome.Instructions == "" {
		t.Error("refusal must carry manual instructions")
	}
	if len(run.calls) != 0 {
		t.Errorf("no commands may run without consent, saw %v", run.calls)
	}
}

func TestLinuxInstallWithConsent(t *testing.T) {
	run := &fakeRunner{responses: map[string]string{
		"pactl load-module": "23",
	}}
	s := &linuxStrategy{run: run}

	outcome := s.InstallDriver(context.Background(), true)
	if !outcome.OK {
		t.Errorf("expected install success, got %q", outcome.Message)
	}
}

func TestLinuxInstallFailureIsStructured(t *testing.T) {
	run := &fakeRunner{
		responses: map[string]string{"pactl load-module": "Failure: Module initialization failed"},
		failures:  map[string]bool{"pactl load-module": true},
	}
	s := &linuxStrategy{run: run}

	outcome := s.InstallDriver(context.Background(), true)
	if outcome.OK {
		t.Error("expected failure outcome")
	}
	if outcome.Instructions == "" {
		t.Error("failure must carry manual instructions")
	}
}

func TestDarwinDriverPresentViaBrew(t *testing.T) {
	run := &fakeRunner{responses: map[string]string{
		"brew list blackhole-2ch": "/opt/homebrew/Cellar/blackhole-2ch/0.6.0",
	}}
	s := &darwinStrategy{run: run}
	if !s.DriverPresent(context.Background()) {
		t.Error("expected BlackHole to be detected via brew")
	}
}

func TestDarwinDriverPresentViaProfiler(t *testing.T) {
	run := &fakeRunner{
		responses: map[string]string{
			"brew list blackhole-2ch":         "Error: no such keg",
			"system_profiler SPAudioDataType": "Devices:\n  BlackHole 2ch:\n",
		},
		failures: map[string]bool{"brew list blackhole-2ch": true},
	}
	s := &darwinStrategy{run: run}
	if !s.DriverPresent(context.Background()) {
		t.Error("expected BlackHole to be detected via system_profiler")
	}
}

func TestDarwinGPUDetect(t *testing.T) {
	run := &fakeRunner{responses: map[string]string{
		"sysctl machdep.cpu.brand_string": "machdep.cpu.brand_string: Apple M2 Pro",
	}}
	s := &darwinStrategy{run: run}

	gpu := s.DetectGPU(context.Background())
	if gpu.Backend != "metal" {
		t.Errorf("backend = %q, want metal", gpu.Backend)
	}
	if gpu.Name != "Apple M2 Pro" {
		t.Errorf("name = %q, want Apple M2 Pro", gpu.Name)
	}
}

func TestDarwinGPUDetectIntel(t *testing.T) {
	run := &fakeRunner{responses: map[string]string{
		"sysctl machdep.cpu.brand_string": "machdep.cpu.brand_string: Intel(R) Core(TM) i7",
	}}
	s := &darwinStrategy{run: run}
	if gpu := s.DetectGPU(context.Background()); gpu.Backend != "" {
		t.Errorf("expected CPU-only on Intel, got %q", gpu.Backend)
	}
}

func TestWindowsInstallIsManualOnly(t *testing.T) {
	s := &windowsStrategy{run: &fakeRunner{}}
	outcome := s.InstallDriver(context.Background(), true)
	if outcome.OK {
		t.Error("VB-CABLE install should report manual instructions")
	}
	if !strings.Contains(outcome.Instructions, "vb-audio.com") {
		t.Errorf("instructions should link the vendor download, got %q", outcome.Instructions)
	}
}

func TestCudaGPUDetect(t *testing.T) {
	run := &fakeRunner{responses: map[string]string{
		"nvidia-smi": "NVIDIA GeForce RTX 4070",
	}}
	s := &linuxStrategy{run: run}

	gpu := s.DetectGPU(context.Background())
	if gpu.Backend != "cuda" || gpu.Name != "NVIDIA GeForce RTX 4070" {
		t.Errorf("unexpected GPU info: %+v", gpu)
	}
}

func TestDetectWithAssemblesCapabilities(t *testing.T) {
	run := &fakeRunner{responses: map[string]string{
		"pactl list modules": "Name: module-loopback",
		"nvidia-smi":         "NVIDIA T4",
	}}
	s := &linuxStrategy{run: run}

	caps := DetectWith(context.Background(), "linux", s)
	if caps.OS != "linux" {
		t.Errorf("OS = %q", caps.OS)
	}
	if !caps.DriverInstalled {
		t.Error("expected DriverInstalled")
	}
	if caps.GPU.Backend != "cuda" {
		t.Errorf("GPU backend = %q, want cuda", caps.GPU.Backend)
	}
	if caps.PreferredAdapter != "portaudio" {
		t.Errorf("preferred adapter = %q", caps.PreferredAdapter)
	}
	if caps.Threads < 1 {
		t.Errorf("threads = %d", caps.Threads)
	}
}
