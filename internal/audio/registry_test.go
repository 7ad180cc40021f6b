package audio

import (
	"errors"
	"testing"
	"time"
)

// fakeAdapter serves a canned device list; enumeration order is fixed.
type fakeAdapter struct {
	devices []Device
	err     error
	calls   int
}

func (f *fakeAdapter) Name() string { return "fake" }

func (f *fakeAdapter) Devices(dir Direction) ([]Device, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []Device
	for _, d := range f.devices {
		if dir == DirAny || d.Direction == dir {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeAdapter) Open(dev Device, cfg CaptureConfig) (Handle, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAdapter) Close() error { return nil }

func testDevices() []Device {
	return []Device{
		{ID: "mic0", Name: "Built-in Microphone", Direction: DirInput, Channels: 1, Default: true},
		{ID: "spk0", Name: "Built-in Output", Direction: DirOutput, Channels: 2, Default: true},
		// Virtual cable presents the same name as both directions.
		{ID: "cable-in", Name: "VB-Cable", Direction: DirInput, Channels: 2},
		{ID: "cable-loop", Name: "VB-Cable", Direction: DirLoopback, Channels: 2},
	}
}

func TestListFiltersByDirection(t *testing.T) {
	r := NewRegistry(&fakeAdapter{devices: testDevices()})

	inputs, err := r.List(DirInput)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	for _, d := range inputs {
		if d.Direction != DirInput {
			t.Errorf("List(DirInput) returned %s device %q", d.Direction, d.Name)
		}
	}
	if len(inputs) != 2 {
		t.Errorf("expected 2 input devices, got %d", len(inputs))
	}
}

func TestListIsIdempotent(t *testing.T) {
	fake := &fakeAdapter{devices: testDevices()}
	r := NewRegistry(fake)

	first, err := r.List(DirAny)
	if err != nil {
		t.Fatalf("first List: %v", err)
	}
	second, err := r.List(DirAny)
	if err != nil {
		t.Fatalf("second List: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("device count changed between calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("device %d changed identity: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
	if fake.calls != 2 {
		t.Errorf("expected fresh enumeration per call, adapter saw %d calls", fake.calls)
	}
}

func TestListPropagatesEnumerationError(t *testing.T) {
	r := NewRegistry(&fakeAdapter{err: ErrEnumeration})
	if _, err := r.List(DirAny); !errors.Is(err, ErrEnumeration) {
		t.Fatalf("expected ErrEnumeration, got %v", err)
	}
}

func TestResolveTieBreakPrefersDirection(t *testing.T) {
	r := NewRegistry(&fakeAdapter{devices: testDevices()})

	dev, err := r.Resolve("VB-Cable", DirLoopback)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dev.ID != "cable-loop" {
		t.Errorf("expected loopback endpoint, got %q", dev.ID)
	}
}

func TestResolveTieBreakFallsBackToDefault(t *testing.T) {
	devices := []Device{
		{ID: "a", Name: "Duplicate", Direction: DirInput},
		{ID: "b", Name: "Duplicate", Direction: DirInput, Default: true},
	}
	r := NewRegistry(&fakeAdapter{devices: devices})

	dev, err := r.Resolve("Duplicate", DirInput)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dev.ID != "b" {
		t.Errorf("expected OS-default entry, got %q", dev.ID)
	}
}

func TestResolveMissingDevice(t *testing.T) {
	r := NewRegistry(&fakeAdapter{devices: testDevices()})
	if _, err := r.Resolve("Ghost Device", DirInput); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	r := NewRegistry(&fakeAdapter{devices: testDevices()})
	dev, err := r.Resolve("built-in microphone", DirInput)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dev.ID != "mic0" {
		t.Errorf("expected mic0, got %q", dev.ID)
	}
}

func TestDefaultDevice(t *testing.T) {
	r := NewRegistry(&fakeAdapter{devices: testDevices()})
	dev, err := r.Default(DirInput)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if dev.ID != "mic0" {
		t.Errorf("expected mic0, got %q", dev.ID)
	}
}

func TestDefaultNoDevices(t *testing.T) {
	r := NewRegistry(&fakeAdapter{})
	if _, err := r.Default(DirLoopback); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestFrameDuration(t *testing.T) {
	f := &Frame{Samples: make([]float32, 8000), SampleRate: 16000}
	if got := f.Duration(); got != 500*time.Millisecond {
		t.Errorf("Duration = %v, want 500ms", got)
	}
}

func TestFrameRMSOfSilence(t *testing.T) {
	f := &Frame{Samples: make([]float32, 1024), SampleRate: 16000}
	if got := f.RMS(); got != 0 {
		t.Errorf("RMS of silence = %f, want 0", got)
	}
}

func TestFrameRMSOfTone(t *testing.T) {
	samples := make([]float32, 1000)
	for i := range samples {
		samples[i] = 0.5
	}
	f := &Frame{Samples: samples, SampleRate: 16000}
	got := f.RMS()
	if got < 0.499 || got > 0.501 {
		t.Errorf("RMS of constant 0.5 = %f, want 0.5", got)
	}
}

func TestCaptureConfigFrameSamples(t *testing.T) {
	cfg := CaptureConfig{SampleRate: 16000, Channels: 1, FrameDuration: 500 * time.Millisecond}
	if got := cfg.FrameSamples(); got != 8000 {
		t.Errorf("FrameSamples = %d, want 8000", got)
	}
}
