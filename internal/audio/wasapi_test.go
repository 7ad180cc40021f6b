package audio

import (
	"context"
	"testing"
	"time"
)

func newIdleWASAPIHandle(buffered int) *wasapiHandle {
	h := &wasapiHandle{
		cfg: CaptureConfig{
			SampleRate:    16000,
			Channels:      1,
			FrameDuration: 20 * time.Millisecond,
		},
		channels: 1,
		samples:  make(chan float32, 16000),
	}
	for i := 0; i < buffered; i++ {
		h.samples <- 0.25
	}
	return h
}

func TestWASAPIReadFramePadsSilentDevice(t *testing.T) {
	h := newIdleWASAPIHandle(0)

	frame, err := h.ReadFrame(context.Background())
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !frame.Degraded {
		t.Error("starved read must be flagged degraded")
	}
	if want := h.cfg.FrameSamples(); len(frame.Samples) != want {
		t.Fatalf("frame has %d samples, want full length %d", len(frame.Samples), want)
	}
	for i, s := range frame.Samples {
		if s != 0 {
			t.Fatalf("sample %d = %f, want silence", i, s)
		}
	}
}

func TestWASAPIReadFramePadsPartialDelivery(t *testing.T) {
	h := newIdleWASAPIHandle(100)

	frame, err := h.ReadFrame(context.Background())
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !frame.Degraded {
		t.Error("short delivery must be flagged degraded")
	}
	if want := h.cfg.FrameSamples(); len(frame.Samples) != want {
		t.Fatalf("frame has %d samples, want full length %d", len(frame.Samples), want)
	}
	for i := 0; i < 100; i++ {
		if frame.Samples[i] != 0.25 {
			t.Fatalf("sample %d = %f, want delivered value", i, frame.Samples[i])
		}
	}
	for i := 100; i < len(frame.Samples); i++ {
		if frame.Samples[i] != 0 {
			t.Fatalf("sample %d = %f, want silence padding", i, frame.Samples[i])
		}
	}
}

func TestWASAPIReadFrameFullDeliveryNotDegraded(t *testing.T) {
	h := newIdleWASAPIHandle(0)
	for i := 0; i < h.cfg.FrameSamples(); i++ {
		h.samples <- 0.5
	}

	frame, err := h.ReadFrame(context.Background())
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if frame.Degraded {
		t.Error("full delivery must not be flagged degraded")
	}
	if frame.Seq != 1 {
		t.Errorf("seq = %d, want 1", frame.Seq)
	}
}

func TestWASAPIReadFrameHonorsCancellation(t *testing.T) {
	h := newIdleWASAPIHandle(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.ReadFrame(ctx); err != context.Canceled {
		t.Errorf("ReadFrame = %v, want context.Canceled", err)
	}
}
