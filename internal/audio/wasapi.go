package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// WASAPIAdapter captures system audio through miniaudio's WASAPI loopback
// mode. PortAudio cannot record a render endpoint on Windows, so playback
// devices are surfaced here as loopback-capable endpoints and opened with
// the loopback device type.
type WASAPIAdapter struct {
	ctx *malgo.AllocatedContext
}

func NewWASAPI() (*WASAPIAdapter, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize miniaudio context: %w", ErrEnumeration)
	}
	return &WASAPIAdapter{ctx: ctx}, nil
}

func (a *WASAPIAdapter) Name() string { return "wasapi" }

func (a *WASAPIAdapter) Devices(dir Direction) ([]Device, error) {
	var out []Device

	if dir == DirAny || dir == DirInput {
		infos, err := a.ctx.Devices(malgo.Capture)
		if err != nil {
			return nil, fmt.Errorf("miniaudio capture devices: %w", ErrEnumeration)
		}
		for _, info := range infos {
			out = append(out, Device{
				ID:        info.Name(),
				Name:      info.Name(),
				Direction: DirInput,
				Channels:  1,
				Default:   info.IsDefault != 0,
			})
		}
	}

	// Every render endpoint is loopback-capable under WASAPI.
	if dir == DirAny || dir == DirOutput || dir == DirLoopback {
		infos, err := a.ctx.Devices(malgo.Playback)
		if err != nil {
			return nil, fmt.Errorf("miniaudio playback devices: %w", ErrEnumeration)
		}
		d := DirLoopback
		if dir == DirOutput {
			d = DirOutput
		}
		for _, info := range infos {
			out = append(out, Device{
				ID:        info.Name(),
				Name:      info.Name(),
				Direction: d,
				Channels:  2,
				Default:   info.IsDefault != 0,
			})
		}
	}
	return out, nil
}

func (a *WASAPIAdapter) Open(dev Device, cfg CaptureConfig) (Handle, error) {
	// Loopback mode records a playback endpoint; re-enumerate to map the
	// device back to its live miniaudio ID.
	infos, err := a.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("miniaudio playback devices: %w", ErrEnumeration)
	}
	var id *malgo.DeviceID
	for i := range infos {
		if infos[i].Name() == dev.ID {
			id = &infos[i].ID
			break
		}
	}
	if id == nil {
		return nil, fmt.Errorf("open %q: %w", dev.Name, ErrDeviceUnavailable)
	}

	deviceCfg := malgo.DefaultDeviceConfig(malgo.Loopback)
	deviceCfg.Capture.Format = malgo.FormatF32
	deviceCfg.Capture.Channels = uint32(dev.Channels)
	deviceCfg.Capture.DeviceID = id.Pointer()
	deviceCfg.SampleRate = uint32(cfg.SampleRate)

	h := &wasapiHandle{
		cfg:      cfg,
		channels: dev.Channels,
		samples:  make(chan float32, cfg.SampleRate*dev.Channels), // ~1s of buffer
	}

	device, err := malgo.InitDevice(a.ctx.Context, deviceCfg, malgo.DeviceCallbacks{
		Data: h.onData,
	})
	if err != nil {
		return nil, fmt.Errorf("open loopback for %q: %w", dev.Name, ErrDeviceUnavailable)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("start loopback for %q: %w", dev.Name, ErrDeviceUnavailable)
	}
	h.device = device
	return h, nil
}

func (a *WASAPIAdapter) Close() error {
	if a.ctx != nil {
		if err := a.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninit miniaudio context: %w", err)
		}
		a.ctx.Free()
		a.ctx = nil
	}
	return nil
}

type wasapiHandle struct {
	device   *malgo.Device
	cfg      CaptureConfig
	channels int
	samples  chan float32

	seq       uint64
	closeOnce sync.Once
}

// onData is invoked on miniaudio's audio thread. It must not block: when the
// hand-off channel is full the data is dropped there, and ReadFrame pads the
// resulting gap as a degraded frame.
func (h *wasapiHandle) onData(_, in []byte, frameCount uint32) {
	n := frameCount * uint32(h.channels)
	for i := uint32(0); i < n; i++ {
		off := i * 4
		if int(off)+4 > len(in) {
			return
		}
		bits := binary.LittleEndian.Uint32(in[off : off+4])
		select {
		case h.samples <- math.Float32frombits(bits):
		default:
			return
		}
	}
}

func (h *wasapiHandle) ReadFrame(ctx context.Context) (*Frame, error) {
	frames := int(float64(h.cfg.SampleRate) * h.cfg.FrameDuration.Seconds())
	interleaved := make([]float32, 0, frames*h.channels)
	degraded := false

	// Collect one frame quantum; if the device stops delivering for two
	// quanta the remainder is silence-padded instead of failing.
	deadline := time.NewTimer(2 * h.cfg.FrameDuration)
	defer deadline.Stop()

	for len(interleaved) < frames*h.channels {
		select {
		case s := <-h.samples:
			interleaved = append(interleaved, s)
		case <-deadline.C:
			for len(interleaved) < frames*h.channels {
				interleaved = append(interleaved, 0)
			}
			degraded = true
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	h.seq++
	return &Frame{
		Samples:    downmixInterleaved(interleaved, h.channels, frames),
		SampleRate: h.cfg.SampleRate,
		Seq:        h.seq,
		Captured:   time.Now(),
		Degraded:   degraded,
	}, nil
}

func (h *wasapiHandle) Close() error {
	h.closeOnce.Do(func() {
		if h.device != nil {
			h.device.Uninit()
			h.device = nil
		}
	})
	return nil
}
