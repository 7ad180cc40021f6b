package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// PortAudioAdapter is the generic cross-platform capture adapter. PortAudio
// has no reliable system-audio loopback on Windows; there the WASAPI adapter
// is preferred. Loopback-capable endpoints (PulseAudio monitors, BlackHole,
// virtual cables) still surface here as regular input devices and are
// classified by name keywords supplied by the platform strategy.
type PortAudioAdapter struct {
	loopbackKeywords []string

	mu          sync.Mutex
	initialized bool
}

// NewPortAudio initializes PortAudio. keywords classify input endpoints
// whose names identify them as loopback/virtual devices.
func NewPortAudio(keywords []string) (*PortAudioAdapter, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", ErrEnumeration)
	}
	return &PortAudioAdapter{loopbackKeywords: keywords, initialized: true}, nil
}

func (a *PortAudioAdapter) Name() string { return "portaudio" }

func (a *PortAudioAdapter) Devices(dir Direction) ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio devices: %w", ErrEnumeration)
	}
	defaultIn, _ := portaudio.DefaultInputDevice()
	defaultOut, _ := portaudio.DefaultOutputDevice()

	var out []Device
	for _, info := range infos {
		if info.MaxInputChannels > 0 {
			d := Device{
				ID:          info.Name,
				Name:        info.Name,
				Direction:   DirInput,
				Channels:    info.MaxInputChannels,
				SampleRates: []int{int(info.DefaultSampleRate)},
				Default:     info == defaultIn,
			}
			if a.isLoopbackName(info.Name) {
				d.Direction = DirLoopback
			}
			if matchDirection(d.Direction, dir) {
				out = append(out, d)
			}
		}
		if info.MaxOutputChannels > 0 && (dir == DirAny || dir == DirOutput) {
			out = append(out, Device{
				ID:          info.Name,
				Name:        info.Name,
				Direction:   DirOutput,
				Channels:    info.MaxOutputChannels,
				SampleRates: []int{int(info.DefaultSampleRate)},
				Default:     info == defaultOut,
			})
		}
	}
	return out, nil
}

func (a *PortAudioAdapter) Open(dev Device, cfg CaptureConfig) (Handle, error) {
	// Re-resolve against live OS state; the device may have been unplugged
	// since enumeration.
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio devices: %w", ErrEnumeration)
	}
	var info *portaudio.DeviceInfo
	for _, i := range infos {
		if i.Name == dev.ID && i.MaxInputChannels > 0 {
			info = i
			break
		}
	}
	if info == nil {
		return nil, fmt.Errorf("open %q: %w", dev.Name, ErrDeviceUnavailable)
	}

	channels := cfg.Channels
	if channels > info.MaxInputChannels {
		channels = info.MaxInputChannels
	}

	frames := int(float64(cfg.SampleRate) * cfg.FrameDuration.Seconds())
	buffer := make([]float32, frames*channels)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: channels,
			Latency:  info.DefaultLowInputLatency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: frames,
	}, buffer)
	if err != nil {
		return nil, fmt.Errorf("open stream for %q: %w", dev.Name, ErrDeviceUnavailable)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start stream for %q: %w", dev.Name, ErrDeviceUnavailable)
	}

	return &portAudioHandle{
		stream:   stream,
		buffer:   buffer,
		channels: channels,
		cfg:      cfg,
	}, nil
}

func (a *PortAudioAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initialized {
		a.initialized = false
		return portaudio.Terminate()
	}
	return nil
}

func (a *PortAudioAdapter) isLoopbackName(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range a.loopbackKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func matchDirection(have, want Direction) bool {
	return want == DirAny || have == want
}

type portAudioHandle struct {
	stream   *portaudio.Stream
	buffer   []float32
	channels int
	cfg      CaptureConfig

	seq       uint64
	closeOnce sync.Once
	closeErr  error
}

func (h *portAudioHandle) ReadFrame(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	degraded := false
	// Blocks until the OS fills one frame quantum. An in-flight read cannot
	// be aborted, so cancellation latency is bounded by one frame duration.
	if err := h.stream.Read(); err != nil {
		if errors.Is(err, portaudio.InputOverflowed) {
			// Buffer starved; PortAudio already zero-fills the missed
			// region. Flag rather than fail: downstream transcription
			// tolerates silence better than a broken pipeline.
			degraded = true
		} else {
			return nil, fmt.Errorf("read frame: %w", ErrDeviceUnavailable)
		}
	}

	samples := downmixInterleaved(h.buffer, h.channels, len(h.buffer)/h.channels)
	if want := h.cfg.FrameSamples(); len(samples) < want {
		padded := make([]float32, want)
		copy(padded, samples)
		samples = padded
		degraded = true
	}

	h.seq++
	return &Frame{
		Samples:    samples,
		SampleRate: h.cfg.SampleRate,
		Seq:        h.seq,
		Captured:   time.Now(),
		Degraded:   degraded,
	}, nil
}

func (h *portAudioHandle) Close() error {
	h.closeOnce.Do(func() {
		h.stream.Stop()
		h.closeErr = h.stream.Close()
	})
	return h.closeErr
}
