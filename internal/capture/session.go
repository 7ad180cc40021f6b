// Package capture owns the streaming pipeline between an audio device and a
// transcription backend: a producer goroutine pulling fixed-duration frames
// from the device and a consumer feeding them, in order, to the backend.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/koescript/koescript/internal/audio"
)

// ErrSessionClosed is returned by Next once the session has stopped and all
// buffered frames have been drained.
var ErrSessionClosed = errors.New("capture session closed")

// State tracks the session lifecycle. Transitions only move forward; a
// session is single-use.
type State int

const (
	StateIdle State = iota
	StateOpening
	StateStreaming
	StateDraining
	StateClosed
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Session streams frames from one device. The producer blocks when the
// frame queue is full; frames are never dropped, ordering is never reshuffled.
type Session struct {
	adapter audio.Adapter
	cfg     audio.CaptureConfig
	log     zerolog.Logger

	mu      sync.Mutex
	state   State
	handle  audio.Handle
	readErr error
	started bool

	frames   chan *audio.Frame
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

const defaultQueueDepth = 8

// NewSession prepares a session; no device is touched until Start.
func NewSession(adapter audio.Adapter, cfg audio.CaptureConfig, depth int, log zerolog.Logger) *Session {
	if depth <= 0 {
		depth = defaultQueueDepth
	}
	return &Session{
		adapter: adapter,
		cfg:     cfg,
		log:     log.With().Str("component", "capture").Logger(),
		frames:  make(chan *audio.Frame, depth),
		done:    make(chan struct{}),
	}
}

// Start opens the device and launches the producer. Calling Start on any
// state other than idle is an error.
func (s *Session) Start(ctx context.Context, dev audio.Device) error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("start capture: session is %s", state)
	}
	s.state = StateOpening
	s.mu.Unlock()

	handle, err := s.adapter.Open(dev, s.cfg)
	if err != nil {
		s.mu.Lock()
		s.state = StateError
		s.readErr = err
		s.mu.Unlock()
		close(s.frames)
		return fmt.Errorf("open %q: %w", dev.Name, err)
	}

	s.mu.Lock()
	s.handle = handle
	s.state = StateStreaming
	s.started = true
	s.mu.Unlock()

	s.log.Info().
		Str("device", dev.Name).
		Str("direction", dev.Direction.String()).
		Int("sample_rate", s.cfg.SampleRate).
		Dur("frame", s.cfg.FrameDuration).
		Msg("capture started")

	s.wg.Add(1)
	go s.produce(ctx, handle)
	return nil
}

func (s *Session) produce(ctx context.Context, handle audio.Handle) {
	defer s.wg.Done()
	defer close(s.frames)

	for {
		frame, err := handle.ReadFrame(ctx)
		if err != nil {
			select {
			case <-s.done:
			default:
				s.mu.Lock()
				s.state = StateError
				s.readErr = err
				s.mu.Unlock()
				s.log.Error().Err(err).Msg("capture read failed")
			}
			return
		}
		if frame.Degraded {
			s.log.Warn().Uint64("seq", frame.Seq).Msg("degraded frame, device fell behind")
		}
		select {
		case s.frames <- frame:
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Next returns the next frame in sequence order, blocking until one is
// available. After Stop it drains the queue, then reports ErrSessionClosed,
// or the device fault that ended the stream.
func (s *Session) Next(ctx context.Context) (*audio.Frame, error) {
	select {
	case frame, ok := <-s.frames:
		if !ok {
			s.mu.Lock()
			err := s.readErr
			s.mu.Unlock()
			if err != nil {
				return nil, err
			}
			return nil, ErrSessionClosed
		}
		return frame, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop closes the device exactly once and waits for the producer to exit.
// Buffered frames stay readable through Next until drained. Safe to call
// from any goroutine, any number of times.
func (s *Session) Stop() error {
	var closeErr error
	s.stopOnce.Do(func() {
		s.mu.Lock()
		if s.state == StateStreaming {
			s.state = StateDraining
		}
		handle := s.handle
		started := s.started
		s.mu.Unlock()

		close(s.done)
		if handle != nil {
			closeErr = handle.Close()
		}
		s.wg.Wait()
		if !started {
			s.mu.Lock()
			if s.state == StateIdle {
				close(s.frames)
			}
			s.mu.Unlock()
		}

		s.mu.Lock()
		// A device fault is terminal; a later Stop must not mask it.
		if s.state != StateError {
			s.state = StateClosed
		}
		s.mu.Unlock()
		s.log.Info().Msg("capture stopped")
	})
	return closeErr
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err reports the device fault that ended the stream, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readErr
}
