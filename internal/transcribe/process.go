package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/koescript/koescript/internal/audio"
)

// ProcessBackend shells out to a whisper.cpp CLI binary per frame. The
// binary carries whatever GPU acceleration it was built with, so this is the
// preferred backend whenever a binary and a valid model are on disk.
type ProcessBackend struct {
	bin       string
	modelPath string
	language  string
	beamSize  int
	threads   int
	timeout   time.Duration
	log       zerolog.Logger
}

// NewProcessBackend builds a backend around the given whisper-cli binary.
// Call Probe before trusting it with audio.
func NewProcessBackend(bin string, cfg Config, log zerolog.Logger) *ProcessBackend {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ProcessBackend{
		bin:       bin,
		modelPath: cfg.ModelPath,
		language:  cfg.Language,
		beamSize:  cfg.BeamSize,
		threads:   cfg.Threads,
		timeout:   timeout,
		log:       log.With().Str("component", "transcribe").Str("backend", "whisper-cli").Logger(),
	}
}

func (b *ProcessBackend) Name() string { return "whisper-cli" }

// Probe runs the binary once without audio to confirm it is executable and
// is actually a whisper.cpp build.
func (b *ProcessBackend) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, b.bin, "--help").CombinedOutput()
	text := string(out)
	// whisper-cli exits non-zero from --help on some builds; the usage
	// banner is the real signal.
	if strings.Contains(text, "usage") || strings.Contains(text, "--model") {
		return nil
	}
	if err != nil {
		return fmt.Errorf("probe %s: %w", b.bin, err)
	}
	return fmt.Errorf("probe %s: output does not look like whisper.cpp", b.bin)
}

func (b *ProcessBackend) Transcribe(ctx context.Context, frame *audio.Frame) (Result, error) {
	wavPath, err := writeTempWAV(frame.Samples, frame.SampleRate)
	if err != nil {
		return Result{}, &TranscriptionError{Seq: frame.Seq, Backend: b.Name(), Err: err}
	}
	defer os.Remove(wavPath)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	args := []string{
		"-m", b.modelPath,
		"-f", wavPath,
		"--beam-size", strconv.Itoa(b.beamSize),
		"--threads", strconv.Itoa(b.threads),
		"--no-timestamps",
	}
	if b.language != "" && b.language != "auto" {
		args = append(args, "--language", b.language)
	}

	start := time.Now()
	out, err := exec.CommandContext(ctx, b.bin, args...).Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s", b.timeout)
		}
		return Result{}, &TranscriptionError{Seq: frame.Seq, Backend: b.Name(), Err: err}
	}

	text := parseWhisperOutput(string(out))
	b.log.Debug().
		Uint64("seq", frame.Seq).
		Dur("elapsed", time.Since(start)).
		Int("chars", len(text)).
		Msg("frame transcribed")

	return Result{Text: text, Language: b.language, Seq: frame.Seq}, nil
}

func (b *ProcessBackend) Close() error { return nil }

// parseWhisperOutput strips whisper.cpp's diagnostic chatter from stdout and
// keeps only the transcript lines.
func parseWhisperOutput(out string) string {
	var kept []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isWhisperMetadata(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, " ")
}

func isWhisperMetadata(line string) bool {
	for _, prefix := range []string{"[", "whisper_", "main:", "system_info:", "ggml_"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return strings.Contains(line, "error:")
}
