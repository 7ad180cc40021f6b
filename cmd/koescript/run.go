package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/koescript/koescript/internal/audio"
	"github.com/koescript/koescript/internal/capture"
	"github.com/koescript/koescript/internal/config"
	"github.com/koescript/koescript/internal/logging"
	"github.com/koescript/koescript/internal/platform"
	"github.com/koescript/koescript/internal/transcribe"
)

// newAdapter picks the audio backend: WASAPI loopback on Windows, PortAudio
// everywhere else, overridable with --adapter.
func newAdapter(preferred string, strategy platform.Strategy) (audio.Adapter, error) {
	name := flagAdapter
	if name == "" {
		name = preferred
	}
	switch name {
	case "wasapi":
		return audio.NewWASAPI()
	case "portaudio", "":
		return audio.NewPortAudio(strategy.LoopbackKeywords())
	default:
		return nil, fmt.Errorf("unknown adapter %q", name)
	}
}

func runDevices() error {
	caps, strategy, err := platform.Detect(context.Background())
	if err != nil {
		return err
	}
	adapter, err := newAdapter(caps.PreferredAdapter, strategy)
	if err != nil {
		return err
	}
	defer adapter.Close()

	devices, err := audio.NewRegistry(adapter).List(audio.DirAny)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDIRECTION\tCHANNELS\tDEFAULT")
	for _, d := range devices {
		def := ""
		if d.Default {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", d.ID, d.Name, d.Direction, d.Channels, def)
	}
	return w.Flush()
}

func runInit() error {
	ctx := context.Background()
	caps, strategy, err := platform.Detect(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Platform:        %s\n", caps.OS)
	fmt.Printf("Loopback driver: %s", caps.DriverName)
	if caps.DriverInstalled {
		fmt.Println(" (installed)")
	} else {
		fmt.Println(" (missing)")
	}
	if caps.GPU.Backend != "" {
		fmt.Printf("GPU:             %s (%s)\n", caps.GPU.Name, caps.GPU.Backend)
	} else {
		fmt.Println("GPU:             none detected, CPU inference")
	}
	if caps.WhisperBin != "" {
		fmt.Printf("whisper-cli:     %s\n", caps.WhisperBin)
	} else {
		fmt.Println("whisper-cli:     not found, in-process engine will be used")
	}

	if flagInstallDriver && !caps.DriverInstalled {
		outcome := strategy.InstallDriver(ctx, flagYes)
		fmt.Println(outcome.Message)
		if outcome.Instructions != "" {
			fmt.Println()
			fmt.Println(outcome.Instructions)
		}
		if !outcome.OK && flagYes {
			return fmt.Errorf("driver install failed: %s", outcome.Message)
		}
	}

	if flagDownloadModel {
		cfg, err := config.Load(flagEnvFile)
		if err != nil {
			return err
		}
		if flagModel != "" {
			if err := config.ValidateModelName(flagModel); err != nil {
				return err
			}
			cfg.Model = flagModel
		}
		path := cfg.ModelPath(cfg.Model)
		if err := transcribe.ValidateModel(path); err == nil {
			fmt.Printf("Model %s already present at %s\n", cfg.Model, path)
			return nil
		}
		log := logging.New(cfg.LogDir, cfg.LogLevel)
		if err := transcribe.DownloadModel(ctx, cfg.Model, path, log); err != nil {
			return err
		}
		fmt.Printf("Model %s ready at %s\n", cfg.Model, path)
	}
	return nil
}

func runConfig() error {
	cfg, err := config.Load(flagEnvFile)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "models dir\t%s\n", cfg.ModelsDir)
	fmt.Fprintf(w, "log dir\t%s\n", cfg.LogDir)
	fmt.Fprintf(w, "log level\t%s\n", cfg.LogLevel)
	fmt.Fprintf(w, "model\t%s\n", cfg.Model)
	fmt.Fprintf(w, "language\t%s\n", cfg.Language)
	fmt.Fprintf(w, "sample rate\t%d Hz\n", cfg.SampleRate)
	fmt.Fprintf(w, "frame\t%s\n", cfg.FrameDuration)
	fmt.Fprintf(w, "queue depth\t%d\n", cfg.QueueDepth)
	fmt.Fprintf(w, "beam size\t%d\n", cfg.BeamSize)
	fmt.Fprintf(w, "timeout\t%s\n", cfg.TranscribeTimeout)
	if cfg.WhisperBin != "" {
		fmt.Fprintf(w, "whisper bin\t%s\n", cfg.WhisperBin)
	}
	return w.Flush()
}

func runTranslate(ctx context.Context) error {
	cfg, err := config.Load(flagEnvFile)
	if err != nil {
		return err
	}
	if flagModel != "" {
		if err := config.ValidateModelName(flagModel); err != nil {
			return err
		}
		cfg.Model = flagModel
	}
	if flagLanguage != "" {
		cfg.Language = flagLanguage
	}

	log := logging.New(cfg.LogDir, cfg.LogLevel)

	caps, strategy, err := platform.Detect(ctx)
	if err != nil {
		return err
	}
	if flagLoopback && !caps.DriverInstalled && caps.OS != "windows" {
		log.Warn().
			Str("driver", caps.DriverName).
			Msg("loopback driver not detected, run 'koescript init --install-driver'")
	}

	adapter, err := newAdapter(caps.PreferredAdapter, strategy)
	if err != nil {
		return err
	}
	defer adapter.Close()

	direction := audio.DirInput
	if flagLoopback {
		direction = audio.DirLoopback
	}
	registry := audio.NewRegistry(adapter)
	var device audio.Device
	if flagDevice != "" {
		device, err = registry.Resolve(flagDevice, direction)
	} else {
		device, err = registry.Default(direction)
	}
	if err != nil {
		return err
	}

	bin := cfg.WhisperBin
	if bin == "" {
		bin = caps.WhisperBin
	}
	backend, err := transcribe.Select(ctx, caps, transcribe.Config{
		ModelPath:      cfg.ModelPath(cfg.Model),
		Language:       cfg.Language,
		BeamSize:       cfg.BeamSize,
		Threads:        caps.Threads,
		Timeout:        cfg.TranscribeTimeout,
		BinaryOverride: bin,
	}, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	captureCfg := audio.CaptureConfig{
		DeviceID:      device.ID,
		SampleRate:    cfg.SampleRate,
		Channels:      cfg.Channels,
		FrameDuration: cfg.FrameDuration,
		Loopback:      flagLoopback,
	}
	session := capture.NewSession(adapter, captureCfg, cfg.QueueDepth, log)
	if err := session.Start(ctx, device); err != nil {
		return err
	}
	defer session.Stop()

	pipeline := capture.NewPipeline(session, backend, capture.NewAssembler(capture.DefaultPhraseConfig()), log)
	pipeline.OnResult = func(r transcribe.Result) {
		fmt.Println(r.Text)
	}
	pipeline.OnDegraded = func(consecutive int) {
		fmt.Fprintf(os.Stderr, "transcription degraded after %d failures, audio capture continues\n", consecutive)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutting down")
		session.Stop()
	}()

	log.Info().
		Str("device", device.Name).
		Str("backend", backend.Name()).
		Str("model", cfg.Model).
		Msg("transcribing, press Ctrl+C to stop")
	return pipeline.Run(ctx)
}
