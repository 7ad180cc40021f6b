package transcribe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const modelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// ModelURL returns the published location of a ggml model by size name.
func ModelURL(model string) string {
	return fmt.Sprintf("%s/ggml-%s.bin", modelBaseURL, model)
}

// progressWriter logs download progress every couple of seconds.
type progressWriter struct {
	total      int64
	downloaded int64
	lastLog    time.Time
	model      string
	log        zerolog.Logger
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.downloaded += int64(len(p))
	now := time.Now()
	if now.Sub(pw.lastLog) >= 2*time.Second || pw.downloaded >= pw.total {
		pw.lastLog = now
		pw.log.Info().
			Str("model", pw.model).
			Float64("percent", float64(pw.downloaded)/float64(pw.total)*100).
			Float64("downloaded_mb", float64(pw.downloaded)/1024/1024).
			Float64("total_mb", float64(pw.total)/1024/1024).
			Msg("downloading model")
	}
	return len(p), nil
}

// DownloadModel fetches the named ggml model to destPath. The file is
// written to a temp name and renamed only after it passes validation, so a
// torn download never shadows a good model.
func DownloadModel(ctx context.Context, model, destPath string, log zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create models directory: %w", err)
	}

	url := ModelURL(model)
	tmpPath := destPath + ".tmp"
	defer os.Remove(tmpPath)

	log.Info().Str("model", model).Str("url", url).Msg("starting model download")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download model: HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	var writer io.Writer = out
	if resp.ContentLength > 0 {
		writer = io.MultiWriter(out, &progressWriter{
			total:   resp.ContentLength,
			model:   model,
			lastLog: time.Now(),
			log:     log,
		})
	} else {
		log.Warn().Str("model", model).Msg("no content length, progress unavailable")
	}

	if _, err := io.Copy(writer, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("write model file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}

	if err := ValidateModel(tmpPath); err != nil {
		return fmt.Errorf("downloaded model failed validation: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("move model into place: %w", err)
	}

	log.Info().Str("model", model).Str("path", destPath).Msg("model downloaded")
	return nil
}
