package platform

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// FindWhisperBinary locates a whisper.cpp CLI binary in the places users
// actually build or install it, falling back to PATH lookup. Returns "" when
// nothing is found; the transcription selector then uses the CPU engine.
func FindWhisperBinary() string {
	binary := "whisper-cli"
	legacy := "main"
	if runtime.GOOS == "windows" {
		binary = "whisper-cli.exe"
		legacy = "main.exe"
	}

	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, "whisper.cpp", "build", "bin", binary),
			filepath.Join(home, "whisper.cpp", legacy),
			filepath.Join(home, ".whisper.cpp", "build", "bin", binary),
			filepath.Join(home, ".whisper.cpp", legacy),
		)
	}
	if runtime.GOOS == "windows" {
		candidates = append(candidates,
			filepath.Join(`C:\Program Files\whisper.cpp`, binary),
			filepath.Join(`C:\Program Files (x86)\whisper.cpp`, binary),
		)
	} else {
		candidates = append(candidates,
			filepath.Join("/usr/local/bin", binary),
			filepath.Join("/usr/bin", binary),
		)
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	if path, err := exec.LookPath(binary); err == nil {
		return path
	}
	return ""
}
