package transcribe

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// ggml single-file model magic, little-endian on disk.
const ggmlMagic = 0x67676d6c

// Model files smaller than this cannot hold even the tiny weights; treat
// them as truncated downloads.
const minModelSize = 1 << 20

// ValidateModel checks that path points at a usable ggml whisper model.
// Downloading and consent prompting belong to the configuration layer; this
// only opens and inspects the file.
func ValidateModel(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat model: %w", err)
	}
	if info.Size() < minModelSize {
		return fmt.Errorf("model %s is %d bytes, too small to be a ggml model", path, info.Size())
	}

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return fmt.Errorf("read model header: %w", err)
	}
	if binary.LittleEndian.Uint32(magic[:]) != ggmlMagic {
		return fmt.Errorf("model %s is not a ggml file", path)
	}
	return nil
}
