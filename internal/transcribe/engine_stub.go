//go:build !whisper_cpp

package transcribe

// stubEngine stands in when the binary is built without the whisper_cpp tag.
// It accepts audio and returns empty transcripts, keeping the pipeline and
// CLI fully functional for development and tests.
type stubEngine struct{}

// NewEngine returns the stub CPU engine. modelPath and language are accepted
// for interface parity with the cgo build.
func NewEngine(modelPath, language string) (Engine, error) {
	return stubEngine{}, nil
}

func (stubEngine) Process(samples []float32) (string, error) { return "", nil }

func (stubEngine) Close() error { return nil }
