package transcribe

// Engine is the in-process CPU inference path. The real implementation links
// whisper.cpp via cgo and is selected with the whisper_cpp build tag; the
// default build ships a stub so the binary builds without a C toolchain.
type Engine interface {
	// Process runs inference over one chunk of 16 kHz mono samples and
	// returns the recognized text, possibly empty for silence.
	Process(samples []float32) (string, error)

	Close() error
}
