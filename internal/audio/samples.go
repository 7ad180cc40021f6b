package audio

// downmixInterleaved averages interleaved multi-channel samples into mono.
// Mono input is copied into a fresh slice so callers can retain the result.
func downmixInterleaved(in []float32, channels, frames int) []float32 {
	out := make([]float32, frames)
	if channels <= 1 {
		copy(out, in)
		return out
	}
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			idx := i*channels + c
			if idx < len(in) {
				sum += in[idx]
			}
		}
		out[i] = sum / float32(channels)
	}
	return out
}
