package audio

import "testing"

func TestDownmixInterleaved(t *testing.T) {
	cases := []struct {
		name     string
		in       []float32
		channels int
		frames   int
		want     []float32
	}{
		{
			name:     "mono passthrough",
			in:       []float32{0.1, 0.2, 0.3, 0.4},
			channels: 1,
			frames:   4,
			want:     []float32{0.1, 0.2, 0.3, 0.4},
		},
		{
			name:     "stereo averaged",
			in:       []float32{0.0, 1.0, 0.5, 0.5, 1.0, 0.0, -0.5, 0.5},
			channels: 2,
			frames:   4,
			want:     []float32{0.5, 0.5, 0.5, 0.0},
		},
		{
			name:     "5.1 style multichannel",
			in:       []float32{1, 3, 5, 2, 4, 6},
			channels: 3,
			frames:   2,
			want:     []float32{3, 4},
		},
		{
			// A torn callback can deliver fewer samples than one frame
			// quantum; missing channel data averages as silence.
			name:     "ragged trailing frame",
			in:       []float32{0.4, 0.6, 0.8},
			channels: 2,
			frames:   2,
			want:     []float32{0.5, 0.4},
		},
		{
			name:     "empty input zero fills",
			in:       nil,
			channels: 2,
			frames:   3,
			want:     []float32{0, 0, 0},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := downmixInterleaved(tc.in, tc.channels, tc.frames)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d samples, want %d", len(got), len(tc.want))
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("sample %d = %f, want %f", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestDownmixInterleavedMonoCopies(t *testing.T) {
	in := []float32{0.1, 0.2}
	got := downmixInterleaved(in, 1, 2)
	if &got[0] == &in[0] {
		t.Fatal("mono result must be a fresh slice, not an alias")
	}
	in[0] = 0.9
	if got[0] != 0.1 {
		t.Fatal("mono result must not share backing storage with the input")
	}
}
