package player

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

// memSource serves canned s16le PCM as a pcmSource.
type memSource struct {
	*bytes.Reader
	rate     int
	channels int
}

func newMemSource(samples []int16, rate, channels int) *memSource {
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	return &memSource{Reader: bytes.NewReader(raw), rate: rate, channels: channels}
}

func (m *memSource) Length() int64     { return m.Size() }
func (m *memSource) SampleRate() int   { return m.rate }
func (m *memSource) ChannelCount() int { return m.channels }

func readSamples(t *testing.T, src io.Reader, n int) []int16 {
	t.Helper()
	raw := make([]byte, n*2)
	if _, err := io.ReadFull(src, raw); err != nil {
		t.Fatalf("ReadFull() error = %v", err)
	}
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return out
}

func TestConformPassesThroughNativeStreams(t *testing.T) {
	src := newMemSource([]int16{1, 2, 3, 4}, 48000, 2)
	got, err := conform(src)
	if err != nil {
		t.Fatalf("conform() error = %v", err)
	}
	if got != pcmSource(src) {
		t.Fatal("48 kHz stereo source was wrapped")
	}
}

func TestConformRejectsUnsupportedStreams(t *testing.T) {
	if _, err := conform(newMemSource(nil, 48000, 3)); err == nil {
		t.Fatal("conform() accepted a 3-channel source")
	}
	if _, err := conform(newMemSource(nil, 0, 2)); err == nil {
		t.Fatal("conform() accepted a zero sample rate")
	}
}

func TestStereoUpmix(t *testing.T) {
	src := newMemSource([]int16{100, -200, 300}, 48000, 1)
	got, err := conform(src)
	if err != nil {
		t.Fatalf("conform() error = %v", err)
	}
	if got.ChannelCount() != 2 {
		t.Fatalf("ChannelCount() = %d, want 2", got.ChannelCount())
	}
	if got.Length() != 12 {
		t.Fatalf("Length() = %d, want 12", got.Length())
	}

	samples := readSamples(t, got, 6)
	want := []int16{100, 100, -200, -200, 300, 300}
	for i := range want {
		if samples[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, samples[i], want[i])
		}
	}
	if _, err := got.Read(make([]byte, 4)); err != io.EOF {
		t.Fatalf("Read() past end error = %v, want io.EOF", err)
	}
}

func TestStereoUpmixSeek(t *testing.T) {
	src := newMemSource([]int16{100, -200, 300}, 48000, 1)
	got, err := conform(src)
	if err != nil {
		t.Fatalf("conform() error = %v", err)
	}
	if _, err := got.Seek(4, io.SeekStart); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	samples := readSamples(t, got, 2)
	if samples[0] != -200 || samples[1] != -200 {
		t.Fatalf("samples after seek = %v, want [-200 -200]", samples)
	}
}

func TestResamplerDoublesRate(t *testing.T) {
	// Two stereo frames at 24 kHz: even output frames land on source
	// frames, odd ones interpolate the midpoint.
	src := newMemSource([]int16{0, 0, 1000, -1000}, 24000, 2)
	got, err := conform(src)
	if err != nil {
		t.Fatalf("conform() error = %v", err)
	}
	if got.SampleRate() != 48000 {
		t.Fatalf("SampleRate() = %d, want 48000", got.SampleRate())
	}
	if got.Length() != 16 {
		t.Fatalf("Length() = %d, want 4 output frames", got.Length())
	}

	samples := readSamples(t, got, 8)
	// Midpoint rounds half away on the positive side and truncates
	// toward zero on the negative, so 0→1000 yields 500 while
	// 0→-1000 yields -499. The last frame holds the final source frame.
	want := []int16{0, 0, 500, -499, 1000, -1000, 1000, -1000}
	for i := range want {
		if samples[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, samples[i], want[i])
		}
	}
	if _, err := got.Read(make([]byte, 4)); err != io.EOF {
		t.Fatalf("Read() past end error = %v, want io.EOF", err)
	}
}

func TestResamplerSeek(t *testing.T) {
	src := newMemSource([]int16{0, 0, 1000, -1000}, 24000, 2)
	got, err := conform(src)
	if err != nil {
		t.Fatalf("conform() error = %v", err)
	}
	// Output frame 2 maps back to source frame 1.
	if _, err := got.Seek(8, io.SeekStart); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	samples := readSamples(t, got, 2)
	if samples[0] != 1000 || samples[1] != -1000 {
		t.Fatalf("samples after seek = %v, want [1000 -1000]", samples)
	}
}

func TestClampPCM(t *testing.T) {
	cases := []struct {
		in   int
		want int16
	}{
		{0, 0},
		{40000, 32767},
		{-40000, -32768},
		{-1, -1},
	}
	for _, c := range cases {
		if got := clampPCM(c.in); got != c.want {
			t.Fatalf("clampPCM(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
