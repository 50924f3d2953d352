package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// pcmSource is implemented by all format-specific decoders: a seekable
// stream of 16-bit little-endian PCM at the source rate and channel
// count.
type pcmSource interface {
	io.ReadSeeker
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// openSource picks a decoder by file extension.
func openSource(f *os.File) (pcmSource, error) {
	switch ext := strings.ToLower(filepath.Ext(f.Name())); ext {
	case ".mp3":
		return openMP3(f)
	case ".wav":
		return openWAV(f)
	case ".flac":
		return openFLAC(f)
	case ".ogg":
		return openOGG(f)
	default:
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}
}

// carry buffers decoded bytes that did not fit the caller's slice.
type carry struct {
	buf []byte
}

func (c *carry) drain(p []byte) (int, bool) {
	if len(c.buf) == 0 {
		return 0, false
	}
	n := copy(p, c.buf)
	c.buf = c.buf[n:]
	return n, true
}

func (c *carry) emit(p, raw []byte) int {
	n := copy(p, raw)
	if n < len(raw) {
		c.buf = append(c.buf[:0], raw[n:]...)
	}
	return n
}

func (c *carry) clear() {
	c.buf = nil
}

func clampPCM(sample int) int16 {
	if sample > 32767 {
		return 32767
	}
	if sample < -32768 {
		return -32768
	}
	return int16(sample)
}

// --- MP3 ---

// go-mp3 already emits stereo s16le at the source rate, so this is a
// thin shim.
type mp3Source struct {
	dec *mp3.Decoder
}

func openMP3(f *os.File) (*mp3Source, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}
	return &mp3Source{dec: dec}, nil
}

func (s *mp3Source) Read(p []byte) (int, error) { return s.dec.Read(p) }
func (s *mp3Source) Seek(offset int64, whence int) (int64, error) {
	return s.dec.Seek(offset, whence)
}
func (s *mp3Source) Length() int64     { return s.dec.Length() }
func (s *mp3Source) SampleRate() int   { return s.dec.SampleRate() }
func (s *mp3Source) ChannelCount() int { return 2 }

// --- WAV ---

type wavSource struct {
	file       *os.File
	carry      carry
	pos        int64
	length     int64
	pcmStart   int64
	sampleRate int
	channels   int
	bitDepth   int
}

func openWAV(f *os.File) (*wavSource, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	srcFrameBytes := int64(channels) * int64(bitDepth) / 8
	if srcFrameBytes == 0 {
		return nil, fmt.Errorf("unsupported WAV bit depth: %d", bitDepth)
	}
	totalFrames := dec.PCMLen() / srcFrameBytes

	pcmStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("locating WAV PCM start: %w", err)
	}

	return &wavSource{
		file:       f,
		length:     totalFrames * int64(channels) * 2,
		pcmStart:   pcmStart,
		sampleRate: int(dec.SampleRate),
		channels:   channels,
		bitDepth:   bitDepth,
	}, nil
}

func (s *wavSource) Read(p []byte) (int, error) {
	if n, ok := s.carry.drain(p); ok {
		s.pos += int64(n)
		return n, nil
	}

	srcBytes := s.bitDepth / 8
	want := len(p) / 2
	if want == 0 {
		want = 1
	}
	src := make([]byte, want*srcBytes)
	n, err := io.ReadFull(s.file, src)
	samples := n / srcBytes
	if samples == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		off := i * srcBytes
		var v int
		switch s.bitDepth {
		case 8:
			v = (int(src[off]) - 128) << 8 // 8-bit WAV is unsigned
		case 16:
			v = int(int16(binary.LittleEndian.Uint16(src[off:])))
		case 24:
			u := int32(src[off]) | int32(src[off+1])<<8 | int32(src[off+2])<<16
			if u&0x800000 != 0 {
				u |= ^0xFFFFFF
			}
			v = int(u >> 8)
		case 32:
			v = int(int32(binary.LittleEndian.Uint32(src[off:])) >> 16)
		}
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(clampPCM(v)))
	}

	written := s.carry.emit(p, raw)
	s.pos += int64(written)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return written, err
}

func (s *wavSource) Seek(offset int64, whence int) (int64, error) {
	newPos := resolveSeek(offset, whence, s.pos, s.length)
	frame := newPos / (int64(s.channels) * 2)
	srcOff := frame * int64(s.channels) * int64(s.bitDepth) / 8
	if _, err := s.file.Seek(s.pcmStart+srcOff, io.SeekStart); err != nil {
		return s.pos, err
	}
	s.carry.clear()
	s.pos = newPos
	return newPos, nil
}

func (s *wavSource) Length() int64     { return s.length }
func (s *wavSource) SampleRate() int   { return s.sampleRate }
func (s *wavSource) ChannelCount() int { return s.channels }

// --- FLAC ---

type flacSource struct {
	stream     *flac.Stream
	carry      carry
	pos        int64
	length     int64
	sampleRate int
	channels   int
	bps        int
}

func openFLAC(f *os.File) (*flacSource, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	channels := int(info.NChannels)
	return &flacSource{
		stream:     stream,
		length:     int64(info.NSamples) * int64(channels) * 2,
		sampleRate: int(info.SampleRate),
		channels:   channels,
		bps:        int(info.BitsPerSample),
	}, nil
}

func (s *flacSource) Read(p []byte) (int, error) {
	if n, ok := s.carry.drain(p); ok {
		s.pos += int64(n)
		return n, nil
	}

	frame, err := s.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	nSamples := int(frame.Subframes[0].NSamples)
	raw := make([]byte, nSamples*s.channels*2)
	for i := 0; i < nSamples; i++ {
		for ch := 0; ch < s.channels; ch++ {
			v := int(frame.Subframes[ch].Samples[i])
			switch {
			case s.bps > 16:
				v >>= s.bps - 16
			case s.bps < 16:
				v <<= 16 - s.bps
			}
			binary.LittleEndian.PutUint16(raw[(i*s.channels+ch)*2:], uint16(clampPCM(v)))
		}
	}

	written := s.carry.emit(p, raw)
	s.pos += int64(written)
	return written, nil
}

func (s *flacSource) Seek(offset int64, whence int) (int64, error) {
	newPos := resolveSeek(offset, whence, s.pos, s.length)
	sample := uint64(newPos / (int64(s.channels) * 2))
	if _, err := s.stream.Seek(sample); err != nil {
		return s.pos, err
	}
	s.carry.clear()
	s.pos = newPos
	return newPos, nil
}

func (s *flacSource) Length() int64     { return s.length }
func (s *flacSource) SampleRate() int   { return s.sampleRate }
func (s *flacSource) ChannelCount() int { return s.channels }

// --- OGG Vorbis ---

type oggSource struct {
	reader     *oggvorbis.Reader
	carry      carry
	pos        int64
	length     int64
	sampleRate int
	channels   int
}

func openOGG(f *os.File) (*oggSource, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	channels := reader.Channels()
	return &oggSource{
		reader:     reader,
		length:     reader.Length() * int64(channels) * 2,
		sampleRate: reader.SampleRate(),
		channels:   channels,
	}, nil
}

func (s *oggSource) Read(p []byte) (int, error) {
	if n, ok := s.carry.drain(p); ok {
		s.pos += int64(n)
		return n, nil
	}

	samples := make([]float32, len(p)/2)
	n, err := s.reader.Read(samples)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := samples[i]
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(int16(v*32767)))
	}

	written := s.carry.emit(p, raw)
	s.pos += int64(written)
	return written, err
}

func (s *oggSource) Seek(offset int64, whence int) (int64, error) {
	newPos := resolveSeek(offset, whence, s.pos, s.length)
	if err := s.reader.SetPosition(newPos / (int64(s.channels) * 2)); err != nil {
		return s.pos, err
	}
	s.carry.clear()
	s.pos = newPos
	return newPos, nil
}

func (s *oggSource) Length() int64     { return s.length }
func (s *oggSource) SampleRate() int   { return s.sampleRate }
func (s *oggSource) ChannelCount() int { return s.channels }

// resolveSeek maps a whence-relative offset into a clamped absolute
// position.
func resolveSeek(offset int64, whence int, pos, length int64) int64 {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = pos + offset
	case io.SeekEnd:
		next = length + offset
	}
	if next < 0 {
		next = 0
	}
	if next > length {
		next = length
	}
	return next
}
