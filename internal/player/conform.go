package player

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	playbackSampleRate = 48000
	playbackChannels   = 2
	playbackFrameBytes = playbackChannels * 2
	playbackByteRate   = playbackSampleRate * playbackFrameBytes
)

// conform wraps a decoder so the player always sees 48 kHz stereo
// s16le regardless of the source format.
func conform(src pcmSource) (pcmSource, error) {
	switch src.ChannelCount() {
	case playbackChannels:
	case 1:
		src = &stereoUpmix{src: src}
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", src.ChannelCount())
	}
	if src.SampleRate() <= 0 {
		return nil, fmt.Errorf("unsupported sample rate: %d", src.SampleRate())
	}
	if src.SampleRate() != playbackSampleRate {
		src = newResampler(src)
	}
	return src, nil
}

// stereoUpmix duplicates a mono stream into both channels.
type stereoUpmix struct {
	src   pcmSource
	carry carry
	pos   int64
}

func (u *stereoUpmix) Read(p []byte) (int, error) {
	if n, ok := u.carry.drain(p); ok {
		u.pos += int64(n)
		return n, nil
	}

	frames := len(p) / playbackFrameBytes
	if frames == 0 {
		frames = 1
	}
	mono := make([]byte, frames*2)
	n, err := io.ReadFull(u.src, mono)
	n -= n % 2
	if n == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, n*2)
	for i := 0; i < n; i += 2 {
		raw[i*2] = mono[i]
		raw[i*2+1] = mono[i+1]
		raw[i*2+2] = mono[i]
		raw[i*2+3] = mono[i+1]
	}

	written := u.carry.emit(p, raw)
	u.pos += int64(written)
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return written, err
}

func (u *stereoUpmix) Seek(offset int64, whence int) (int64, error) {
	newPos := resolveSeek(offset, whence, u.pos, u.Length())
	newPos -= newPos % playbackFrameBytes
	if _, err := u.src.Seek(newPos/2, io.SeekStart); err != nil {
		return u.pos, err
	}
	u.carry.clear()
	u.pos = newPos
	return newPos, nil
}

func (u *stereoUpmix) Length() int64     { return u.src.Length() * 2 }
func (u *stereoUpmix) SampleRate() int   { return u.src.SampleRate() }
func (u *stereoUpmix) ChannelCount() int { return playbackChannels }

// resampler converts a stereo stream to 48 kHz with linear
// interpolation. Output frame n samples the source at
// n·srcRate/48000; the fractional part drives the interpolation.
type resampler struct {
	src      pcmSource
	srcRate  int
	carry    carry
	pos      int64
	outFrame int64
	totalOut int64
	totalSrc int64

	window  []int16 // buffered stereo source frames
	winBase int64   // absolute source frame index of window[0]
	eof     bool
}

func newResampler(src pcmSource) *resampler {
	totalSrc := src.Length() / playbackFrameBytes
	totalOut := totalSrc * playbackSampleRate / int64(src.SampleRate())
	if totalSrc > 0 && totalOut == 0 {
		totalOut = 1
	}
	return &resampler{
		src:      src,
		srcRate:  src.SampleRate(),
		totalOut: totalOut,
		totalSrc: totalSrc,
	}
}

func (r *resampler) Read(p []byte) (int, error) {
	if n, ok := r.carry.drain(p); ok {
		r.pos += int64(n)
		return n, nil
	}
	if r.outFrame >= r.totalOut {
		return 0, io.EOF
	}

	frames := len(p) / playbackFrameBytes
	if frames == 0 {
		frames = 1
	}
	if rem := r.totalOut - r.outFrame; int64(frames) > rem {
		frames = int(rem)
	}

	raw := make([]byte, frames*playbackFrameBytes)
	written := 0
	for i := 0; i < frames; i++ {
		srcNum := r.outFrame * int64(r.srcRate)
		f0 := srcNum / playbackSampleRate
		frac := srcNum % playbackSampleRate

		if err := r.ensure(f0 + 1); err != nil && !r.have(f0) {
			if written == 0 {
				return 0, err
			}
			break
		}

		l0, r0 := r.frame(f0)
		l1, r1 := l0, r0
		if r.have(f0 + 1) {
			l1, r1 = r.frame(f0 + 1)
		}

		off := written * playbackFrameBytes
		binary.LittleEndian.PutUint16(raw[off:], uint16(mix(l0, l1, frac)))
		binary.LittleEndian.PutUint16(raw[off+2:], uint16(mix(r0, r1, frac)))
		written++
		r.outFrame++
	}

	if written == 0 {
		return 0, io.EOF
	}
	n := r.carry.emit(p, raw[:written*playbackFrameBytes])
	r.pos += int64(n)
	return n, nil
}

// mix linearly interpolates between two samples; frac is in units of
// 1/48000.
func mix(a, b int16, frac int64) int16 {
	if frac == 0 || a == b {
		return a
	}
	d := int64(b) - int64(a)
	return int16(int64(a) + (d*frac+playbackSampleRate/2)/playbackSampleRate)
}

// ensure reads source frames until absFrame is buffered or the source
// is exhausted.
func (r *resampler) ensure(absFrame int64) error {
	// Drop frames that can no longer be referenced.
	if keep := absFrame - 1 - r.winBase; keep > 0 {
		if int64(len(r.window)/playbackChannels) <= keep {
			r.winBase += int64(len(r.window) / playbackChannels)
			r.window = r.window[:0]
		} else {
			r.window = r.window[keep*playbackChannels:]
			r.winBase += keep
		}
	}

	for !r.have(absFrame) && !r.eof {
		buf := make([]byte, 2048*playbackFrameBytes)
		n, err := r.src.Read(buf)
		n -= n % playbackFrameBytes
		for i := 0; i < n; i += playbackFrameBytes {
			r.window = append(r.window,
				int16(binary.LittleEndian.Uint16(buf[i:])),
				int16(binary.LittleEndian.Uint16(buf[i+2:])))
		}
		if err != nil {
			r.eof = true
			if err != io.EOF && n == 0 {
				return err
			}
		}
	}
	if !r.have(absFrame) {
		return io.EOF
	}
	return nil
}

func (r *resampler) have(absFrame int64) bool {
	return absFrame >= r.winBase && absFrame < r.winBase+int64(len(r.window)/playbackChannels)
}

func (r *resampler) frame(absFrame int64) (int16, int16) {
	off := int(absFrame-r.winBase) * playbackChannels
	return r.window[off], r.window[off+1]
}

func (r *resampler) Seek(offset int64, whence int) (int64, error) {
	newPos := resolveSeek(offset, whence, r.pos, r.Length())
	newPos -= newPos % playbackFrameBytes

	outFrame := newPos / playbackFrameBytes
	srcFrame := outFrame * int64(r.srcRate) / playbackSampleRate
	if _, err := r.src.Seek(srcFrame*playbackFrameBytes, io.SeekStart); err != nil {
		return r.pos, err
	}

	r.carry.clear()
	r.window = r.window[:0]
	r.winBase = srcFrame
	r.eof = false
	r.pos = newPos
	r.outFrame = outFrame
	return newPos, nil
}

func (r *resampler) Length() int64     { return r.totalOut * playbackFrameBytes }
func (r *resampler) SampleRate() int   { return playbackSampleRate }
func (r *resampler) ChannelCount() int { return playbackChannels }
