package player

import (
	"io"
	"sync"

	"github.com/olivier-w/strobe/internal/analysis"
)

// tapReader sits between the decoder and the audio device: it tracks
// the playback byte position and copies every decoded chunk into the
// analyzer so the spectrum follows what is audible. Reads happen on
// oto's decode goroutine.
type tapReader struct {
	reader   io.ReadSeeker
	analyzer *analysis.Analyzer
	pos      int64
	mu       sync.Mutex
}

func (t *tapReader) Read(p []byte) (int, error) {
	n, err := t.reader.Read(p)
	if n > 0 && t.analyzer != nil {
		t.analyzer.WritePCM(p[:n])
	}
	t.mu.Lock()
	t.pos += int64(n)
	t.mu.Unlock()
	return n, err
}

func (t *tapReader) Pos() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

func (t *tapReader) SetPos(pos int64) {
	t.mu.Lock()
	t.pos = pos
	t.mu.Unlock()
}
