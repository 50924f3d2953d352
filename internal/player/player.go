package player

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/olivier-w/strobe/internal/analysis"
)

// Player decodes one track and plays it through the process-wide audio
// context, feeding decoded PCM to the analyzer along the way.
type Player struct {
	file      *os.File
	source    pcmSource
	tap       *tapReader
	analyzer  *analysis.Analyzer
	otoCtx    *oto.Context
	otoPlayer *oto.Player
	duration  time.Duration
	volume    float64
	paused    bool
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

// initOto creates the audio context on first use. oto allows exactly
// one context per process, and audio may only start after an explicit
// user action, so this runs lazily and repeated calls are no-ops.
func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   playbackSampleRate,
			ChannelCount: playbackChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// New opens the given audio file and starts playback. The analyzer
// (may be nil) is initialized with the playback rate and receives
// every decoded PCM chunk.
func New(path string, an *analysis.Analyzer) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	src, err := openSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	src, err = conform(src)
	if err != nil {
		f.Close()
		return nil, err
	}

	ctx, err := initOto()
	if err != nil {
		f.Close()
		return nil, err
	}

	if an != nil {
		an.Initialize(playbackSampleRate)
		an.SetActive(true)
	}

	dur := time.Duration(float64(src.Length()) / float64(playbackByteRate) * float64(time.Second))

	p := &Player{
		file:     f,
		source:   src,
		tap:      &tapReader{reader: src, analyzer: an},
		analyzer: an,
		otoCtx:   ctx,
		duration: dur,
		volume:   0.8,
		done:     make(chan struct{}),
	}

	p.otoPlayer = ctx.NewPlayer(p.tap)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()

	go p.monitor()

	return p, nil
}

func (p *Player) monitor() {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		pos := p.tap.Pos()
		total := p.source.Length()
		paused := p.paused
		p.mu.Unlock()

		if !paused && pos >= total {
			close(p.done)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// Done returns a channel that closes when playback finishes.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Restart seeks back to the beginning and resumes playback. Only valid
// while the track is still in progress; a finished track is reloaded by
// the caller instead.
func (p *Player) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.source.Seek(0, io.SeekStart)
	p.tap.SetPos(0)

	// Recreate the oto player to flush its buffered audio.
	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.tap)
	p.otoPlayer.SetVolume(p.volume)

	p.paused = false
	if p.analyzer != nil {
		p.analyzer.SetActive(true)
	}
	p.otoPlayer.Play()
}

// TogglePause toggles between play and pause. While paused the
// analyzer reports its source unavailable, so the reactive signals
// decay instead of freezing.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		p.otoPlayer.Play()
		p.paused = false
	} else {
		p.otoPlayer.Pause()
		p.paused = true
	}
	if p.analyzer != nil {
		p.analyzer.SetActive(!p.paused)
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	pos := p.tap.Pos()
	return time.Duration(float64(pos) / float64(playbackByteRate) * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Seek moves playback by the given delta from the current position.
func (p *Player) Seek(delta time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	newPos := p.tap.Pos() + int64(delta.Seconds()*float64(playbackByteRate))
	if newPos < 0 {
		newPos = 0
	}
	if total := p.source.Length(); newPos > total {
		newPos = total
	}
	newPos -= newPos % playbackFrameBytes

	if _, err := p.source.Seek(newPos, io.SeekStart); err != nil {
		return
	}
	p.tap.SetPos(newPos)

	// Recreate the oto player to flush its buffered audio.
	wasPaused := p.paused
	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.tap)
	p.otoPlayer.SetVolume(p.volume)
	if !wasPaused {
		p.otoPlayer.Play()
	}
}

// Volume returns the current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets the volume, clamped to 0.0–1.0.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	p.otoPlayer.SetVolume(v)
}

// AdjustVolume adjusts the volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	v := p.volume + delta
	p.mu.Unlock()
	p.SetVolume(v)
}

// Close stops playback and releases the file handle. A superseded
// track must be closed before the next one starts so the handle is
// not leaked.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.otoPlayer.Pause()
	if p.analyzer != nil {
		p.analyzer.SetActive(false)
	}
	p.file.Close()
}
