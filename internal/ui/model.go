package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/strobe/internal/analysis"
	"github.com/olivier-w/strobe/internal/player"
	"github.com/olivier-w/strobe/internal/queue"
	"github.com/olivier-w/strobe/internal/stage"
	"github.com/olivier-w/strobe/internal/util"
)

// chromeHeight is the status block under the scene viewport.
const chromeHeight = 4

// Model is the Bubbletea model for the visualizer session. One frame
// tick runs one stage turn; all interaction handlers run between
// ticks on the same goroutine, so no state needs locking.
type Model struct {
	player   *player.Player
	analyzer *analysis.Analyzer
	stage    *stage.Stage
	metadata player.Metadata
	tracks   *queue.Queue

	start    time.Time
	elapsed  time.Duration
	duration time.Duration
	volume   float64
	paused   bool
	playing  bool
	width    int
	height   int
	quitting bool

	meter      progress.Model
	statusMsg  string
	statusTime time.Time
}

// New creates a session model. The queue may be nil for a single
// track.
func New(p *player.Player, an *analysis.Analyzer, st *stage.Stage, meta player.Metadata, q *queue.Queue) Model {
	return Model{
		player:   p,
		analyzer: an,
		stage:    st,
		metadata: meta,
		tracks:   q,
		start:    time.Now(),
		duration: p.Duration(),
		volume:   p.Volume(),
		playing:  true,
		meter:    newMeter(st.ActiveTheme().Accent),
	}
}

func newMeter(accent string) progress.Model {
	m := progress.New(progress.WithSolidFill(accent), progress.WithoutPercentage())
	m.Width = 16
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frameCmd(), checkDone(m.player), tea.SetWindowTitle(windowTitle(m.metadata.Title, false)))
}

func checkDone(p *player.Player) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case frameMsg:
		now := time.Since(m.start).Seconds()
		m.stage.Tick(now)
		if m.playing {
			m.elapsed = m.player.Position()
			m.volume = m.player.Volume()
			m.paused = m.player.Paused()
		}
		if m.statusMsg != "" && time.Since(m.statusTime) > 5*time.Second {
			m.statusMsg = ""
		}
		return m, frameCmd()

	case playbackEndedMsg:
		return m.nextTrack(true)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := msg.Height - chromeHeight
		if h < 0 {
			h = 0
		}
		m.stage.SetSize(msg.Width, h)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		if m.playing {
			m.player.Close()
		}
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch msg.String() {
	case " ":
		if !m.playing {
			return m, nil
		}
		m.player.TogglePause()
		m.paused = m.player.Paused()
		return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, m.paused))
	case "v":
		m.stage.CycleScene()
		m.meter = newMeter(m.stage.ActiveTheme().Accent)
	case "left", "h":
		if m.playing {
			m.player.Seek(-5 * time.Second)
		}
	case "right", "l":
		if m.playing {
			m.player.Seek(5 * time.Second)
		}
	case "up", "k", "+", "=":
		if m.playing {
			m.player.AdjustVolume(0.05)
			m.volume = m.player.Volume()
		}
	case "down", "j", "-":
		if m.playing {
			m.player.AdjustVolume(-0.05)
			m.volume = m.player.Volume()
		}
	case "r":
		if m.playing {
			m.player.Restart()
			m.paused = false
			m.elapsed = 0
			return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, false))
		}
	case "n":
		return m.nextTrack(false)
	case "p":
		return m.previousTrack()
	}
	return m, nil
}

// handleMouse folds pointer motion and wheel scroll into the stage's
// interaction state. Coordinates normalize to [-0.5, 0.5] over the
// scene viewport.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		m.stage.AddScroll(3)
		return
	}
	if msg.Action != tea.MouseActionMotion {
		return
	}
	if m.width <= 1 || m.height <= 1 {
		return
	}
	x := float64(msg.X)/float64(m.width-1) - 0.5
	y := float64(msg.Y)/float64(m.height-1) - 0.5
	m.stage.SetPointer(x, y)
}

// nextTrack advances the queue. At the end it wraps around when the
// previous track finished naturally, or stays put on a manual skip.
func (m Model) nextTrack(ended bool) (tea.Model, tea.Cmd) {
	if m.tracks == nil || m.tracks.Len() < 2 {
		if ended {
			m.quitting = true
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
		return m, nil
	}
	if !m.tracks.Advance() {
		if !ended {
			return m, nil
		}
		m.tracks.WrapToStart()
	}
	return m.loadCurrent()
}

func (m Model) previousTrack() (tea.Model, tea.Cmd) {
	if m.tracks == nil || !m.tracks.Previous() {
		return m, nil
	}
	return m.loadCurrent()
}

// loadCurrent swaps playback to the queue's current track. The old
// player is closed first so its file handle is released before the
// next one opens. On failure the session keeps ticking with audio
// inactive and the error lands in the status line.
func (m Model) loadCurrent() (tea.Model, tea.Cmd) {
	track := m.tracks.Current()
	if track == nil {
		return m, nil
	}
	if m.playing {
		m.player.Close()
		m.playing = false
	}

	p, err := player.New(track.Path, m.analyzer)
	if err != nil {
		m.statusMsg = fmt.Sprintf("can't play %s: %v", track.Title, err)
		m.statusTime = time.Now()
		m.paused = false
		m.elapsed = 0
		m.duration = 0
		return m, tea.SetWindowTitle("strobe")
	}

	m.player = p
	m.playing = true
	m.paused = false
	m.metadata = player.ReadMetadata(track.Path)
	m.duration = p.Duration()
	m.volume = p.Volume()
	m.elapsed = 0
	return m, tea.Batch(checkDone(p), tea.SetWindowTitle(windowTitle(m.metadata.Title, false)))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 30 {
		w = 50
	}

	scene := m.stage.View()

	title := titleStyle.Render(m.metadata.Title)
	if m.metadata.Artist != "" {
		title += artistStyle.Render("  " + m.metadata.Artist)
	}
	sceneTag := accentStyle(m.stage.ActiveTheme().Accent).Render("[" + m.stage.ActiveTheme().Label + "]")

	level, opacity := m.stage.Meter()
	meterBar := m.meter.ViewAs(level)
	meterLabel := statusStyle.Render("sig")
	if opacity < 0.4 {
		meterLabel = dimStatusStyle.Render("sig")
	}

	elapsedStr := util.FormatDuration(m.elapsed)
	durationStr := util.FormatDuration(m.duration)
	barWidth := w - len(elapsedStr) - len(durationStr) - m.meter.Width - 14
	bar := renderProgressBar(m.elapsed.Seconds(), m.duration.Seconds(), barWidth)

	statusIcon := "▶"
	if !m.playing {
		statusIcon = "✕"
	} else if m.paused {
		statusIcon = "❚❚"
	}

	line1 := fmt.Sprintf(" %s %s  %s", statusIcon, title, sceneTag)
	line2 := fmt.Sprintf(" %s %s %s  %s %s  %s",
		timeStyle.Render(elapsedStr), bar, timeStyle.Render(durationStr),
		meterLabel, meterBar,
		statusStyle.Render(renderVolumePercent(m.volume)))
	line3 := " " + helpStyle.Render(helpText(m.tracks != nil && m.tracks.Len() > 1))
	if m.statusMsg != "" {
		line3 = " " + helpStyle.Render(m.statusMsg)
	}

	return scene + "\n" + line1 + "\n" + line2 + "\n" + line3
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " — strobe"
	}
	return "▶ " + title + " — strobe"
}
