package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameMsg drives one stage tick per display frame.
type frameMsg time.Time

type playbackEndedMsg struct{}

const frameInterval = time.Second / 30

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
