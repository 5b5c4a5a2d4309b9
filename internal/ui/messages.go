package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/climpviz/internal/audio"
)

type frameMsg time.Time
type errMsg struct{ err error }
type statusExpiredMsg struct{ at time.Time }
type snapshotSavedMsg struct {
	path string
	err  error
}

// LoadedMsg delivers the decoded clip, or the reason there is none. Send it
// to the program once loading finishes.
type LoadedMsg struct {
	Clip *audio.Clip
	Err  error
}

func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func waitForError(errs <-chan error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: <-errs}
	}
}

func expireStatus(at time.Time) tea.Cmd {
	return tea.Tick(statusLifetime, func(time.Time) tea.Msg {
		return statusExpiredMsg{at: at}
	})
}
