package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play     key.Binding
	Filter   key.Binding
	Lower    key.Binding
	Raise    key.Binding
	View     key.Binding
	Snapshot key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Play:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Lower:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "cutoff down")),
		Raise:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "cutoff up")),
		View:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view")),
		Snapshot: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "snapshot")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// setControlsEnabled toggles every binding except quit.
func (k *keyMap) setControlsEnabled(on bool) {
	for _, b := range []*key.Binding{&k.Play, &k.Filter, &k.Lower, &k.Raise, &k.View, &k.Snapshot} {
		b.SetEnabled(on)
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Filter, k.Lower, k.Raise, k.View, k.Snapshot, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
