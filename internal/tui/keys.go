package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up          key.Binding
	down        key.Binding
	enter       key.Binding
	esc         key.Binding
	quit        key.Binding
	add         key.Binding
	pause       key.Binding
	flush       key.Binding
	terminate   key.Binding
	profiles    key.Binding
	info        key.Binding
	acceptLocal key.Binding
	acceptPeer  key.Binding
	batchLocal  key.Binding
	batchPeer   key.Binding
	copy        key.Binding
	yes         key.Binding
	no          key.Binding
}

var keys = keyMap{
	up:          key.NewBinding(key.WithKeys("up", "k")),
	down:        key.NewBinding(key.WithKeys("down", "j")),
	enter:       key.NewBinding(key.WithKeys("enter")),
	esc:         key.NewBinding(key.WithKeys("esc")),
	quit:        key.NewBinding(key.WithKeys("q", "ctrl+c")),
	add:         key.NewBinding(key.WithKeys("a")),
	pause:       key.NewBinding(key.WithKeys(" ")),
	flush:       key.NewBinding(key.WithKeys("f")),
	terminate:   key.NewBinding(key.WithKeys("ctrl+d")),
	profiles:    key.NewBinding(key.WithKeys("p")),
	info:        key.NewBinding(key.WithKeys("i")),
	acceptLocal: key.NewBinding(key.WithKeys("l")),
	acceptPeer:  key.NewBinding(key.WithKeys("r")),
	batchLocal:  key.NewBinding(key.WithKeys("L")),
	batchPeer:   key.NewBinding(key.WithKeys("R")),
	copy:        key.NewBinding(key.WithKeys("c")),
	yes:         key.NewBinding(key.WithKeys("y")),
	no:          key.NewBinding(key.WithKeys("n")),
}
