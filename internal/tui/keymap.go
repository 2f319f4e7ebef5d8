package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Classification
	Character key.Binding
	Location  key.Binding
	Lore      key.Binding
	Skip      key.Binding
	PrevCat   key.Binding
	NextCat   key.Binding
	NewCat    key.Binding
	Rename    key.Binding
	Aliases   key.Binding

	// View modes
	ToggleView    key.Binding
	ToggleLow     key.Binding
	ToggleSidebar key.Binding

	// Input phase
	Submit   key.Binding
	OpenFile key.Binding

	// Application
	Confirm   key.Binding
	Retry     key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "previous"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "enter"),
			key.WithHelp("→/enter", "next"),
		),

		Character: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "character"),
		),
		Location: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "location"),
		),
		Lore: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "lore"),
		),
		Skip: key.NewBinding(
			key.WithKeys("4", "x", "backspace"),
			key.WithHelp("4/x", "skip"),
		),
		PrevCat: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev category"),
		),
		NextCat: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next category"),
		),
		NewCat: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "new category"),
		),
		Rename: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "rename"),
		),
		Aliases: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle aliases"),
		),

		ToggleView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "card/focus"),
		),
		ToggleLow: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "low confidence"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sidebar"),
		),

		Submit: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "analyze"),
		),
		OpenFile: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "open file"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "create entities"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc/q", "abandon"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp returns key bindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Character, k.Location, k.Lore, k.Skip, k.ToggleView, k.Confirm, k.Help}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Character, k.Location, k.Lore, k.Skip},
		{k.PrevCat, k.NextCat, k.NewCat, k.Rename, k.Aliases},
		{k.ToggleView, k.ToggleLow, k.ToggleSidebar},
		{k.Confirm, k.Retry, k.Quit, k.Help},
	}
}

// inputKeys is the help shown while the author is entering text.
type inputKeys struct{ k KeyMap }

func (i inputKeys) ShortHelp() []key.Binding {
	return []key.Binding{i.k.Submit, i.k.OpenFile, i.k.Quit}
}

func (i inputKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{i.ShortHelp()}
}
