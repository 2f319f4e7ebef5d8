package tui

import (
	"github.com/Veraticus/lorekeeper/internal/service"
	"github.com/Veraticus/lorekeeper/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme     themes.Theme
	Previewer service.SplitPreviewer
	StartDir  string
	Width     int
	Height    int
	AltScreen bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Width:     100,
		Height:    30,
		AltScreen: true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithPreviewer lets the file picker open formats the backend can split,
// such as .docx.
func WithPreviewer(p service.SplitPreviewer) Option {
	return func(c *Config) {
		c.Previewer = p
	}
}

// WithStartDir sets where the file picker opens.
func WithStartDir(dir string) Option {
	return func(c *Config) {
		c.StartDir = dir
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}
