package tui

import (
	"context"

	"github.com/Veraticus/payrank/internal/cli"
	"github.com/Veraticus/payrank/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	// Context bounds every backend call the model makes.
	Context    context.Context
	Theme      themes.Theme
	Currency   string
	Width      int
	Height     int
	WeightStep float64
	ShowHelp   bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Context:    context.Background(),
		Theme:      themes.Default,
		Currency:   cli.DefaultCurrency,
		Width:      100,
		Height:     30,
		WeightStep: 5,
		ShowHelp:   true,
	}
}

// WithContext ties backend calls to ctx, so canceling the session cancels
// any plan or save still in flight.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		if ctx != nil {
			c.Context = ctx
		}
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

// WithCurrency sets the ISO code amounts are shown in.
func WithCurrency(code string) Option {
	return func(c *Config) {
		c.Currency = code
	}
}

// WithWeightStep sets how far one +/- press moves a weight.
func WithWeightStep(step float64) Option {
	return func(c *Config) {
		if step > 0 {
			c.WeightStep = step
		}
	}
}

// WithHelp shows or hides the key help line.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
