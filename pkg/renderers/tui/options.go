package tui

import (
	"io"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/present"
)

// Option configures the terminal app.
type Option func(*App)

// WithPromptDriver overrides the prompt driver used by the app.
func WithPromptDriver(driver PromptDriver) Option {
	return func(a *App) {
		if driver != nil {
			a.driver = driver
		}
	}
}

// WithStyles overrides the lipgloss styles used for output.
func WithStyles(styles present.Styles) Option {
	return func(a *App) {
		a.styles = styles
	}
}

// WithOutput sets where the default driver prints messages.
func WithOutput(out io.Writer) Option {
	return func(a *App) {
		if out != nil {
			a.out = out
		}
	}
}

// WithLogger sets the app logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}
