package logger

import (
	"context"
	"log/slog"

	"portfolio_scraper/internal/app/port"
)

// slogAdapter реализует port.Logger поверх глобального логгера пакета.
// With a component set, every record carries a "component" attribute.
type slogAdapter struct {
	component string
}

// NewSlogAdapter returns a port.Logger writing through the package globals.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

// NewComponentAdapter returns a port.Logger that tags records with component.
func NewComponentAdapter(component string) port.Logger {
	return &slogAdapter{component: component}
}

func (a *slogAdapter) log(level slog.Level, msg string, args []any) {
	ensureInitialized()
	if !globalLogger.Enabled(context.Background(), level) {
		return
	}
	l := globalLogger
	if a.component != "" {
		l = l.With("component", a.component)
	}
	l.Log(context.Background(), level, msg, args...)
}

func (a *slogAdapter) Info(msg string, args ...any) {
	a.log(slog.LevelInfo, msg, args)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	a.log(slog.LevelDebug, msg, args)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	a.log(slog.LevelWarn, msg, args)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	a.log(slog.LevelError, msg, args)
}
