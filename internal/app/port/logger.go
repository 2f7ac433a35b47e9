package port

// Logger is the key-value logging surface handed to every component.
// Arguments alternate key and value, as with log/slog.
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
