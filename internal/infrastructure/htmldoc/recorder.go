package htmldoc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"portfolio_scraper/internal/app/port"

	"github.com/google/uuid"
)

// Recorder wraps a session and writes the rendered document to NNN.html right
// before every click and once more on Close. Replaying the directory with
// ReplaySession reproduces what the wrapped session showed.
type Recorder struct {
	port.Session

	mu     sync.Mutex
	dir    string
	frames int
	logger port.Logger
}

// NewRecorder records inner into dir, which is created if missing.
func NewRecorder(inner port.Session, dir string, logger port.Logger) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create recording dir %s: %w", dir, err)
	}
	return &Recorder{Session: inner, dir: dir, logger: logger}, nil
}

// Dir is the directory frames are written to.
func (r *Recorder) Dir() string {
	return r.dir
}

// Frames is the number of frames written so far.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *Recorder) snapshot() error {
	html, err := r.Session.HTML()
	if err != nil {
		return fmt.Errorf("failed to capture frame: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	path := filepath.Join(r.dir, fmt.Sprintf("%03d.html", r.frames))
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to write frame %s: %w", path, err)
	}
	r.frames++
	return nil
}

func (r *Recorder) Click(ctx context.Context, el port.Element) error {
	if err := r.snapshot(); err != nil {
		// Запись кадра не должна ломать сам скрейп.
		r.logger.Warn("Failed to record frame before click", "dir", r.dir, "error", err)
	}
	return r.Session.Click(ctx, el)
}

func (r *Recorder) Close() error {
	if err := r.snapshot(); err != nil {
		r.logger.Warn("Failed to record final frame", "dir", r.dir, "error", err)
	}
	r.logger.Info("Session recording finished", "dir", r.dir, "frames", r.Frames())
	return r.Session.Close()
}

// recordingFactory records every session it opens into its own subdirectory.
type recordingFactory struct {
	inner  port.SessionFactory
	root   string
	logger port.Logger
}

// NewRecordingFactory wraps inner so that each opened session is recorded under root/<uuid>.
func NewRecordingFactory(inner port.SessionFactory, root string, logger port.Logger) port.SessionFactory {
	return &recordingFactory{inner: inner, root: root, logger: logger}
}

func (f *recordingFactory) Open(ctx context.Context) (port.Session, error) {
	session, err := f.inner.Open(ctx)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(f.root, uuid.NewString())
	recorder, err := NewRecorder(session, dir, f.logger)
	if err != nil {
		_ = session.Close()
		return nil, err
	}
	f.logger.Info("Recording session", "dir", dir)
	return recorder, nil
}
