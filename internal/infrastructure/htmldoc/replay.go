package htmldoc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"
)

// ReplaySession plays back a recorded session: frame 0 is shown after Navigate
// and every Click advances to the next frame. Clicking past the last frame keeps
// the last frame.
type ReplaySession struct {
	mu      sync.Mutex
	frames  []*Document
	current int
	loaded  bool
	logger  port.Logger
}

// NewReplaySession builds a session from already parsed frames.
func NewReplaySession(frames []*Document, logger port.Logger) *ReplaySession {
	return &ReplaySession{frames: frames, logger: logger}
}

// LoadFrames parses every *.html file of dir in name order.
func LoadFrames(dir string) ([]*Document, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to list frames in %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no frames found in %s", dir)
	}
	sort.Strings(matches)

	frames := make([]*Document, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read frame %s: %w", path, err)
		}
		doc, err := Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse frame %s: %w", path, err)
		}
		frames = append(frames, doc)
	}
	return frames, nil
}

func (s *ReplaySession) frame() (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, fmt.Errorf("replay session not navigated")
	}
	return s.frames[s.current], nil
}

// Frame returns the index of the frame currently shown.
func (s *ReplaySession) Frame() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *ReplaySession) Find(sel port.Selector) (port.Element, error) {
	doc, err := s.frame()
	if err != nil {
		return nil, err
	}
	return doc.Find(sel)
}

func (s *ReplaySession) FindAll(sel port.Selector) ([]port.Element, error) {
	doc, err := s.frame()
	if err != nil {
		return nil, err
	}
	return doc.FindAll(sel)
}

func (s *ReplaySession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return fmt.Errorf("%w: replay has no frames", entity.ErrSessionUnavailable)
	}
	s.current = 0
	s.loaded = true
	s.logger.Debug("Replay navigated", "url", url, "frames", len(s.frames))
	return nil
}

// WaitVisible succeeds immediately when the current frame has a match. Static
// frames never change, so a miss is reported as a timeout without waiting.
func (s *ReplaySession) WaitVisible(ctx context.Context, sel port.Selector, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.Find(sel); err != nil {
		return fmt.Errorf("%w: %s not present in frame %d", entity.ErrTimeout, sel, s.Frame())
	}
	return nil
}

func (s *ReplaySession) WaitText(ctx context.Context, sel port.Selector, text string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	el, err := s.Find(sel)
	if err != nil {
		return fmt.Errorf("%w: %s not present in frame %d", entity.ErrTimeout, sel, s.Frame())
	}
	got, err := el.Text()
	if err != nil {
		return err
	}
	if !strings.Contains(got, text) {
		return fmt.Errorf("%w: %s does not contain %q", entity.ErrTimeout, sel, text)
	}
	return nil
}

func (s *ReplaySession) Click(ctx context.Context, _ port.Element) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < len(s.frames)-1 {
		s.current++
	}
	return nil
}

// Settle does not sleep: frames are already rendered.
func (s *ReplaySession) Settle(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func (s *ReplaySession) HTML() (string, error) {
	doc, err := s.frame()
	if err != nil {
		return "", err
	}
	return doc.HTML()
}

func (s *ReplaySession) Close() error {
	return nil
}

// replayFactory opens a fresh replay of the same frames directory for every session.
type replayFactory struct {
	dir    string
	logger port.Logger
}

// NewReplayFactory returns a SessionFactory replaying the frames stored in dir.
func NewReplayFactory(dir string, logger port.Logger) port.SessionFactory {
	return &replayFactory{dir: dir, logger: logger}
}

func (f *replayFactory) Open(ctx context.Context) (port.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	frames, err := LoadFrames(f.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrSessionUnavailable, err)
	}
	f.logger.Info("Replay session opened", "dir", f.dir, "frames", len(frames))
	return NewReplaySession(frames, f.logger), nil
}
