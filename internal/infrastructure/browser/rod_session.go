package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

const textPollInterval = 250 * time.Millisecond

// rodSession is one incognito page. Lookups never wait; only the Wait* methods do.
type rodSession struct {
	page              *rod.Page
	incognito         *rod.Browser
	navigationTimeout time.Duration
	logger            port.Logger
}

func (s *rodSession) Find(sel port.Selector) (port.Element, error) {
	return findIn(s.page, sel)
}

func (s *rodSession) FindAll(sel port.Selector) ([]port.Element, error) {
	return findAllIn(s.page, sel)
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx)
	if s.navigationTimeout > 0 {
		var release func()
		page, release = withTimeout(page, s.navigationTimeout)
		defer release()
	}
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		s.logger.Warn("Page load event not observed", "url", url, "error", err)
	}
	return nil
}

func (s *rodSession) WaitVisible(ctx context.Context, sel port.Selector, timeout time.Duration) error {
	page, release := withTimeout(s.page.Context(ctx), timeout)
	defer release()
	var (
		el  *rod.Element
		err error
	)
	if sel.Kind == port.SelectorPath {
		el, err = page.ElementX(xpathOf(sel.Expr))
	} else {
		el, err = page.Element(sel.Expr)
	}
	if err == nil {
		err = el.WaitVisible()
	}
	return asTimeout(err, sel)
}

func (s *rodSession) WaitText(ctx context.Context, sel port.Selector, text string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(textPollInterval)
	defer ticker.Stop()
	for {
		if el, err := s.Find(sel); err == nil {
			if got, err := el.Text(); err == nil && strings.Contains(got, text) {
				return nil
			}
		}
		select {
		case <-waitCtx.Done():
			return asTimeout(waitCtx.Err(), sel)
		case <-ticker.C:
		}
	}
}

func (s *rodSession) Click(ctx context.Context, el port.Element) error {
	re, ok := el.(*rodElement)
	if !ok {
		return fmt.Errorf("element of type %T does not belong to a browser session", el)
	}
	return re.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (s *rodSession) Settle(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *rodSession) HTML() (string, error) {
	return s.page.HTML()
}

func (s *rodSession) Close() error {
	// Закрытие incognito-контекста закрывает и его страницы.
	if err := s.incognito.Close(); err != nil {
		return fmt.Errorf("failed to close browser context: %w", err)
	}
	return nil
}

// rodElement is a handle to an element of a live page.
type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Find(sel port.Selector) (port.Element, error) {
	return findIn(e.el, sel)
}

func (e *rodElement) FindAll(sel port.Selector) ([]port.Element, error) {
	return findAllIn(e.el, sel)
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Attribute(name string) (string, bool, error) {
	value, err := e.el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

func (e *rodElement) HTML() (string, error) {
	return e.el.HTML()
}

// searcher is what *rod.Page and *rod.Element have in common for lookups.
type searcher interface {
	Has(selector string) (bool, *rod.Element, error)
	HasX(selector string) (bool, *rod.Element, error)
	Elements(selector string) (rod.Elements, error)
	ElementsX(xpath string) (rod.Elements, error)
}

func findIn(scope searcher, sel port.Selector) (port.Element, error) {
	var (
		ok  bool
		el  *rod.Element
		err error
	)
	if sel.Kind == port.SelectorPath {
		ok, el, err = scope.HasX(xpathOf(sel.Expr))
	} else {
		ok, el, err = scope.Has(sel.Expr)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", sel, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrNotFound, sel)
	}
	return &rodElement{el: el}, nil
}

func findAllIn(scope searcher, sel port.Selector) ([]port.Element, error) {
	var (
		els rod.Elements
		err error
	)
	if sel.Kind == port.SelectorPath {
		els, err = scope.ElementsX(xpathOf(sel.Expr))
	} else {
		els, err = scope.Elements(sel.Expr)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", sel, err)
	}
	out := make([]port.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}

// xpathOf turns a structural path into XPath: relative paths are anchored at the scope.
func xpathOf(path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "./") {
		return path
	}
	return "./" + path
}

// withTimeout scopes page to d. release stops the timer once the call is done.
func withTimeout(page *rod.Page, d time.Duration) (*rod.Page, func()) {
	scoped := page.Timeout(d)
	return scoped, func() { scoped.CancelTimeout() }
}

func asTimeout(err error, sel port.Selector) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", entity.ErrTimeout, sel, err)
	}
	return fmt.Errorf("wait for %s: %w", sel, err)
}
