package port

import (
	"context"
	"time"
)

// SelectorKind distinguishes the two selector dialects every page accessor must support.
type SelectorKind int

const (
	// SelectorCSS is a CSS selector evaluated against the descendants of the scope.
	SelectorCSS SelectorKind = iota
	// SelectorPath is a structural path such as "div[2]/div" (relative to the scope)
	// or "/html/body/div[1]" (absolute). Steps are tag names with optional 1-based
	// positions among same-tag siblings; a step without a position selects every
	// matching child.
	SelectorPath
)

// Selector locates elements inside a scope.
type Selector struct {
	Kind SelectorKind
	Expr string
}

// CSS builds a CSS selector.
func CSS(expr string) Selector {
	return Selector{Kind: SelectorCSS, Expr: expr}
}

// Path builds a structural path selector.
func Path(expr string) Selector {
	return Selector{Kind: SelectorPath, Expr: expr}
}

func (s Selector) String() string {
	if s.Kind == SelectorPath {
		return "path:" + s.Expr
	}
	return "css:" + s.Expr
}

// Scope is anything selectors can be evaluated against: the document or an element.
// Find returns an error wrapping entity.ErrNotFound when nothing matches.
// FindAll returns an empty slice when nothing matches.
type Scope interface {
	Find(sel Selector) (Element, error)
	FindAll(sel Selector) ([]Element, error)
}

// Element is a handle to one rendered element.
type Element interface {
	Scope
	Text() (string, error)
	Attribute(name string) (string, bool, error)
	HTML() (string, error)
}

// DocumentReader gives read-only access to the currently rendered document.
// Extractors only ever receive this view.
type DocumentReader interface {
	Scope
}

// Session is one exclusively owned page session. Only the chain orchestrator
// calls the state-changing methods (Navigate, Click).
type Session interface {
	DocumentReader

	Navigate(ctx context.Context, url string) error
	// WaitVisible blocks until sel matches a visible element. Returns an error
	// wrapping entity.ErrTimeout when timeout elapses first.
	WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) error
	// WaitText blocks until the element matched by sel contains text.
	WaitText(ctx context.Context, sel Selector, text string, timeout time.Duration) error
	// Click fires a click and returns without waiting for the page to react.
	Click(ctx context.Context, el Element) error
	// Settle waits a fixed delay for the page to re-render after a click.
	Settle(ctx context.Context, d time.Duration) error
	// HTML returns the serialized current document.
	HTML() (string, error)
	Close() error
}

// SessionFactory opens page sessions.
type SessionFactory interface {
	Open(ctx context.Context) (Session, error)
}
