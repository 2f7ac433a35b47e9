// Package htmldoc implements the page accessor over static HTML with goquery.
// It backs offline replay of recorded sessions and the extractor tests.
package htmldoc

import (
	"fmt"
	"strings"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"
	"portfolio_scraper/internal/pkg/utils"

	"github.com/PuerkitoBio/goquery"
)

// Document is a parsed, immutable HTML document.
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from markup.
func Parse(html string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Document{doc: doc}, nil
}

// MustParse is Parse for fixtures known to be well formed.
func MustParse(html string) *Document {
	d, err := Parse(html)
	if err != nil {
		panic(err)
	}
	return d
}

// Find implements port.Scope.
func (d *Document) Find(sel port.Selector) (port.Element, error) {
	return find(d.doc.Selection, d.doc.Selection, sel)
}

// FindAll implements port.Scope.
func (d *Document) FindAll(sel port.Selector) ([]port.Element, error) {
	return findAll(d.doc.Selection, d.doc.Selection, sel)
}

// HTML returns the serialized document.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}

// element wraps a single-node goquery selection.
type element struct {
	root *goquery.Selection
	sel  *goquery.Selection
}

func (e *element) Find(sel port.Selector) (port.Element, error) {
	return find(e.root, e.sel, sel)
}

func (e *element) FindAll(sel port.Selector) ([]port.Element, error) {
	return findAll(e.root, e.sel, sel)
}

// Text returns the element text with whitespace runs collapsed, close to what a
// browser reports as rendered text.
func (e *element) Text() (string, error) {
	return utils.CollapseWhitespace(e.sel.Text()), nil
}

func (e *element) Attribute(name string) (string, bool, error) {
	value, ok := e.sel.Attr(name)
	return value, ok, nil
}

func (e *element) HTML() (string, error) {
	return goquery.OuterHtml(e.sel)
}

func match(root, scope *goquery.Selection, sel port.Selector) (*goquery.Selection, error) {
	switch sel.Kind {
	case port.SelectorCSS:
		return scope.Find(sel.Expr), nil
	case port.SelectorPath:
		absolute, steps, err := parsePath(sel.Expr)
		if err != nil {
			return nil, err
		}
		if absolute {
			return walkPath(root, steps), nil
		}
		return walkPath(scope, steps), nil
	default:
		return nil, fmt.Errorf("unsupported selector kind %d", sel.Kind)
	}
}

func find(root, scope *goquery.Selection, sel port.Selector) (port.Element, error) {
	found, err := match(root, scope, sel)
	if err != nil {
		return nil, err
	}
	if found.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrNotFound, sel)
	}
	return &element{root: root, sel: found.First()}, nil
}

func findAll(root, scope *goquery.Selection, sel port.Selector) ([]port.Element, error) {
	found, err := match(root, scope, sel)
	if err != nil {
		return nil, err
	}
	elements := make([]port.Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, &element{root: root, sel: s})
	})
	return elements, nil
}
