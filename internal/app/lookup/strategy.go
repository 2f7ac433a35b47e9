// Package lookup resolves a field of the page through an ordered list of
// selector strategies. The first strategy that matches wins.
package lookup

import (
	"errors"
	"fmt"
	"strings"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"
)

// Strategy is one way of locating a field.
type Strategy struct {
	Name     string
	Selector port.Selector
}

// Chain is an ordered list of strategies for one field.
type Chain []Strategy

// Of builds a chain with strategies named after their position.
func Of(selectors ...port.Selector) Chain {
	chain := make(Chain, 0, len(selectors))
	for i, sel := range selectors {
		chain = append(chain, Strategy{Name: fmt.Sprintf("strategy-%d", i+1), Selector: sel})
	}
	return chain
}

// Find returns the first element matched by any strategy, together with the
// name of the strategy that matched. Errors other than entity.ErrNotFound stop
// the search.
func (c Chain) Find(scope port.Scope) (port.Element, string, error) {
	for _, strategy := range c {
		el, err := scope.Find(strategy.Selector)
		if err == nil {
			return el, strategy.Name, nil
		}
		if !errors.Is(err, entity.ErrNotFound) {
			return nil, strategy.Name, fmt.Errorf("strategy %s (%s): %w", strategy.Name, strategy.Selector, err)
		}
	}
	return nil, "", fmt.Errorf("%w: no strategy matched (%s)", entity.ErrNotFound, c)
}

// FindAll returns the matches of the first strategy that matches anything.
func (c Chain) FindAll(scope port.Scope) ([]port.Element, error) {
	for _, strategy := range c {
		els, err := scope.FindAll(strategy.Selector)
		if err != nil {
			return nil, fmt.Errorf("strategy %s (%s): %w", strategy.Name, strategy.Selector, err)
		}
		if len(els) > 0 {
			return els, nil
		}
	}
	return []port.Element{}, nil
}

// Text returns the trimmed text of the first element any strategy matches.
func (c Chain) Text(scope port.Scope) (string, error) {
	el, _, err := c.Find(scope)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c Chain) String() string {
	parts := make([]string, 0, len(c))
	for _, strategy := range c {
		parts = append(parts, strategy.Selector.String())
	}
	return strings.Join(parts, " | ")
}

// ParseSelector reads "css:<expr>" or "path:<expr>". A bare expression is CSS.
func ParseSelector(raw string) (port.Selector, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "path:"):
		expr := strings.TrimSpace(strings.TrimPrefix(raw, "path:"))
		if expr == "" {
			return port.Selector{}, fmt.Errorf("empty path selector")
		}
		return port.Path(expr), nil
	case strings.HasPrefix(raw, "css:"):
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "css:"))
	}
	if raw == "" {
		return port.Selector{}, fmt.Errorf("empty css selector")
	}
	return port.CSS(raw), nil
}

// ParseChain turns a list of raw selectors into a chain.
func ParseChain(raws []string) (Chain, error) {
	selectors := make([]port.Selector, 0, len(raws))
	for _, raw := range raws {
		sel, err := ParseSelector(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse selector %q: %w", raw, err)
		}
		selectors = append(selectors, sel)
	}
	if len(selectors) == 0 {
		return nil, fmt.Errorf("no selectors given")
	}
	return Of(selectors...), nil
}
