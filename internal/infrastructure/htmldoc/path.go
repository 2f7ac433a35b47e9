package htmldoc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pathStep is one "/"-separated step of a structural path: a tag name with an
// optional 1-based position among same-tag children. Position 0 selects all.
type pathStep struct {
	tag      string
	position int
}

func parsePath(expr string) (absolute bool, steps []pathStep, err error) {
	expr = strings.TrimSpace(expr)
	expr = strings.TrimPrefix(expr, "./")
	if strings.HasPrefix(expr, "/") {
		absolute = true
		expr = strings.TrimPrefix(expr, "/")
	}
	if expr == "" {
		return false, nil, fmt.Errorf("empty path")
	}
	for _, raw := range strings.Split(expr, "/") {
		step, err := parseStep(raw)
		if err != nil {
			return false, nil, fmt.Errorf("path %q: %w", expr, err)
		}
		steps = append(steps, step)
	}
	return absolute, steps, nil
}

func parseStep(raw string) (pathStep, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return pathStep{}, fmt.Errorf("empty step")
	}
	open := strings.IndexByte(raw, '[')
	if open < 0 {
		return pathStep{tag: raw}, nil
	}
	if !strings.HasSuffix(raw, "]") || open == 0 {
		return pathStep{}, fmt.Errorf("malformed step %q", raw)
	}
	position, err := strconv.Atoi(raw[open+1 : len(raw)-1])
	if err != nil || position < 1 {
		return pathStep{}, fmt.Errorf("malformed position in step %q", raw)
	}
	return pathStep{tag: raw[:open], position: position}, nil
}

// walkPath evaluates steps starting from the children of from.
func walkPath(from *goquery.Selection, steps []pathStep) *goquery.Selection {
	current := from
	for _, step := range steps {
		next := make([]*goquery.Selection, 0, current.Length())
		current.Each(func(_ int, node *goquery.Selection) {
			children := node.ChildrenFiltered(step.tag)
			if step.position > 0 {
				children = children.Eq(step.position - 1)
			}
			if children.Length() > 0 {
				next = append(next, children)
			}
		})
		if len(next) == 0 {
			return from.Slice(0, 0)
		}
		current = next[0]
		for _, s := range next[1:] {
			current = current.AddSelection(s)
		}
	}
	return current
}
