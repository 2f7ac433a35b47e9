package service

import (
	"fmt"
	"strings"
	"testing"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/infrastructure/htmldoc"
	"portfolio_scraper/internal/pkg/logger"

	"github.com/stretchr/testify/require"
)

// HTML builders mirroring the class names and nesting of the profile page.

func cell(inner string) string {
	return "<div>" + inner + "</div>"
}

func anchors(texts ...string) string {
	var b strings.Builder
	for _, t := range texts {
		fmt.Fprintf(&b, `<a href="/protocol/%s">%s</a>`, t, t)
	}
	return b.String()
}

func tokenRow(cells ...string) string {
	var b strings.Builder
	b.WriteString(`<div class="table_contentRow__Mi3k5 flex_flexRow__y0UR2">`)
	for _, c := range cells {
		b.WriteString(cell(c))
	}
	b.WriteString(`</div>`)
	return b.String()
}

func positionTable(headers []string, rows ...string) string {
	var b strings.Builder
	b.WriteString(`<div class="table_container"><div class="table_header">`)
	for _, h := range headers {
		fmt.Fprintf(&b, "<span>%s</span>", h)
	}
	b.WriteString(`</div><div class="table_body">`)
	b.WriteString(strings.Join(rows, ""))
	b.WriteString(`</div></div>`)
	return b.String()
}

func panel(label string, tables ...string) string {
	head := `<div class="Panel_head"><div class="Panel_tag"></div></div>`
	if label != "" {
		head = fmt.Sprintf(`<div class="Panel_head"><div class="Panel_tag"><div class="Panel_label">%s</div></div></div>`, label)
	}
	return `<div class="Panel_container__Vltd1">` + head + `<div class="Panel_tables">` + strings.Join(tables, "") + `</div></div>`
}

func project(name, usd string, panels ...string) string {
	var b strings.Builder
	b.WriteString(`<div class="Project_project__GCrhx"><div class="ProjectTitle_title">`)
	if name != "" {
		fmt.Fprintf(&b, `<a class="ProjectTitle_protocolLink__4Yqn3">%s</a>`, name)
	}
	if usd != "" {
		fmt.Fprintf(&b, `<div class="projectTitle-number">%s</div>`, usd)
	}
	b.WriteString(`</div>`)
	b.WriteString(strings.Join(panels, ""))
	b.WriteString(`</div>`)
	return b.String()
}

func walletRow(cells ...string) string {
	var b strings.Builder
	b.WriteString(`<div class="db-table-wrappedRow">`)
	for _, c := range cells {
		fmt.Fprintf(&b, `<div class="db-table-cell">%s</div>`, c)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func walletTable(total string, rows ...string) string {
	return `<div class="TokenWallet_container__FUGTE"><div class="projectTitle-number">` + total +
		`</div><div class="db-table">` + strings.Join(rows, "") + `</div></div>`
}

func chainList(names ...string) string {
	var b strings.Builder
	b.WriteString(`<div class="ChainList_chainList__x1">`)
	for i, name := range names {
		fmt.Fprintf(&b, `<div class="AssetsOnChain_chainInfo__fKA2k"><div class="ChainList_chainName__q">%s</div><div class="AssetsOnChain_usd">$%d</div></div>`, name, i+1)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// readyStatus nests a span at /html/body/div[1]/div[1]/div[1]/div/div/div/div[2]/div/div[2]/div[2]/span.
func readyStatus(text string) string {
	return `<div><div><div><div><div><div><div></div><div><div><div></div><div><div></div><div><span>` +
		text + `</span>` + strings.Repeat("</div>", 10)
}

func profilePage(body ...string) string {
	return "<html><body>" + strings.Join(body, "") + "</body></html>"
}

func parse(t *testing.T, html string) *htmldoc.Document {
	t.Helper()
	doc, err := htmldoc.Parse(html)
	require.NoError(t, err)
	return doc
}

func findOne(t *testing.T, scope port.Scope, css string) port.Element {
	t.Helper()
	el, err := scope.Find(port.CSS(css))
	require.NoError(t, err)
	return el
}

func testLogger() port.Logger {
	return logger.NewSlogAdapter()
}
