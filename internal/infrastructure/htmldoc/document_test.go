package htmldoc

import (
	"testing"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const panelHTML = `<html><body>
<div id="first">
  <div class="panel">
    <div><div><div>  Lending
    </div></div></div>
    <div>
      <div class="table" data-kind="supplied"><div><span>Supplied</span></div><div>
        <div class="row"><div><a>ETH</a></div><div>1.5</div><div><div>nested</div></div></div>
      </div></div>
      <div class="table" data-kind="borrowed"><div><span>Borrowed</span></div><div></div></div>
    </div>
  </div>
</div>
<div id="second"><span>x</span></div>
</body></html>`

func texts(t *testing.T, els []port.Element) []string {
	t.Helper()
	out := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text()
		require.NoError(t, err)
		out = append(out, text)
	}
	return out
}

func TestDocumentCSS(t *testing.T) {
	doc := MustParse(panelHTML)

	tables, err := doc.FindAll(port.CSS("div.table"))
	require.NoError(t, err)
	require.Len(t, tables, 2)

	kind, ok, err := tables[1].Attribute("data-kind")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "borrowed", kind)

	_, ok, err = tables[1].Attribute("data-missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = doc.Find(port.CSS("div.absent"))
	assert.ErrorIs(t, err, entity.ErrNotFound)

	none, err := doc.FindAll(port.CSS("div.absent"))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDocumentRelativePath(t *testing.T) {
	doc := MustParse(panelHTML)
	panel, err := doc.Find(port.CSS("div.panel"))
	require.NoError(t, err)

	label, err := panel.Find(port.Path("div[1]/div[1]/div[1]"))
	require.NoError(t, err)
	text, err := label.Text()
	require.NoError(t, err)
	assert.Equal(t, "Lending", text, "whitespace is collapsed")

	tables, err := panel.FindAll(port.Path("div[2]/div"))
	require.NoError(t, err)
	assert.Len(t, tables, 2)

	row, err := panel.Find(port.CSS("div.row"))
	require.NoError(t, err)
	cells, err := row.FindAll(port.Path("div"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ETH", "1.5", "nested"}, texts(t, cells), "only direct child cells")

	_, err = panel.Find(port.Path("div[3]"))
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestDocumentAbsolutePath(t *testing.T) {
	doc := MustParse(panelHTML)
	second, err := doc.Find(port.CSS("#second"))
	require.NoError(t, err)

	// Absolute paths resolve from the document root whatever the scope.
	el, err := second.Find(port.Path("/html/body/div[1]/div/div[1]/div/div"))
	require.NoError(t, err)
	text, err := el.Text()
	require.NoError(t, err)
	assert.Equal(t, "Lending", text)

	span, err := doc.Find(port.Path("/html/body/div[2]/span"))
	require.NoError(t, err)
	html, err := span.HTML()
	require.NoError(t, err)
	assert.Equal(t, "<span>x</span>", html)
}

func TestDocumentMalformedPath(t *testing.T) {
	doc := MustParse(panelHTML)
	for _, expr := range []string{"", "div[0]", "div[x]", "[1]", "div//span"} {
		_, err := doc.Find(port.Path(expr))
		require.Error(t, err, expr)
		assert.NotErrorIs(t, err, entity.ErrNotFound, expr)
	}
}

func TestParsePath(t *testing.T) {
	absolute, steps, err := parsePath("./div[2]/span")
	require.NoError(t, err)
	assert.False(t, absolute)
	assert.Equal(t, []pathStep{{tag: "div", position: 2}, {tag: "span"}}, steps)

	absolute, steps, err = parsePath("/html/body")
	require.NoError(t, err)
	assert.True(t, absolute)
	assert.Len(t, steps, 2)
}
