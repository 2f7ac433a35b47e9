package lookup

import (
	"errors"
	"testing"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"
	"portfolio_scraper/internal/infrastructure/htmldoc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<div class="row"><div>  Ethereum  </div><span class="name">eth</span></div>
<div class="row"><div>Base</div></div>
</body></html>`

type failingScope struct{}

func (failingScope) Find(port.Selector) (port.Element, error)      { return nil, errors.New("session closed") }
func (failingScope) FindAll(port.Selector) ([]port.Element, error) { return nil, errors.New("session closed") }

func TestChainFindFallsThrough(t *testing.T) {
	doc := htmldoc.MustParse(page)
	chain := Chain{
		{Name: "missing", Selector: port.CSS(".absent")},
		{Name: "by-class", Selector: port.CSS("span.name")},
		{Name: "first-row", Selector: port.Path("/html/body/div[1]/div")},
	}

	el, name, err := chain.Find(doc)
	require.NoError(t, err)
	assert.Equal(t, "by-class", name)
	text, err := el.Text()
	require.NoError(t, err)
	assert.Equal(t, "eth", text)
}

func TestChainFindNotFound(t *testing.T) {
	_, _, err := Of(port.CSS(".a"), port.CSS(".b")).Find(htmldoc.MustParse(page))
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.ErrorContains(t, err, "css:.a | css:.b")
}

func TestChainFindStopsOnOtherErrors(t *testing.T) {
	_, name, err := Of(port.CSS(".a"), port.CSS(".b")).Find(failingScope{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, entity.ErrNotFound)
	assert.Equal(t, "strategy-1", name)

	_, err = Of(port.CSS(".a")).FindAll(failingScope{})
	assert.Error(t, err)
}

func TestChainFindAll(t *testing.T) {
	doc := htmldoc.MustParse(page)

	rows, err := Of(port.CSS(".absent"), port.CSS("div.row")).FindAll(doc)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	none, err := Of(port.CSS(".absent")).FindAll(doc)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestChainText(t *testing.T) {
	doc := htmldoc.MustParse(page)
	row, _, err := Of(port.CSS("div.row")).Find(doc)
	require.NoError(t, err)

	text, err := Of(port.Path("div[1]")).Text(row)
	require.NoError(t, err)
	assert.Equal(t, "Ethereum", text)
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		raw     string
		want    port.Selector
		wantErr bool
	}{
		{raw: "div.row", want: port.CSS("div.row")},
		{raw: " css: span > a ", want: port.CSS("span > a")},
		{raw: "path:div[2]/div", want: port.Path("div[2]/div")},
		{raw: "path:", wantErr: true},
		{raw: "css:", wantErr: true},
		{raw: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSelector(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChain(t *testing.T) {
	chain, err := ParseChain([]string{"css:.a", "path:div[1]"})
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, "strategy-2", chain[1].Name)
	assert.Equal(t, "css:.a | path:div[1]", chain.String())

	_, err = ParseChain(nil)
	assert.Error(t, err)
}
