package service

import (
	"testing"

	"portfolio_scraper/internal/app/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutWithOverrides(t *testing.T) {
	base := DefaultLayout()

	layout, err := base.WithOverrides(map[string][]string{
		FieldChainRows: {"css:div.ChainRow", "path:div[1]/div"},
		FieldAnchors:   {"a.token"},
	})
	require.NoError(t, err)

	require.Len(t, layout.ChainRows, 2)
	assert.Equal(t, port.CSS("div.ChainRow"), layout.ChainRows[0].Selector)
	assert.Equal(t, port.Path("div[1]/div"), layout.ChainRows[1].Selector)
	assert.Equal(t, port.CSS("a.token"), layout.Anchors[0].Selector)
	assert.Equal(t, base.Projects, layout.Projects, "untouched fields keep defaults")
	assert.Equal(t, port.CSS("div.AssetsOnChain_chainInfo__fKA2k"), base.ChainRows[0].Selector, "base layout is not modified")
}

func TestLayoutWithOverridesErrors(t *testing.T) {
	_, err := DefaultLayout().WithOverrides(map[string][]string{"chainTitle": {"div"}})
	assert.ErrorContains(t, err, `unknown layout field "chainTitle"`)

	_, err = DefaultLayout().WithOverrides(map[string][]string{FieldTables: {}})
	assert.ErrorContains(t, err, "layout field tables")

	_, err = DefaultLayout().WithOverrides(map[string][]string{FieldTables: {"path:"}})
	assert.Error(t, err)
}

func TestDefaultLayoutCoversEveryField(t *testing.T) {
	layout := DefaultLayout()
	for name, chain := range layout.fields() {
		assert.NotEmpty(t, *chain, name)
	}
	assert.Len(t, layout.ChainName, 3)
	assert.Equal(t, "first-child", layout.ChainName[0].Name)
}
