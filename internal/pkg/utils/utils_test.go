package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "BNB Chain", CollapseWhitespace("  BNB \n\t Chain "))
	assert.Equal(t, "", CollapseWhitespace(" \n "))
}

func TestStripCurrency(t *testing.T) {
	assert.Equal(t, "1234.56", StripCurrency("$1,234.56"))
	assert.Equal(t, "0", StripCurrency(" $0 "))
	assert.Equal(t, "-12", StripCurrency("-$12"))
}

func TestStripUSDAnnotations(t *testing.T) {
	tests := map[string]string{
		"120 USDC ($45.67)":      "120 USDC",
		"0.5 CRV (<$0.01)":       "0.5 CRV",
		"1 ARB ($1.2) 2 OP ($3)": "1 ARB  2 OP",
		"no annotation":          "no annotation",
		"10 GMX ($1,234.00)":     "10 GMX",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripUSDAnnotations(in), in)
	}
}

func TestIsPlainAmount(t *testing.T) {
	for _, s := range []string{"1", "1,000.25", ".5"} {
		assert.True(t, IsPlainAmount(s), s)
	}
	for _, s := range []string{"", "$1", "1 ETH", "-1", "1e5"} {
		assert.False(t, IsPlainAmount(s), s)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))
	assert.Equal(t, "abc", Truncate("abc", 0))
}

type ordered struct{}

func (ordered) MarshalJSON() ([]byte, error) {
	return []byte(`{"b":1,"a":2}`), nil
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, WriteJSONFile(path, map[string]any{"profile": ordered{}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"profile\": {\n        \"b\": 1,\n        \"a\": 2\n    }\n}\n", string(data))
}
