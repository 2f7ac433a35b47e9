package utils

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	currencyStrip  = strings.NewReplacer("$", "", ",", "")
	rewardsSuffix  = regexp.MustCompile(`\(<?\$[0-9,.]+\)`)
	plainAmountExp = regexp.MustCompile(`^[0-9,.]+$`)
)

// CollapseWhitespace trims s and replaces every run of whitespace with a single space.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// StripCurrency removes dollar signs and thousands separators: "$1,234.56" -> "1234.56".
func StripCurrency(s string) string {
	return strings.TrimSpace(currencyStrip.Replace(s))
}

// StripUSDAnnotations removes parenthesized dollar annotations such as "($45.67)"
// or "(<$0.01)": "120 USDC ($45.67)" -> "120 USDC".
func StripUSDAnnotations(s string) string {
	return strings.TrimSpace(rewardsSuffix.ReplaceAllString(s, ""))
}

// IsPlainAmount reports whether s consists only of digits, commas and dots.
func IsPlainAmount(s string) bool {
	return plainAmountExp.MatchString(s)
}

// Truncate shortens s to at most n bytes for log output.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
