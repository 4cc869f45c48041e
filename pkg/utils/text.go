package utils

import "unicode/utf8"

// Cap returns s truncated to at most maxLen bytes, backing off to the nearest
// rune boundary so the result stays valid UTF-8. If maxLen is 0 or negative,
// returns s unchanged. Used to bound stored text and status previews.
func Cap(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
