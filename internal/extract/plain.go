package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain returns the bytes as a string, replacing any invalid UTF-8
// sequences so downstream annotation and chunking always see valid text.
func extractPlain(content []byte) (string, error) {
	s := string(content)
	if utf8.ValidString(s) {
		return s, nil
	}
	return strings.ToValidUTF8(s, "�"), nil
}
