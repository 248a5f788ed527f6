package record

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeClient trims surrounding whitespace and converts the label to
// Unicode NFC so visually identical labels land in the same client group.
// ok is false for labels that are not valid UTF-8.
func NormalizeClient(label string) (client string, ok bool) {
	if !utf8.ValidString(label) {
		return "", false
	}
	return norm.NFC.String(strings.TrimSpace(label)), true
}
