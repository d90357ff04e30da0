package tpdu

import (
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"
)

// ucs2Codec transforms between Go strings and the UTF-16BE octets carried
// in a UCS-2 coded user data field.
var ucs2Codec = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

func encodeUCS2(s string) ([]byte, error) {
	return ucs2Codec.NewEncoder().Bytes([]byte(s))
}

func decodeUCS2(b []byte) (string, error) {
	out, err := ucs2Codec.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ucs2Units reports the number of 16-bit code units the string occupies
// when encoded, counting surrogate pairs as two.
func ucs2Units(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}

// splitUCS2 breaks text into chunks of at most unitsPerPart 16-bit code
// units without splitting a surrogate pair across a boundary.
func splitUCS2(text string, unitsPerPart int) []string {
	if unitsPerPart < 2 {
		unitsPerPart = 2
	}
	var parts []string
	var cur []rune
	used := 0
	for _, r := range text {
		n := len(utf16.Encode([]rune{r}))
		if used+n > unitsPerPart {
			parts = append(parts, string(cur))
			cur = cur[:0]
			used = 0
		}
		cur = append(cur, r)
		used += n
	}
	parts = append(parts, string(cur))
	return parts
}
