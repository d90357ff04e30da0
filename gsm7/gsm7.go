// Package gsm7 implements the GSM 7-bit default alphabet of 3GPP TS 23.038,
// including the extension table, and the septet packing scheme used by the
// SMS user data field.
package gsm7

// escape selects the extension table for the following septet.
const escape = 0x1B

// alphabet maps septet values 0x00-0x7F to runes.
var alphabet = [128]rune{
	'@', '£', '$', '¥', 'è', 'é', 'ù', 'ì', 'ò', 'Ç', '\n', 'Ø', 'ø', '\r', 'Å', 'å',
	'Δ', '_', 'Φ', 'Γ', 'Λ', 'Ω', 'Π', 'Ψ', 'Σ', 'Θ', 'Ξ', '\x1b', 'Æ', 'æ', 'ß', 'É',
	' ', '!', '"', '#', '¤', '%', '&', '\'', '(', ')', '*', '+', ',', '-', '.', '/',
	'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', ':', ';', '<', '=', '>', '?',
	'¡', 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O',
	'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z', 'Ä', 'Ö', 'Ñ', 'Ü', '§',
	'¿', 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o',
	'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z', 'ä', 'ö', 'ñ', 'ü', 'à',
}

// extension maps escaped septet values to runes.
var extension = map[byte]rune{
	0x0A: '\f',
	0x14: '^',
	0x28: '{',
	0x29: '}',
	0x2F: '\\',
	0x3C: '[',
	0x3D: '~',
	0x3E: ']',
	0x40: '|',
	0x65: '€',
}

var (
	reverse    map[rune]byte
	reverseExt map[rune]byte
)

func init() {
	reverse = make(map[rune]byte, len(alphabet))
	for i, r := range alphabet {
		reverse[r] = byte(i)
	}
	reverseExt = make(map[rune]byte, len(extension))
	for b, r := range extension {
		reverseExt[r] = b
	}
}

// StringToSeptets encodes text as a stream of unpacked septets, one septet
// per byte. Characters from the extension table occupy two septets (escape
// plus value). Characters outside both tables encode as '?'.
func StringToSeptets(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if v, ok := reverse[r]; ok {
			out = append(out, v)
		} else if v, ok := reverseExt[r]; ok {
			out = append(out, escape, v)
		} else {
			out = append(out, '?')
		}
	}
	return out
}

// SeptetsToString decodes a stream of unpacked septets back to text,
// resolving extension table escapes.
func SeptetsToString(septets []byte) string {
	out := make([]rune, 0, len(septets))
	for i := 0; i < len(septets); i++ {
		v := septets[i] & 0x7F
		if v == escape && i+1 < len(septets) {
			i++
			if r, ok := extension[septets[i]&0x7F]; ok {
				out = append(out, r)
			} else {
				// An unknown escaped value decodes as the character from
				// the default table, per TS 23.038.
				out = append(out, alphabet[septets[i]&0x7F])
			}
			continue
		}
		out = append(out, alphabet[v])
	}
	return string(out)
}

// SeptetCount reports how many septets the text occupies once encoded,
// counting extension table characters twice.
func SeptetCount(s string) int {
	n := 0
	for _, r := range s {
		if _, ok := reverseExt[r]; ok {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// BitSkip returns the number of fill bits needed so that packed septet data
// starts on a septet boundary after a UDH of the given total octet length.
func BitSkip(udhOctets int) int {
	return (7 - (udhOctets*8)%7) % 7
}

// Pack packs unpacked septets into an octet stream, LSB first, preceded by
// skipBits zero fill bits.
func Pack(septets []byte, skipBits int) []byte {
	totalBits := skipBits + len(septets)*7
	out := make([]byte, (totalBits+7)/8)
	bit := skipBits
	for _, s := range septets {
		s &= 0x7F
		idx, off := bit/8, bit%8
		out[idx] |= s << off
		if off > 1 {
			out[idx+1] |= s >> (8 - off)
		}
		bit += 7
	}
	return out
}

// Unpack extracts count septets from a packed octet stream, starting at bit
// zero. A negative count, or one beyond the capacity of the stream, yields
// every whole septet present.
func Unpack(octets []byte, count int) []byte {
	capacity := len(octets) * 8 / 7
	if count < 0 || count > capacity {
		count = capacity
	}
	out := make([]byte, 0, count)
	for i := 0; i < count; i++ {
		bit := i * 7
		idx, off := bit/8, bit%8
		v := octets[idx] >> off
		if off > 1 && idx+1 < len(octets) {
			v |= octets[idx+1] << (8 - off)
		}
		out = append(out, v&0x7F)
	}
	return out
}

// Split breaks text into chunks of at most septetsPerPart septets without
// splitting an escape sequence across a boundary.
func Split(text string, septetsPerPart int) []string {
	if septetsPerPart < 2 {
		septetsPerPart = 2
	}
	var parts []string
	var cur []rune
	used := 0
	for _, r := range text {
		n := 1
		if _, ok := reverseExt[r]; ok {
			n = 2
		}
		if used+n > septetsPerPart {
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
