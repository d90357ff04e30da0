package at

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ValueNotReported is the sentinel returned for string fields a device did
// not report or reported in a form that cannot be parsed. Numeric fields
// yield zero instead. Device responses vary too widely to make these hard
// errors.
const ValueNotReported = "* N/A *"

var (
	okRe     = regexp.MustCompile(`\s+OK\s*`)
	wsRe     = regexp.MustCompile(`\s+`)
	quotedRe = regexp.MustCompile(`"([^"]*)"`)
)

// IsError reports whether an AT response is an error outcome. An empty
// response counts as an error (the driver produces one when it could not
// collect a response at all), as does any line reading exactly ERROR or
// containing a CME/CMS error marker. The bare substring "ERROR" inside
// reported values (quoted menu titles and the like) is not an error.
func IsError(text string) bool {
	if text == "" {
		return true
	}
	if strings.Contains(text, "CME ERROR:") || strings.Contains(text, "CMS ERROR:") {
		return true
	}
	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\r' || r == '\n' }) {
		if strings.TrimSpace(line) == ERROR {
			return true
		}
	}
	return false
}

// MemIndex extracts the message memory index from a list response line such
// as "+CMGL: 2,0,,26": the integer between the first colon and the first
// comma.
func MemIndex(line string) (int, error) {
	i := strings.IndexByte(line, ':')
	j := strings.IndexByte(line, ',')
	if i < 0 || j < 0 || j <= i {
		return 0, fmt.Errorf("at: no memory index in line %q", line)
	}
	return strconv.Atoi(strings.TrimSpace(line[i+1 : j]))
}

// NextUsefulLine advances the scanner to the next line with non-blank
// content and returns it trimmed. The second result is false at end of
// input.
func NextUsefulLine(sc *bufio.Scanner) (string, bool) {
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line, true
		}
	}
	return "", false
}

// stripCommon removes the OK tail and all whitespace from a response.
func stripCommon(resp string) string {
	return wsRe.ReplaceAllString(okRe.ReplaceAllString(resp, ""), "")
}

// stripPunct additionally removes quotes, commas and colons.
func stripPunct(resp string) string {
	return strings.NewReplacer(`"`, "", ",", "", ":", "").Replace(stripCommon(resp))
}

// ParseManufacturer extracts the manufacturer name from an AT+CGMI response.
func ParseManufacturer(resp string) string {
	if IsError(resp) {
		return ValueNotReported
	}
	out := stripPunct(resp)
	if out == "" {
		return ValueNotReported
	}
	return out
}

// ParseModel extracts the model name from an AT+CGMM response. Devices that
// report a band list embed the model as a MODEL= field.
func ParseModel(resp string) string {
	if IsError(resp) {
		return ValueNotReported
	}
	out := stripPunct(resp)
	if i := strings.Index(strings.ToUpper(out), "MODEL="); i >= 0 {
		out = out[i+len("MODEL="):]
	}
	if out == "" {
		return ValueNotReported
	}
	return out
}

// ParseSerialNo extracts the IMEI digits from an AT+CGSN response.
func ParseSerialNo(resp string) string {
	if IsError(resp) {
		return ValueNotReported
	}
	var digits strings.Builder
	for _, r := range stripCommon(resp) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ValueNotReported
	}
	return digits.String()
}

// ParseIMSI extracts the subscriber identity from an AT+CIMI response.
func ParseIMSI(resp string) string {
	if IsError(resp) {
		return ValueNotReported
	}
	out := stripCommon(resp)
	if out == "" || !allDigits(out) {
		return ValueNotReported
	}
	return out
}

// ParseSwVersion extracts the firmware revision from an AT+CGMR response.
// Interior spacing is part of the reported value and is preserved.
func ParseSwVersion(resp string) string {
	if IsError(resp) {
		return ValueNotReported
	}
	out := strings.TrimSpace(okRe.ReplaceAllString(resp, ""))
	if out == "" {
		return ValueNotReported
	}
	return out
}

// ParseMsisdn extracts the subscriber's number from an AT+CNUM response,
// preferring quoted fields and falling back to comma-separated ones.
func ParseMsisdn(resp string) string {
	if IsError(resp) {
		return ValueNotReported
	}
	cleaned := wsRe.ReplaceAllString(okRe.ReplaceAllString(resp, ""), "")
	for _, m := range quotedRe.FindAllStringSubmatch(cleaned, -1) {
		if candidate := m[1]; candidate != "" && allDigits(candidate) {
			return candidate
		}
	}
	for _, field := range strings.Split(cleaned, ",") {
		field = strings.Trim(field, `":`)
		if field != "" && allDigits(field) {
			return field
		}
	}
	return ValueNotReported
}

// ParseBatteryLevel extracts the charge percentage from an AT+CBC response:
// the second comma-separated integer after the colon. Malformed responses
// yield zero.
func ParseBatteryLevel(resp string) int {
	return fieldInt(resp, 2)
}

// ParseSignalLevel extracts the signal strength from an AT+CSQ response and
// rescales the 0-31 RSSI reading to a percentage. Malformed responses yield
// zero.
func ParseSignalLevel(resp string) int {
	return fieldInt(resp, 1) * 100 / 31
}

// fieldInt tokenizes a cleaned response on colons and commas and parses the
// n-th token as an integer, zero on any failure.
func fieldInt(resp string, n int) int {
	if IsError(resp) {
		return 0
	}
	tokens := strings.FieldsFunc(stripCommon(resp), func(r rune) bool { return r == ':' || r == ',' })
	if n >= len(tokens) {
		return 0
	}
	v, err := strconv.Atoi(tokens[n])
	if err != nil {
		return 0
	}
	return v
}

// ParseGprsAttached reports whether an AT+CGATT? response indicates the
// device is attached to the packet service.
func ParseGprsAttached(resp string) bool {
	cleaned := stripCommon(resp)
	i := strings.Index(cleaned, "CGATT")
	if i < 0 {
		return false
	}
	rest := strings.TrimLeft(cleaned[i+len("CGATT"):], ":")
	return strings.HasPrefix(rest, "1")
}

// ParseNetworkRegistration extracts the registration state from an AT+CREG?
// response: the second comma-separated integer. An unparseable response is
// an error; the caller decides how fatal each state is.
func ParseNetworkRegistration(resp string) (int, error) {
	cleaned := strings.ReplaceAll(stripCommon(resp), "+CREG:", "")
	tokens := strings.Split(cleaned, ",")
	if len(tokens) < 2 {
		return 0, fmt.Errorf("at: invalid CREG response %q", resp)
	}
	state, err := strconv.Atoi(tokens[1])
	if err != nil {
		return 0, fmt.Errorf("at: invalid CREG response %q", resp)
	}
	return state, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
