// Package record validates raw telemetry lines and extracts the
// battery-voltage readings bracketed by the B/H zone markers.
package record

import "strings"

// allowedChars is the full set of characters a normalized record may contain.
const allowedChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ,"

// Normalize strips all whitespace from raw and reports whether the result is
// a well-formed record: non-empty and built solely from allowedChars. The
// input is never aliased or mutated.
func Normalize(raw string) (string, bool) {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, raw)

	if stripped == "" {
		return "", false
	}
	for _, r := range stripped {
		if !strings.ContainsRune(allowedChars, r) {
			return "", false
		}
	}
	return stripped, true
}

// Readings tokenizes a normalized record on commas and returns the voltage
// readings, in tenths of a volt, found inside the battery-data zone. A token
// starting with H closes the zone before the token is considered, so it is
// never extracted itself and extraction stays off until the next zone start.
// A token starting with B opens the zone after the token is considered, so
// it is never extracted either. Zone markers match on the first character
// only; B1 opens a zone just like B does. A record without a zone yields an
// empty result, which is a valid degenerate frame.
func Readings(normalized string) []int {
	var readings []int
	zone := false
	for _, token := range strings.Split(normalized, ",") {
		if token == "" {
			continue
		}
		if token[0] == 'H' {
			zone = false
		}
		if zone {
			readings = append(readings, leadingInt(token))
		}
		if token[0] == 'B' {
			zone = true
		}
	}
	return readings
}

// leadingInt parses the longest leading run of decimal digits and ignores
// the rest. No digits means zero, not an error.
func leadingInt(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
