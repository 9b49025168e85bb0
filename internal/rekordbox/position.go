package rekordbox

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatSeconds renders a millisecond position as seconds with exactly
// three decimals. Integer arithmetic keeps the conversion exact.
func FormatSeconds(ms uint32) string {
	return fmt.Sprintf("%d.%03d", ms/1000, ms%1000)
}

// ParseSeconds reverses FormatSeconds. Fractions with fewer than three
// digits are accepted; more digits are an error.
func ParseSeconds(s string) (uint32, error) {
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 3 {
		return 0, fmt.Errorf("position %q: more than millisecond precision", s)
	}
	sec, err := strconv.ParseUint(whole, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("position %q: %w", s, err)
	}
	var ms uint64
	if frac != "" {
		ms, err = strconv.ParseUint(frac+strings.Repeat("0", 3-len(frac)), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("position %q: %w", s, err)
		}
	}
	total := sec*1000 + ms
	if total > 1<<32-1 {
		return 0, fmt.Errorf("position %q: out of range", s)
	}
	return uint32(total), nil
}
