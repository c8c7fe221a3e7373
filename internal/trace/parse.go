// Package trace streams execution trace files line by line and rewrites each
// raw address into its symbolized form.
package trace

import (
	"strconv"
	"strings"
)

// ParseAddress extracts the leading hexadecimal address of a trace line.
//
// Trace lines carry one hex literal per line, with or without a 0x marker.
// The conversion is best effort: text that does not begin with a hex digit
// yields address zero, which is indistinguishable from a literal zero address
// and is sent to resolution like any other value. A literal longer than 64
// bits saturates.
func ParseAddress(line string) uint64 {
	s := strings.TrimLeft(line, " \t")
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}

	end := 0
	for end < len(s) && isHexDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0
	}

	v, err := strconv.ParseUint(s[:end], 16, 64)
	if err != nil {
		return ^uint64(0)
	}
	return v
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
