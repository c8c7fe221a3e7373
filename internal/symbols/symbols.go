// Package symbols resolves raw trace addresses to human-readable names using
// a symbol table seeded from a process or kernel memory snapshot.
package symbols

import (
	"fmt"
	"strings"
)

// Style selects the output format of a resolved address.
type Style int

const (
	// StyleFullSymbol renders the nearest known symbol, e.g. "KiPageFault+0x42".
	StyleFullSymbol Style = iota
	// StyleModOffset renders the owning module and offset, e.g. "ntoskrnl+0x1b242".
	StyleModOffset
)

// String returns the flag spelling of the style.
func (s Style) String() string {
	switch s {
	case StyleModOffset:
		return "modoff"
	case StyleFullSymbol:
		return "fullsym"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// ParseStyle parses a style flag value (case-insensitive).
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(s) {
	case "modoff":
		return StyleModOffset, nil
	case "fullsym":
		return StyleFullSymbol, nil
	default:
		return StyleFullSymbol, fmt.Errorf("unknown trace style %q (expected modoff or fullsym)", s)
	}
}

// Resolver resolves an address to its symbolized form.
// Resolution is synchronous; implementations are expected to be queried one
// address at a time.
type Resolver interface {
	Resolve(addr uint64, style Style) (string, error)
}
