package symbols

import (
	"fmt"
	"sort"

	"github.com/ianlancetaylor/demangle"
	"github.com/rs/zerolog"
)

// Symbol is a single entry of the snapshot's symbol table.
type Symbol struct {
	Addr   uint64
	Name   string
	Module string
}

// moduleRange is the address span owned by one module. End is exclusive.
type moduleRange struct {
	name string
	base uint64
	end  uint64
}

// Table is the in-memory symbol table built from a snapshot. It is read-only
// after construction.
type Table struct {
	symbols []Symbol // sorted by Addr
	modules []moduleRange
}

// NewTable builds a table from an unordered symbol list. Module spans are
// derived from the lowest address seen per module; each module's span extends
// to the base of the next one.
func NewTable(symbols []Symbol, logger zerolog.Logger) (*Table, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("snapshot contains no symbols")
	}

	sort.Slice(symbols, func(i, j int) bool {
		return symbols[i].Addr < symbols[j].Addr
	})

	base := make(map[string]uint64)
	for _, sym := range symbols {
		if cur, ok := base[sym.Module]; !ok || sym.Addr < cur {
			base[sym.Module] = sym.Addr
		}
	}
	modules := make([]moduleRange, 0, len(base))
	for name, addr := range base {
		modules = append(modules, moduleRange{name: name, base: addr})
	}
	sort.Slice(modules, func(i, j int) bool {
		return modules[i].base < modules[j].base
	})
	for i := range modules {
		if i+1 < len(modules) {
			modules[i].end = modules[i+1].base
		} else {
			modules[i].end = ^uint64(0)
		}
	}

	logger.Debug().
		Int("symbol_count", len(symbols)).
		Int("module_count", len(modules)).
		Msg("Symbol table built")

	return &Table{
		symbols: symbols,
		modules: modules,
	}, nil
}

// Resolve resolves addr to its symbolized form in the requested style.
func (t *Table) Resolve(addr uint64, style Style) (string, error) {
	if style == StyleModOffset {
		return t.resolveModOff(addr)
	}
	return t.resolveFull(addr)
}

// resolveFull finds the nearest symbol at or below addr. Mangled C++ names are
// demangled; anything else passes through unchanged.
func (t *Table) resolveFull(addr uint64) (string, error) {
	idx := sort.Search(len(t.symbols), func(i int) bool {
		return t.symbols[i].Addr > addr
	})
	if idx == 0 {
		return "", fmt.Errorf("no symbol at or below %#x", addr)
	}

	sym := t.symbols[idx-1]
	name := demangle.Filter(sym.Name)
	return fmt.Sprintf("%s+0x%x", name, addr-sym.Addr), nil
}

// resolveModOff finds the module whose span contains addr.
func (t *Table) resolveModOff(addr uint64) (string, error) {
	idx := sort.Search(len(t.modules), func(i int) bool {
		return t.modules[i].base > addr
	})
	if idx == 0 {
		return "", fmt.Errorf("no module contains %#x", addr)
	}

	mod := t.modules[idx-1]
	if addr >= mod.end {
		return "", fmt.Errorf("no module contains %#x", addr)
	}
	return fmt.Sprintf("%s+0x%x", mod.name, addr-mod.base), nil
}

// SymbolCount returns the number of symbols loaded from the snapshot.
func (t *Table) SymbolCount() int {
	return len(t.symbols)
}
