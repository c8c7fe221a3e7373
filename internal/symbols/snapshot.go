package symbols

import (
	"bufio"
	"bytes"
	"debug/elf"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tracelab/tracesym/internal/errors"
)

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// Load reads the snapshot at path and builds the symbol table used for
// resolution. Two snapshot formats are recognized, sniffed by content:
//
//   - An ELF image: symbols come from .symtab, falling back to .dynsym.
//   - A flat symbol map (kallsyms format): "ADDR TYPE NAME [module]" per line.
//
// Loading must succeed before any trace file is processed; a snapshot with no
// usable symbols is an initialization error.
func Load(path string, logger zerolog.Logger) (*Table, error) {
	logger = logger.With().Str("component", "symbols").Logger()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer errors.DeferClose(logger, f, "failed to close snapshot")

	magic := make([]byte, len(elfMagic))
	if n, _ := io.ReadFull(f, magic); n == len(elfMagic) && bytes.Equal(magic, elfMagic) {
		return loadELF(path, logger)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind snapshot %s: %w", path, err)
	}
	return loadSymbolMap(f, path, logger)
}

// loadSymbolMap parses a kallsyms-style flat symbol map. Lines that do not
// parse are skipped. Symbols without a module tag are attributed to a module
// named after the snapshot file.
func loadSymbolMap(r io.Reader, path string, logger zerolog.Logger) (*Table, error) {
	defaultModule := snapshotModuleName(path)

	var symbols []Symbol
	zeroAddresses := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			continue
		}

		addr, err := strconv.ParseUint(parts[0], 16, 64)
		if err != nil {
			continue
		}

		// Zero addresses mean the capture was taken without permission to
		// see them (e.g. kallsyms under kptr_restrict).
		if addr == 0 {
			zeroAddresses++
			continue
		}

		module := defaultModule
		if len(parts) > 3 && strings.HasPrefix(parts[3], "[") && strings.HasSuffix(parts[3], "]") {
			module = strings.Trim(parts[3], "[]")
		}

		symbols = append(symbols, Symbol{
			Addr:   addr,
			Name:   parts[2],
			Module: module,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	if len(symbols) == 0 && zeroAddresses > 0 {
		return nil, fmt.Errorf("all addresses in %s are 0 (snapshot captured without address access?)", path)
	}

	logger.Info().
		Str("snapshot", path).
		Str("format", "symbol-map").
		Int("symbol_count", len(symbols)).
		Int("zero_addresses", zeroAddresses).
		Msg("Snapshot loaded")

	return NewTable(symbols, logger)
}

// loadELF reads the symbol table of an ELF image. All symbols belong to a
// single module named after the snapshot file.
func loadELF(path string, logger zerolog.Logger) (*Table, error) {
	ef, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF snapshot %s: %w", path, err)
	}
	defer errors.DeferClose(logger, ef, "failed to close ELF snapshot")

	raw, err := ef.Symbols()
	if stderrors.Is(err, elf.ErrNoSymbols) {
		raw, err = ef.DynamicSymbols()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read symbols from %s: %w", path, err)
	}

	module := snapshotModuleName(path)
	symbols := make([]Symbol, 0, len(raw))
	for _, sym := range raw {
		if sym.Value == 0 || sym.Name == "" {
			continue
		}
		symbols = append(symbols, Symbol{
			Addr:   sym.Value,
			Name:   sym.Name,
			Module: module,
		})
	}

	logger.Info().
		Str("snapshot", path).
		Str("format", "elf").
		Int("symbol_count", len(symbols)).
		Msg("Snapshot loaded")

	return NewTable(symbols, logger)
}

// snapshotModuleName derives a module name from the snapshot path, e.g.
// "vmlinux.map" -> "vmlinux".
func snapshotModuleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
