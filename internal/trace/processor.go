package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/tracelab/tracesym/internal/errors"
	"github.com/tracelab/tracesym/internal/symbols"
)

// Options bound and shape the processing of a single trace file.
type Options struct {
	// Skip ignores this many lines from the start of the file.
	Skip uint64
	// Max stops the file after this many symbolized lines. Zero means no limit.
	Max uint64
	// Style selects the symbolization format.
	Style symbols.Style
	// LineNumbers prefixes each output line with an "l<index>: " marker.
	LineNumbers bool
}

// FileStats are the per-file counters returned by Process.
type FileStats struct {
	Symbolized uint64
	Failed     uint64
}

// Process streams the trace at input, symbolizes each line through resolver
// and writes the result to sink.
//
// A line that fails to resolve is logged and counted but never fatal; the
// remainder of the file is still processed. Only an unreadable input or an
// unwritable sink aborts the file. The input handle is released on every exit
// path.
func Process(input string, sink io.Writer, resolver symbols.Resolver, opts Options, logger zerolog.Logger) (FileStats, error) {
	f, err := os.Open(input)
	if err != nil {
		return FileStats{}, fmt.Errorf("failed to open input %s: %w", input, err)
	}
	defer errors.DeferClose(logger, f, "failed to close input trace")

	name := filepath.Base(input)
	w := bufio.NewWriter(sink)
	var stats FileStats

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for lineNumber := uint64(0); scanner.Scan(); lineNumber++ {
		if opts.Max > 0 && stats.Symbolized >= opts.Max {
			logger.Info().
				Str("file", name).
				Uint64("max", opts.Max).
				Msg("Hit the maximum number of symbolized lines, stopping early")
			break
		}

		if lineNumber < opts.Skip {
			continue
		}

		line := scanner.Text()
		addr := ParseAddress(line)

		sym, err := resolver.Resolve(addr, opts.Style)
		if err != nil {
			logger.Warn().
				Str("file", name).
				Uint64("line", lineNumber).
				Str("address", fmt.Sprintf("%#x", addr)).
				Str("text", line).
				Msg("Symbolization failed, skipping line")
			stats.Failed++
			continue
		}

		if opts.LineNumbers {
			if _, err := fmt.Fprintf(w, "l%d: ", lineNumber); err != nil {
				return stats, fmt.Errorf("failed to write output for %s: %w", input, err)
			}
		}
		if _, err := fmt.Fprintln(w, sym); err != nil {
			return stats, fmt.Errorf("failed to write output for %s: %w", input, err)
		}
		stats.Symbolized++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to read input %s: %w", input, err)
	}

	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("failed to flush output for %s: %w", input, err)
	}
	return stats, nil
}
