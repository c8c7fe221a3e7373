// Package config provides the run configuration and its validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/tracelab/tracesym/internal/symbols"
)

// DefaultMax is the default ceiling on symbolized lines per file.
const DefaultMax = 20_000_000

// OnExisting selects what the batch does when a computed output path already
// exists and overwriting is not enabled.
type OnExisting int

const (
	// OnExistingSkip skips the job and continues with the rest of the batch.
	OnExistingSkip OnExisting = iota
	// OnExistingAbort terminates the whole batch.
	OnExistingAbort
)

// String returns the flag spelling of the policy.
func (p OnExisting) String() string {
	switch p {
	case OnExistingAbort:
		return "abort"
	default:
		return "skip"
	}
}

// ParseOnExisting parses an on-existing flag value (case-insensitive).
func ParseOnExisting(s string) (OnExisting, error) {
	switch strings.ToLower(s) {
	case "skip":
		return OnExistingSkip, nil
	case "abort":
		return OnExistingAbort, nil
	default:
		return OnExistingSkip, fmt.Errorf("unknown on-existing policy %q (expected skip or abort)", s)
	}
}

// Config is the full configuration of one symbolization run. It is built from
// command-line flags and passed explicitly through the pipeline; there is no
// ambient state.
type Config struct {
	// Input is a trace file or a directory of trace files.
	Input string
	// Snapshot is the memory snapshot seeding the symbol table.
	Snapshot string
	// Output is a file, a directory, or empty for stdout.
	Output string
	// Skip ignores this many lines from the start of each file.
	Skip uint64
	// Max stops each file after this many symbolized lines.
	Max uint64
	// Style selects the symbolization format.
	Style symbols.Style
	// Overwrite allows replacing already generated output traces.
	Overwrite bool
	// OnExisting selects the batch policy for existing outputs when
	// Overwrite is off.
	OnExisting OnExisting
	// LineNumbers prefixes output lines with an "l<index>: " marker.
	LineNumbers bool
	// LogLevel sets diagnostic verbosity (debug, info, warn, error).
	LogLevel string
}

// Default returns a configuration with default values applied.
func Default() *Config {
	return &Config{
		Max:      DefaultMax,
		Style:    symbols.StyleFullSymbol,
		LogLevel: "info",
	}
}

// Validate checks the configuration before any processing starts. Path kind
// mismatches are configuration errors and must be surfaced here, not midway
// through a batch.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input path cannot be empty")
	}
	input, err := os.Stat(c.Input)
	if err != nil {
		return fmt.Errorf("invalid input path %q: %w", c.Input, err)
	}

	if c.Snapshot == "" {
		return fmt.Errorf("snapshot path cannot be empty")
	}
	snapshot, err := os.Stat(c.Snapshot)
	if err != nil {
		return fmt.Errorf("invalid snapshot path %q: %w", c.Snapshot, err)
	}
	if snapshot.IsDir() {
		return fmt.Errorf("snapshot %q must be a file, not a directory", c.Snapshot)
	}

	if input.IsDir() && c.Output != "" {
		out, err := os.Stat(c.Output)
		if err != nil || !out.IsDir() {
			return fmt.Errorf("when the input is a directory, the output can only be empty (for stdout) or an existing directory")
		}
	}

	return nil
}
