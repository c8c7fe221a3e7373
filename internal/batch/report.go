package batch

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Report logs the end-of-run summary with human-readable magnitudes.
func (o *Orchestrator) Report(stats RunStats) {
	o.logger.Info().
		Str("symbolized", humanCount(stats.Symbolized)).
		Str("failed", humanCount(stats.Failed)).
		Uint64("files", stats.Files).
		Uint64("skipped", stats.Skipped).
		Str("elapsed", humanDuration(stats.Elapsed)).
		Msg("Symbolization complete")
}

// humanCount renders a counter with an SI magnitude suffix, e.g. "1.5 M".
// The suffix separator is trimmed when the value has no magnitude prefix.
func humanCount(n uint64) string {
	return strings.TrimSpace(humanize.SIWithDigits(float64(n), 1, ""))
}

// humanDuration renders an elapsed time with a single coarse unit.
func humanDuration(d time.Duration) string {
	const (
		minute = 60
		hour   = 60 * minute
		day    = 24 * hour
	)
	secs := d.Seconds()
	switch {
	case secs >= day:
		return fmt.Sprintf("%.1fd", secs/day)
	case secs >= hour:
		return fmt.Sprintf("%.1fhr", secs/hour)
	case secs >= minute:
		return fmt.Sprintf("%.1fmin", secs/minute)
	default:
		return fmt.Sprintf("%.1fs", secs)
	}
}
