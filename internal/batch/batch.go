// Package batch maps a set of input traces to output traces, enforcing the
// overwrite policy and aggregating run-wide statistics.
package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tracelab/tracesym/internal/config"
	"github.com/tracelab/tracesym/internal/errors"
	"github.com/tracelab/tracesym/internal/symbols"
	"github.com/tracelab/tracesym/internal/trace"
)

// OutputSuffix marks generated output traces. Batch re-runs over a directory
// that already contains outputs use it to exclude them from re-processing.
const OutputSuffix = ".symbolized"

// Job is one input trace and its resolved destination. An empty Output means
// the shared console sink. Jobs are immutable once built.
type Job struct {
	Input  string
	Output string
}

// RunStats are the counters aggregated across a whole run.
type RunStats struct {
	Symbolized uint64
	Failed     uint64
	Files      uint64
	Skipped    uint64
	Elapsed    time.Duration
}

// Orchestrator drives the per-file processor over a job list, one file at a
// time.
type Orchestrator struct {
	cfg      *config.Config
	resolver symbols.Resolver
	console  io.Writer
	logger   zerolog.Logger
}

// New creates an orchestrator. console receives the output of jobs without a
// destination file.
func New(cfg *config.Config, resolver symbols.Resolver, console io.Writer, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		resolver: resolver,
		console:  console,
		logger:   logger.With().Str("component", "batch").Logger(),
	}
}

// BuildJobs derives the job list from the configured input and output paths.
// Every output path is computed here, before any file is processed.
func (o *Orchestrator) BuildJobs() ([]Job, error) {
	input, err := os.Stat(o.cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("invalid input path %q: %w", o.cfg.Input, err)
	}

	if !input.IsDir() {
		out, err := o.singleFileOutput()
		if err != nil {
			return nil, err
		}
		return []Job{{Input: o.cfg.Input, Output: out}}, nil
	}

	outputIsDir := false
	if o.cfg.Output != "" {
		out, err := os.Stat(o.cfg.Output)
		if err != nil || !out.IsDir() {
			return nil, fmt.Errorf("when the input is a directory, the output can only be empty (for stdout) or an existing directory")
		}
		outputIsDir = true
	}

	entries, err := os.ReadDir(o.cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate input directory %q: %w", o.cfg.Input, err)
	}

	var jobs []Job
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// Prior outputs living next to their inputs are not re-symbolized.
		if strings.HasSuffix(entry.Name(), OutputSuffix) {
			o.logger.Debug().Str("file", entry.Name()).Msg("Skipping generated output trace")
			continue
		}

		job := Job{Input: filepath.Join(o.cfg.Input, entry.Name())}
		if outputIsDir {
			job.Output = filepath.Join(o.cfg.Output, entry.Name()+OutputSuffix)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// singleFileOutput resolves the destination of a single-file run: empty for
// stdout, a derived name inside an output directory, or the output path
// verbatim.
func (o *Orchestrator) singleFileOutput() (string, error) {
	if o.cfg.Output == "" {
		return "", nil
	}
	out, err := os.Stat(o.cfg.Output)
	if err == nil && out.IsDir() {
		return filepath.Join(o.cfg.Output, filepath.Base(o.cfg.Input)+OutputSuffix), nil
	}
	return o.cfg.Output, nil
}

// Run processes the jobs sequentially. A fatal per-file failure stops the
// batch; per-line resolution failures never do.
func (o *Orchestrator) Run(jobs []Job) (stats RunStats, err error) {
	start := time.Now()
	defer func() {
		stats.Elapsed = time.Since(start)
	}()

	for _, job := range jobs {
		if job.Output != "" {
			if _, err := os.Stat(job.Output); err == nil {
				if !o.cfg.Overwrite {
					if o.cfg.OnExisting == config.OnExistingAbort {
						return stats, fmt.Errorf("output %s already exists (pass --overwrite to replace it)", job.Output)
					}
					o.logger.Info().Str("output", job.Output).Msg("Output already exists, skipping")
					stats.Skipped++
					continue
				}
				o.logger.Info().Str("output", job.Output).Msg("Output already exists, overwriting")
			}
		}

		fileStats, err := o.processJob(job)
		stats.Symbolized += fileStats.Symbolized
		stats.Failed += fileStats.Failed
		if err != nil {
			return stats, fmt.Errorf("failed to symbolize %s: %w", job.Input, err)
		}

		stats.Files++
		o.logger.Info().
			Str("file", job.Input).
			Uint64("done", stats.Files).
			Int("total", len(jobs)).
			Msg("Trace symbolized")
	}

	return stats, nil
}

// processJob opens the job's sink and runs the per-file processor. The sink
// is released on every exit path.
func (o *Orchestrator) processJob(job Job) (trace.FileStats, error) {
	sink := o.console
	if job.Output != "" {
		f, err := os.Create(job.Output)
		if err != nil {
			return trace.FileStats{}, fmt.Errorf("failed to create output %s: %w", job.Output, err)
		}
		defer errors.DeferClose(o.logger, f, "failed to close output trace")
		sink = f
	}

	return trace.Process(job.Input, sink, o.resolver, trace.Options{
		Skip:        o.cfg.Skip,
		Max:         o.cfg.Max,
		Style:       o.cfg.Style,
		LineNumbers: o.cfg.LineNumbers,
	}, o.logger)
}
