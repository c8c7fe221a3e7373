// Package cli wires the command-line surface of tracesym.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tracelab/tracesym/internal/batch"
	"github.com/tracelab/tracesym/internal/config"
	"github.com/tracelab/tracesym/internal/logging"
	"github.com/tracelab/tracesym/internal/symbols"
	"github.com/tracelab/tracesym/pkg/version"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	var (
		styleFlag      string
		onExistingFlag string
	)
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "tracesym",
		Short: "tracesym - a fast execution trace symbolizer",
		Long: `Convert raw execution trace addresses into human-readable symbols.

The symbol table is seeded once from a memory snapshot (an ELF image or a
kallsyms-style symbol map), then every trace line is resolved through a
memoizing cache.

Examples:
  # Symbolize one trace to stdout
  tracesym -i crash.trace -c vmlinux.map

  # Symbolize a whole directory of traces, module+offset style
  tracesym -i traces/ -c snapshot.elf -o out/ --style modoff

  # Re-run over the same directory, replacing earlier outputs
  tracesym -i traces/ -c snapshot.elf -o out/ --overwrite`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg.Style, err = symbols.ParseStyle(styleFlag)
			if err != nil {
				return err
			}
			cfg.OnExisting, err = config.ParseOnExisting(onExistingFlag)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: true})

			table, err := symbols.Load(cfg.Snapshot, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize the symbol resolver: %w", err)
			}

			orchestrator := batch.New(cfg, symbols.NewCache(table), os.Stdout, logger)
			jobs, err := orchestrator.BuildJobs()
			if err != nil {
				return err
			}

			stats, err := orchestrator.Run(jobs)
			orchestrator.Report(stats)
			return err
		},
	}

	addFlags(cmd.Flags(), cfg, &styleFlag, &onExistingFlag)
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("snapshot")

	return cmd
}

func addFlags(flags *pflag.FlagSet, cfg *config.Config, styleFlag, onExistingFlag *string) {
	flags.StringVarP(&cfg.Input, "input", "i", "", "input trace file or directory (required)")
	flags.StringVarP(&cfg.Snapshot, "snapshot", "c", "", "memory snapshot seeding the symbol table (required)")
	flags.StringVarP(&cfg.Output, "output", "o", "", "output trace file or directory (default: stdout)")
	flags.Uint64VarP(&cfg.Skip, "skip", "s", 0, "skip a number of lines at the start of each trace")
	flags.Uint64VarP(&cfg.Max, "max", "m", config.DefaultMax, "stop each trace after this many symbolized lines")
	flags.StringVar(styleFlag, "style", symbols.StyleFullSymbol.String(), "trace style (modoff or fullsym)")
	flags.BoolVar(&cfg.Overwrite, "overwrite", false, "overwrite existing output traces")
	flags.StringVar(onExistingFlag, "on-existing", config.OnExistingSkip.String(), "policy when an output already exists and --overwrite is off (skip or abort)")
	flags.BoolVar(&cfg.LineNumbers, "line-numbers", false, "include line numbers in the output")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("tracesym version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
			cmd.Printf("Go version: %s\n", version.GoVersion)
		},
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
