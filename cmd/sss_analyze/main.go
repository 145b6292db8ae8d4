// Decodes a pair of logic analyzer captures of a SlowSoftSerial test
// conversation, one file per direction, and prints one line per packet.
package main

import (
	"fmt"
	"os"

	"github.com/NotCoffee418/sss_trace_analyzer/pkg/analyzer"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/capture"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/config"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/logging"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/packetdb"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type analyzeFlags struct {
	configPath  string
	archive     string
	metricsFile string
	dumpChars   bool
}

func main() {
	rootCmd := rootCmd()
	rootCmd.AddCommand(synthCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "sss_analyze file1 file2",
		Short: "SlowSoftSerial test protocol captured trace analyzer",
		Long: `Decodes two Saleae Logic 2 binary digital exports, one per direction
of a SlowSoftSerial test conversation, and prints every packet in time order.

Both captures must share their initial level, begin time and end time.
PARAMS responses change the line configuration for everything after them.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				fmt.Fprintln(cmd.OutOrStdout(), cmd.Short)
				fmt.Fprintf(cmd.OutOrStdout(), "  Usage: %s\n", cmd.UseLine())
				return nil
			}
			return runAnalyze(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default in the user config directory)")
	cmd.Flags().StringVar(&flags.archive, "archive", "", "Archive packets to this SQLite file")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Write run counters to this Prometheus textfile")
	cmd.Flags().BoolVar(&flags.dumpChars, "dump-chars", false, "Log every decoded character")

	return cmd
}

func runAnalyze(cmd *cobra.Command, path0, path1 string, flags analyzeFlags) error {
	if err := config.LoadAnalyzerConfig(flags.configPath); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.ActiveAnalyzerConfig
	if flags.dumpChars {
		cfg.Decoder.DumpCharacters = true
		cfg.Logging.Level = "debug"
	}
	if flags.archive != "" {
		cfg.Archive.Enabled = true
		cfg.Archive.Path = flags.archive
	}
	if flags.metricsFile != "" {
		cfg.Metrics.Textfile = flags.metricsFile
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts, err := cfg.AnalyzerOptions()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Opening %s and %s\n", path0, path1)

	trace0, err := capture.Load(path0)
	if err != nil {
		return err
	}
	trace1, err := capture.Load(path1)
	if err != nil {
		return err
	}

	sinks := report.Multi{report.NewConsole(out)}
	if cfg.Archive.Enabled {
		db, err := packetdb.Open(cfg.ArchivePath())
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer db.Close()

		archive, err := packetdb.NewArchive(db, path0, path1, opts.Initial)
		if err != nil {
			return err
		}
		logger.Info("Archiving run", zap.String("run_id", archive.RunID()), zap.String("path", cfg.ArchivePath()))
		sinks = append(sinks, archive)
	}

	metrics := analyzer.NewMetrics()
	runErr := analyzer.New(opts, sinks, logger, metrics).Run(trace0, trace1)

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Error("Failed to write metrics textfile", zap.Error(err))
		}
	}
	return runErr
}
