package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dgallion1/sectionize/internal/batch"
	"github.com/dgallion1/sectionize/internal/config"
	"github.com/dgallion1/sectionize/internal/record"
)

var (
	flagOutput    string
	flagMode      string
	flagDirection string
	flagWorkers   int
	flagEmit      bool
)

var rootCmd = &cobra.Command{
	Use:   "sectionize <language-tag> <path>...",
	Short: "Split documents into outline-labeled JSON records",
	Long: `sectionize reads PDF, Markdown, HTML and DOCX documents, aligns each
document's outline titles against its extracted text and appends one JSON
array of labeled section records per document to the output file.

The first argument tags every record with a language; the remaining
arguments are files or directories (walked recursively).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 {
			return cmd.Usage()
		}
		return runBatch(cmd.Context(), args[0], args[1:])
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file (default $OUTPUT_PATH or output.json)")
	rootCmd.Flags().StringVar(&flagMode, "mode", "", "Title matching: fuzzy or exact (default $MATCH_MODE or fuzzy)")
	rootCmd.Flags().StringVar(&flagDirection, "direction", "", "Scan direction: forward or backward (default $SCAN_DIRECTION or forward)")
	rootCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Parallel document conversions (default $WORKER_COUNT or 1)")
	rootCmd.Flags().BoolVar(&flagEmit, "emit-no-outline", false, "Emit a whole-document record for documents without an outline")
}

func runBatch(ctx context.Context, language string, paths []string) error {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg := config.Load()
	cfg.Language = language
	if flagOutput != "" {
		cfg.OutputPath = flagOutput
	}
	if flagMode != "" {
		cfg.MatchMode = flagMode
	}
	if flagDirection != "" {
		cfg.ScanDirection = flagDirection
	}
	if flagWorkers > 0 {
		cfg.WorkerCount = flagWorkers
	}
	if flagEmit {
		cfg.NoOutlinePolicy = config.PolicyEmit
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sink, err := record.NewFileSink(cfg.OutputPath)
	if err != nil {
		return err
	}
	defer sink.Close()

	r := batch.NewRunner(cfg, sink, log)
	r.Progress = os.Stderr

	sum, err := r.Run(ctx, paths)
	if err != nil {
		return err
	}

	color.Green("converted %d of %d documents (%d records) -> %s",
		sum.Converted, sum.Files, sum.Records, cfg.OutputPath)
	if sum.Skipped > 0 {
		color.Yellow("skipped %d documents", sum.Skipped)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
