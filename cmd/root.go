package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/driftscan/driftscan/internal/engine"
	"github.com/driftscan/driftscan/internal/scan"
)

var (
	flagMaxDepth    int
	flagHidden      bool
	flagFollowLinks bool
	flagConcurrency int
	flagNoEstimate  bool
	flagJSON        bool
	flagQuiet       bool
)

var rootCmd = &cobra.Command{
	Use:   "driftscan [path]",
	Short: "Inventory a directory tree",
	Long: `driftscan walks a directory tree and reports how many files,
directories and bytes live under it, streaming progress while it works.
The walk is concurrent but the resulting listing is deterministic:
within every directory, entries are ordered byte-wise by name.

Scanning never modifies the filesystem. Interrupt with Ctrl-C to stop
early and keep the partial result.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,

	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().IntVarP(&flagMaxDepth, "max-depth", "d", 0, "maximum depth to descend (0 = unlimited)")
	rootCmd.Flags().BoolVar(&flagHidden, "hidden", false, "include hidden entries")
	rootCmd.Flags().BoolVarP(&flagFollowLinks, "follow-symlinks", "L", false, "follow symbolic links (cycles are skipped)")
	rootCmd.Flags().IntVarP(&flagConcurrency, "concurrency", "c", 0, "parallel subdirectory reads (0 = default)")
	rootCmd.Flags().BoolVar(&flagNoEstimate, "no-estimate", false, "skip the pre-pass that estimates total entries")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "print the full result as JSON")
	rootCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress progress output")
}

func runScan(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(engine.Config{
		Concurrency:    flagConcurrency,
		EstimateTotals: !flagNoEstimate,
	})

	obs := newConsoleObserver(os.Stderr, flagQuiet)
	_, err := eng.Start(ctx, scan.Request{
		Path:           path,
		MaxDepth:       flagMaxDepth,
		IncludeHidden:  flagHidden,
		FollowSymlinks: flagFollowLinks,
	}, obs)
	if err != nil {
		return err
	}

	res, err := obs.Wait()
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printSummary(os.Stdout, res)
	if res.Status == scan.StatusCancelled {
		fmt.Fprintln(os.Stdout, cancelledStyle.Render("scan cancelled, totals are partial"))
	}
	return nil
}
