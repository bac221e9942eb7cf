package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/circlemap/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server timing and token statistics",
	Long: `Show in-memory runtime statistics of the server: timings per pipeline
stage, matcher, tool call and database query, plus LLM token usage.

Examples:
  circlemap stats
  circlemap stats --json`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	snap, err := apiClient().Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("get server stats: %w", err)
	}
	return emit(snap, func() { printServerStats(snap) })
}

// printServerStats displays server runtime statistics.
func printServerStats(snap *metrics.Snapshot) {
	fmt.Println(heading("Server Statistics (in-memory, since restart)"))
	fmt.Printf("Uptime: %.1f seconds\n", snap.UptimeSeconds)

	names := snap.Names()
	if len(names) == 0 {
		fmt.Println(hint("No operations recorded yet"))
		return
	}

	fmt.Printf("\n%-26s %7s %10s %9s %8s %8s\n", "OPERATION", "CALLS", "TOTAL", "AVG", "MIN", "MAX")
	fmt.Println("------------------------------------------------------------------------")
	for _, name := range names {
		op := snap.Op(name)
		fmt.Printf("%-26s %7d %8dms %7.1fms %6dms %6dms\n",
			name, op.Count, op.TotalTimeMs, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	}

	for _, name := range names {
		printTokenStats(name, snap.Op(name))
	}
}

// printTokenStats displays token statistics if available.
func printTokenStats(name string, op *metrics.OperationSnapshot) {
	if op.InputTokens == nil || op.OutputTokens == nil {
		return
	}
	fmt.Printf("\n%s tokens:\n", name)
	fmt.Printf("  In:  %d total, avg %.0f\n", *op.InputTokens, float64(*op.InputTokens)/float64(op.Count))
	fmt.Printf("  Out: %d total, avg %.0f\n", *op.OutputTokens, float64(*op.OutputTokens)/float64(op.Count))
}
