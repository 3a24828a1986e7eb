package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomerk/chessmetrics/internal/query"
)

var (
	analyzeTop int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <pgn-file-or-dir>",
	Short: "Run engine analysis over a PGN archive and print a summary",
	Long: `Analyze parses every game in the given PGN file or directory,
evaluates each position with the engine, and prints aggregate
accuracy metrics alongside the worst games of the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeTop, "top", 3, "number of worst games to list")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	setupLogger()
	ctx := cmd.Context()

	analysis, result, eval, err := ingestPath(ctx, args[0])
	if err != nil {
		return err
	}
	defer eval.Close()

	view, err := analysis.Query(ctx, query.Criteria{})
	if err != nil {
		return err
	}

	summary, err := view.Summarize()
	if err != nil {
		return err
	}

	fmt.Printf("Parsed:   %d games (%d skipped)\n", result.Parsed, result.Skipped)
	fmt.Printf("Record:   %d wins / %d draws / %d losses\n",
		summary.Record.Wins, summary.Record.Draws, summary.Record.Losses)
	fmt.Printf("Score:    %.1f / %d\n", summary.Record.Points(), summary.Record.Total())
	fmt.Printf("Accuracy: %.2f avg pawns lost per move (stddev %.2f)\n",
		summary.MeanError, summary.StdDev)

	if avgPly, err := view.AvgPlyLeavingBook(1); err == nil {
		fmt.Printf("Book:     left theory after %.0f plies on average\n", avgPly)
	}

	worst, err := view.TopGamesByError(analyzeTop, false)
	if err != nil {
		return err
	}
	fmt.Println("\nWorst games:")
	for _, g := range worst {
		gameErr, err := g.GameError()
		if err != nil {
			return err
		}
		fmt.Printf("  %s  vs %-20s %-5s %.2f pawns/move  (%s)\n",
			g.Date(), g.Opponent(), g.Result().String(), gameErr, g.Name())
	}
	return nil
}
