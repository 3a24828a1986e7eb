package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomerk/chessmetrics/internal/query"
	"github.com/tomerk/chessmetrics/internal/stats"
)

var (
	openingsTop      int
	openingsMinGames int
	openingsMetric   string
)

var openingsCmd = &cobra.Command{
	Use:   "openings <pgn-file-or-dir>",
	Short: "Rank the openings played in a PGN archive",
	Long: `Openings classifies every game against the opening book and ranks
the resulting openings by the chosen metric: how often they were
played (common), how accurately (accurate), or how well they scored
(score).`,
	Args: cobra.ExactArgs(1),
	RunE: runOpenings,
}

func init() {
	openingsCmd.Flags().IntVar(&openingsTop, "top", 5, "number of openings to list")
	openingsCmd.Flags().IntVar(&openingsMinGames, "min-games", 1, "only rank openings with at least this many games")
	openingsCmd.Flags().StringVar(&openingsMetric, "metric", "common", "ranking metric: common, accurate or score")
	rootCmd.AddCommand(openingsCmd)
}

func runOpenings(cmd *cobra.Command, args []string) error {
	setupLogger()
	ctx := cmd.Context()

	analysis, _, eval, err := ingestPath(ctx, args[0])
	if err != nil {
		return err
	}
	defer eval.Close()

	view, err := analysis.Query(ctx, query.Criteria{})
	if err != nil {
		return err
	}

	var nodes []*stats.OpeningNode
	switch openingsMetric {
	case "common":
		nodes, err = view.MostCommonOpenings(openingsTop, openingsMinGames)
	case "accurate":
		nodes, err = view.MostAccurateOpenings(openingsTop, openingsMinGames)
	case "score":
		nodes, err = view.BestScoringOpenings(openingsTop, openingsMinGames)
	default:
		return fmt.Errorf("unknown metric %q, want common, accurate or score", openingsMetric)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OPENING\tGAMES\tW/D/L\tAVG ERROR\tBOOK PLY")
	for _, n := range nodes {
		rec := n.Record()
		fmt.Fprintf(w, "%s\t%d\t%d/%d/%d\t%.2f\t%d\n",
			n.Name(), n.TotalGames(), rec.Wins, rec.Draws, rec.Losses,
			n.AvgError(), n.AvgPlyLeftBook())
	}
	return w.Flush()
}
