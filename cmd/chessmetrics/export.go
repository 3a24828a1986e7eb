package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomerk/chessmetrics/internal/export"
	"github.com/tomerk/chessmetrics/internal/query"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <pgn-file-or-dir>",
	Short: "Export analyzed games as CSV",
	Long: `Export runs the full analysis pipeline over a PGN archive and writes
one CSV row per game, including per-move error and time series.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	var out io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteCSV(out, view.Games()); err != nil {
		return err
	}
	if exportOut != "" {
		fmt.Printf("wrote %d games to %s\n", view.Size(), exportOut)
	}
	return nil
}
