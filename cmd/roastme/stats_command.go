package main

import (
	"RoastMe/internal/api/config"
	"RoastMe/internal/model"
	"RoastMe/internal/pkg/database"
	"RoastMe/internal/pkg/util"
	"fmt"
	"io"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

const statsRecentLimit = 10

func newStatsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print counters and recent roasts from the data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := database.ReadDocument(config.Cfg.Storage.DataFile)
			if err != nil {
				return fmt.Errorf("read data file: %w", err)
			}
			return printStats(cmd.OutOrStdout(), doc, time.Now(), limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", statsRecentLimit, "Number of recent roasts to list")
	return cmd
}

func printStats(out io.Writer, doc *database.Document, now time.Time, limit int) error {
	today := now.Format(model.DailyStatsDateLayout)

	summary := renderTable(
		[]string{"Metric", "Value"},
		[][]string{
			{"Roasts today", strconv.Itoa(doc.Stats.CountFor(today))},
			{"Roasts all time", strconv.Itoa(len(doc.Roasts))},
			{"Subscribers", strconv.Itoa(len(doc.Subscribers))},
		},
		[]columnAlignment{alignLeft, alignRight},
	)
	if _, err := fmt.Fprintln(out, summary); err != nil {
		return err
	}

	if len(doc.Roasts) == 0 {
		_, err := fmt.Fprintln(out, "No roasts yet.")
		return err
	}

	var rows [][]string
	for i := len(doc.Roasts) - 1; i >= 0 && len(rows) < limit; i-- {
		r := doc.Roasts[i]
		rows = append(rows, []string{
			r.ID,
			r.Type,
			strconv.Itoa(r.Score),
			ellipsize(r.Title, 48),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	recent := renderTable(
		[]string{"ID", "Type", "Score", "Title", "Created"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
	if _, err := fmt.Fprintln(out, recent); err != nil {
		return err
	}

	contents := make([]string, 0, len(doc.Roasts))
	for _, r := range doc.Roasts {
		contents = append(contents, r.Content)
	}
	var kwRows [][]string
	for _, kw := range util.RankKeywords(contents, 5) {
		kwRows = append(kwRows, []string{kw.Keyword, strconv.Itoa(kw.Count)})
	}
	if len(kwRows) > 0 {
		_, err := fmt.Fprintln(out, renderTable([]string{"Keyword", "Count"}, kwRows, []columnAlignment{alignLeft, alignRight}))
		return err
	}
	return nil
}

func ellipsize(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit-1]) + "…"
}
