package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"interviewpro/internal/board"
	"interviewpro/internal/insight"
)

var boardJSON bool

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the weekly candidate board",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		buckets := board.Buckets(a.roster.Candidates(), time.Now(), a.loc, board.LabelsFor(cfg.Locale))
		if boardJSON {
			return writeIndented(cmd.OutOrStdout(), buckets)
		}
		printBoard(cmd.OutOrStdout(), buckets, a.loc)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print this week's interview statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		cs := a.roster.Candidates()
		stats := board.WeeklyStats(cs, time.Now(), a.loc)
		if boardJSON {
			return writeIndented(cmd.OutOrStdout(), map[string]any{
				"weekly": stats,
				"roles":  insight.RoleStats(cs),
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "this week %d, last week %d, growth %.0f%%, candidates %d\n",
			stats.ThisWeekTotal, stats.LastWeekTotal, stats.GrowthRate, stats.ThisWeekCandidates)
		for _, d := range stats.Daily {
			fmt.Fprintf(out, "  %s %2d\n", d.DayName, d.Count)
		}
		for _, r := range insight.RoleStats(cs) {
			fmt.Fprintf(out, "%s: %d\n", r.Role, r.Count)
		}
		return nil
	},
}

func init() {
	boardCmd.Flags().BoolVar(&boardJSON, "json", false, "Print JSON")
	statsCmd.Flags().BoolVar(&boardJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(boardCmd, statsCmd)
}

func printBoard(w io.Writer, buckets []board.Bucket, loc *time.Location) {
	if len(buckets) == 0 {
		fmt.Fprintln(w, "no scheduled interviews")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, b := range buckets {
		fmt.Fprintf(tw, "== %s (%s)\n", b.Label, board.RangeLabel(b.Start))
		for _, c := range b.Candidates {
			at, _ := c.Scheduled()
			fmt.Fprintf(tw, "\t%s\t%s\t%s\t%s\n", at.In(loc).Format("01/02 15:04"), c.Name, c.Role, c.Status)
		}
	}
	tw.Flush()
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
