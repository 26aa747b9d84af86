package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one calendar sync pass and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.syncer == nil {
			return errNoCalendar
		}

		res, err := a.syncer.Sync(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch {
		case res.Skipped:
			fmt.Fprintln(out, "not logged in; run `interviewpro login` first")
		default:
			fmt.Fprintf(out, "fetched %d, matched %d, created %d\n", res.Fetched, res.Matched, res.Created)
			if res.FetchError != "" {
				fmt.Fprintf(out, "fetch error: %s\n", res.FetchError)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
