package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"interviewpro/internal/capture"
	"interviewpro/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write candidates and interview notes to an xlsx workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		out := exportOut
		if out == "" {
			out = "interviewpro-" + time.Now().In(a.loc).Format("20060102")
		}
		path, err := export.SaveFile(out, a.roster.Candidates(), a.loc)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var (
	snapshotURL    string
	snapshotOut    string
	snapshotChrome string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save a PNG of the board page of a running server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := capture.Options{
			URL:        snapshotURL,
			OutputPath: snapshotOut,
			ExecPath:   snapshotChrome,
		}
		if opts.URL == "" {
			opts.URL = "http://" + cfg.Listen + "/board"
		}
		if ba := cfg.BasicAuth; ba != nil {
			opts.Username, opts.Password = ba.Username, ba.Password
		}
		if err := capture.SnapshotBoard(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), opts.OutputPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (.xlsx is added when missing)")
	snapshotCmd.Flags().StringVar(&snapshotURL, "url", "", "Board URL (default http://<listen>/board)")
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "board.png", "Output PNG path")
	snapshotCmd.Flags().StringVar(&snapshotChrome, "chrome", "", "Chromium binary path")
	rootCmd.AddCommand(exportCmd, snapshotCmd)
}
