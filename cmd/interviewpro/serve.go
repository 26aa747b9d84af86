package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	appLog "interviewpro/internal/log"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board and API and sync the calendar on a schedule",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (overrides config if set)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveListen != "" {
		cfg.Listen = serveListen
	}
	appLog.Info("effective config",
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"refresh", cfg.RefreshCron,
		"storage", cfg.Storage.Backend,
		"provider", cfg.Calendar.Provider,
		"window_days", cfg.Calendar.WindowDays,
		"keywords", len(cfg.Keywords),
	)

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	g, ctx := errgroup.WithContext(cmd.Context())
	if a.syncer != nil {
		g.Go(func() error { return a.syncer.Run(ctx, cfg.RefreshCron) })
	}
	g.Go(func() error { return a.server().ListenAndServe(ctx) })

	err = g.Wait()
	appLog.Info("interviewpro exiting")
	return err
}
