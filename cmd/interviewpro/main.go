// Command interviewpro serves the interview board and runs calendar sync.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"interviewpro/internal/config"
	appLog "interviewpro/internal/log"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "interviewpro",
	Short:         "Interview board built from calendar events",
	Long:          "InterviewPro turns interview events on a calendar into a weekly candidate board, records interview feedback and summarizes it.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", configPath, err)
		}
		cfg = c
		appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config.yaml", "Path to config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx := signalContext()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		appLog.Error("interviewpro failed", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()
	return ctx
}
