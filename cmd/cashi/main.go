package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cashflow/payment-sync/internal/app"
	"github.com/cashflow/payment-sync/internal/config"
	"github.com/spf13/cobra"
)

var Version = "dev"

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:           "cashi",
		Short:         "Send payments and browse the local transaction history",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(sendCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(reconcileCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openApp loads configuration from the environment and wires the services
func openApp() (*app.App, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, logger)
}
