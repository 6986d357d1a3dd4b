// Package cmd implements the partsbot CLI commands.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/satkam/partsbot/internal/log"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "partsbot",
	Short: "WhatsApp commerce assistant for auto spare parts",
	Long: `partsbot serves a WhatsApp conversational assistant for an auto
spare parts distributor: customers search the catalog, build a cart and
place orders over chat, with an admin API for catalog and settings
management.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the process logger from the verbose flag.
func newLogger() log.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level, JSON: !isTerminal()})
}

func isTerminal() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
