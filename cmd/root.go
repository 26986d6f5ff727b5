package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var debugLogging bool

var rootCmd = &cobra.Command{
	Use:   "esctools",
	Short: "Tools for ESC-ARC game archives",
	Long: `esctools reads and writes ESC-ARC container archives (*.bin).

Supported operations:
  - Extract files from ESC-ARC2 archives, unwrapping acp-compressed entries
  - Pack a directory into a new ESC-ARC2 archive
  - Add or replace files in an existing archive
  - Display the structure of an archive

ESC-ARC1 archives are recognized but not supported.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debugLogging {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false,
		"enable debug logging")
}
