package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/esctools/pkg/arc"
	"github.com/spf13/cobra"
)

var (
	addOutput  string
	addExclude []string
	addVerbose bool
)

var addCmd = &cobra.Command{
	Use:   "add <archive> <input_dir>",
	Short: "Add or replace files in an ESC-ARC archive",
	Long: `Add files from a directory to an existing ESC-ARC2 archive.

This command:
  1. Reads and decodes the existing archive
  2. Replaces entries whose names match a file in input_dir (case-insensitive)
  3. Appends the remaining files as new entries
  4. Writes the re-sorted archive to the output path

acp-compressed entries of the original archive are stored decompressed.

Examples:
  # Patch translated scripts into script.bin
  esctools add script.bin translated/ -o script_new.bin`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addOutput, "output", "o", "",
		"output archive path (default: overwrite <archive>)")
	addCmd.Flags().StringArrayVarP(&addExclude, "exclude", "x", nil,
		"skip files matching this glob (repeatable)")
	addCmd.Flags().BoolVarP(&addVerbose, "verbose", "v", false,
		"print verbose progress information")
}

func runAdd(cmd *cobra.Command, args []string) error {
	archivePath := args[0]
	inputDir := args[1]

	// Resolve paths
	absArchive, err := filepath.Abs(archivePath)
	if err != nil {
		return fmt.Errorf("failed to resolve archive path: %w", err)
	}

	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve input dir: %w", err)
	}

	output := addOutput
	if output == "" {
		output = absArchive
	}
	absOutput, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	// Check input directory exists
	if _, err := os.Stat(absInput); os.IsNotExist(err) {
		return fmt.Errorf("input directory not found: %s", inputDir)
	}

	data, err := os.ReadFile(absArchive)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}

	packer, err := arc.NewPacker(absInput, arc.PackOptions{Exclude: addExclude, Verbose: addVerbose})
	if err != nil {
		return fmt.Errorf("failed to create packer: %w", err)
	}

	entries, err := packer.Collect()
	if err != nil {
		return fmt.Errorf("failed to collect input files: %w", err)
	}

	if addVerbose {
		for _, entry := range entries {
			fmt.Printf("  + %s (%d bytes)\n", entry.Name, len(entry.Data))
		}
	}

	out, replaced, err := arc.AddEntries(data, entries)
	if err != nil {
		return fmt.Errorf("failed to add entries: %w", err)
	}

	if err := os.WriteFile(absOutput, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", absOutput, err)
	}

	fmt.Printf("\nSuccess! %d files replaced, %d added.\n", replaced, len(entries)-replaced)
	fmt.Printf("Archive written to: %s\n", absOutput)

	return nil
}
