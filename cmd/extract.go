package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/esctools/pkg/arc"
	"github.com/spf13/cobra"
)

var (
	extractFilter    string
	extractOutput    string
	extractVerbose   bool
	extractKeepGoing bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive>...",
	Short: "Extract files from ESC-ARC archives",
	Long: `Extract files from ESC-ARC2 archives.

Each archive is extracted into its own directory, named after the archive
without its extension. Entry names use "\" separators and become
subdirectories. Entries wrapped in acp LZW compression are decompressed.

Examples:
  # Extract all files from script.bin into data/script/
  esctools extract script.bin

  # Extract several archives at once
  esctools extract *.bin -o extracted/

  # Extract only .txt files anywhere in the archive
  esctools extract script.bin -f "**/*.txt"

  # Skip broken archives or entries instead of stopping
  esctools extract *.bin -k`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractFilter, "filter", "f", "",
		"only extract entries matching this glob (case-insensitive, \"/\" separated)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "data",
		"output directory for extracted files")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false,
		"print verbose progress information")
	extractCmd.Flags().BoolVarP(&extractKeepGoing, "keep-going", "k", false,
		"log and skip archives or entries that fail to decode")
}

func runExtract(cmd *cobra.Command, args []string) error {
	paths := make([]string, 0, len(args))
	for _, archivePath := range args {
		// Resolve to absolute path
		absPath, err := filepath.Abs(archivePath)
		if err != nil {
			return fmt.Errorf("failed to resolve path: %w", err)
		}

		// Check file exists
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return fmt.Errorf("archive not found: %s", archivePath)
		}
		paths = append(paths, absPath)
	}

	opts := arc.ExtractOptions{
		Filter:    extractFilter,
		OutputDir: extractOutput,
		Verbose:   extractVerbose,
		KeepGoing: extractKeepGoing,
	}

	extractor, err := arc.NewExtractor(opts)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	fmt.Printf("Archives: %d\n", len(paths))
	fmt.Printf("Output: %s\n", extractOutput)
	if extractFilter != "" {
		fmt.Printf("Filter: %s\n", extractFilter)
	}
	fmt.Println()

	slog.Debug("extractStart", "archives", len(paths), "filter", extractFilter)
	if err := extractor.Extract(paths...); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Printf("Extraction complete! %d files written.\n", extractor.Extracted())
	return nil
}
