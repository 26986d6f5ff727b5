package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/esctools/pkg/arc"
	"github.com/spf13/cobra"
)

var dumpLimit int

var dumpCmd = &cobra.Command{
	Use:   "dump <archive>",
	Short: "Display ESC-ARC archive structure",
	Long: `Display the structure of an ESC-ARC2 archive.

Shows:
  - Signature, seed and de-obfuscated header counts
  - Every entry with its offset, stored size, acp compression flag,
    decoded size and xxhash64 digest

Entries that fail to decode are listed with their error.

Examples:
  # Display script.bin structure
  esctools dump script.bin

  # Show every entry
  esctools dump script.bin -n 0`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().IntVarP(&dumpLimit, "limit", "n", 20,
		"number of entries to list (0 = all)")
}

func runDump(cmd *cobra.Command, args []string) error {
	archivePath := args[0]

	// Resolve to absolute path
	absPath, err := filepath.Abs(archivePath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// Read the file
	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	index, infos, err := arc.Summarize(data)
	if err != nil {
		return fmt.Errorf("failed to parse archive: %w", err)
	}

	// Print header info
	h := index.Header
	fmt.Printf("File: %s (%d bytes)\n", filepath.Base(archivePath), len(data))
	fmt.Printf("Format: %s (version %d)\n", h.Signature, h.Version)
	fmt.Printf("Seed: 0x%08X\n", h.Seed)
	fmt.Printf("Entries: %d\n", h.Count)
	fmt.Printf("Name table: %d bytes at 0x%X\n", h.NamesLength, h.MetadataEnd())
	fmt.Println()

	wrapped, failed := 0, 0
	for _, info := range infos {
		if info.Wrapped {
			wrapped++
		}
		if info.Err != nil {
			failed++
		}
	}
	fmt.Printf("Compressed (acp): %d\n", wrapped)
	if failed > 0 {
		fmt.Printf("Undecodable: %d\n", failed)
	}
	fmt.Println()

	for i, info := range infos {
		if dumpLimit > 0 && i >= dumpLimit {
			fmt.Printf("  ... and %d more files\n", len(infos)-dumpLimit)
			break
		}

		flag := " "
		if info.Wrapped {
			flag = "C"
		}
		if info.Err != nil {
			fmt.Printf("  [%d] %s %s (offset: 0x%X, size: %d bytes) error: %v\n",
				i, flag, info.Name, info.Offset, info.Size, info.Err)
			continue
		}
		fmt.Printf("  [%d] %s %s (offset: 0x%X, size: %d bytes, decoded: %d bytes, xxh64: %016x)\n",
			i, flag, info.Name, info.Offset, info.Size, info.Length, info.Digest)
	}

	return nil
}
