package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/esctools/pkg/arc"
	"github.com/spf13/cobra"
)

var (
	packOutput    string
	packSignature string
	packExclude   []string
	packVerbose   bool
)

var packCmd = &cobra.Command{
	Use:   "pack <input_dir>",
	Short: "Pack a directory into an ESC-ARC archive",
	Long: `Pack every file under a directory into a new ESC-ARC2 archive.

Entry names are the file paths relative to the input directory, with "\"
separators, sorted case-insensitively. Files are stored as-is; nothing is
compressed.

Examples:
  # Pack data/script/ into script.bin
  esctools pack data/script -o script.bin

  # Leave out editor backups
  esctools pack data/script -o script.bin -x "**/*.bak" -x "**/*~"`,
	Args: cobra.ExactArgs(1),
	RunE: runPack,
}

func init() {
	rootCmd.AddCommand(packCmd)

	packCmd.Flags().StringVarP(&packOutput, "output", "o", "",
		"output archive path (default: <input_dir>.bin)")
	packCmd.Flags().StringVarP(&packSignature, "signature", "s", arc.SignatureV2,
		"archive version signature")
	packCmd.Flags().StringArrayVarP(&packExclude, "exclude", "x", nil,
		"skip files matching this glob (repeatable)")
	packCmd.Flags().BoolVarP(&packVerbose, "verbose", "v", false,
		"print verbose progress information")
}

func runPack(cmd *cobra.Command, args []string) error {
	inputDir := args[0]

	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve input path: %w", err)
	}

	// Check input directory exists
	if info, err := os.Stat(absInput); os.IsNotExist(err) {
		return fmt.Errorf("input directory not found: %s", inputDir)
	} else if err != nil {
		return err
	} else if !info.IsDir() {
		return fmt.Errorf("input path is not a directory: %s", inputDir)
	}

	output := packOutput
	if output == "" {
		output = absInput + ".bin"
	}
	absOutput, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	opts := arc.PackOptions{
		Signature: packSignature,
		Exclude:   packExclude,
		Verbose:   packVerbose,
	}

	packer, err := arc.NewPacker(absInput, opts)
	if err != nil {
		return fmt.Errorf("failed to create packer: %w", err)
	}

	fmt.Printf("Input directory: %s\n", inputDir)
	fmt.Printf("Output archive: %s\n", output)
	fmt.Println()

	n, err := packer.Pack(absOutput)
	if err != nil {
		return fmt.Errorf("packing failed: %w", err)
	}

	fmt.Printf("Packing complete! %d files stored.\n", n)
	return nil
}
