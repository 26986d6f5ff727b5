package arc

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PackOptions configures the packing process.
type PackOptions struct {
	Signature string   // Archive signature (default: ESC-ARC2)
	Exclude   []string // Skip files matching any of these globs (case-insensitive, "/" separated)
	Verbose   bool     // Print detailed progress
}

// Packer builds an archive from a directory tree.
type Packer struct {
	opts     PackOptions
	inputDir string // Directory containing files to pack
}

// NewPacker creates a new packer. The signature is checked up front so an
// unsupported version fails before any file is read.
func NewPacker(inputDir string, opts PackOptions) (*Packer, error) {
	if opts.Signature == "" {
		opts.Signature = SignatureV2
	}

	if _, err := signatureBytes(opts.Signature); err != nil {
		return nil, err
	}

	exclude := make([]string, len(opts.Exclude))
	for i, pattern := range opts.Exclude {
		exclude[i] = strings.ToLower(pattern)
		if !doublestar.ValidatePattern(exclude[i]) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	opts.Exclude = exclude

	return &Packer{
		opts:     opts,
		inputDir: inputDir,
	}, nil
}

// Collect reads every regular file under the input directory. Entry names
// are relative to the input directory with "\" separators, sorted the way
// SortEntries orders them.
func (p *Packer) Collect() ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(p.inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(p.inputDir, path)
		if err != nil {
			return err
		}

		excluded, err := p.excluded(rel)
		if err != nil {
			return err
		}
		if excluded {
			if p.opts.Verbose {
				fmt.Printf("  - %s (excluded)\n", rel)
			}
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		entries = append(entries, Entry{Name: EntryName(rel), Data: data})
		return nil
	})
	if err != nil {
		return nil, err
	}

	SortEntries(entries)
	return entries, nil
}

func (p *Packer) excluded(rel string) (bool, error) {
	name := strings.ToLower(filepath.ToSlash(rel))
	for _, pattern := range p.opts.Exclude {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("failed to match exclude pattern: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Pack collects the input directory and writes the archive to outPath.
// It returns the number of entries written.
func (p *Packer) Pack(outPath string) (int, error) {
	entries, err := p.Collect()
	if err != nil {
		return 0, err
	}

	data, err := Encode(entries, p.opts.Signature)
	if err != nil {
		return 0, err
	}

	if p.opts.Verbose {
		for _, entry := range entries {
			fmt.Printf("  + %s (%d bytes)\n", entry.Name, len(entry.Data))
		}
		fmt.Printf("Creating %s\n", outPath)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	return len(entries), nil
}
