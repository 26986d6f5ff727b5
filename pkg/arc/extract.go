package arc

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
)

// ExtractOptions configures the extraction process.
type ExtractOptions struct {
	Filter    string // Only extract entries matching this glob (case-insensitive, "/" separated)
	OutputDir string // Output directory (default: "data")
	Verbose   bool   // Print detailed progress
	KeepGoing bool   // Log and skip broken archives or entries instead of failing
}

// Extractor writes the entries of ESC-ARC archives to disk.
type Extractor struct {
	opts      ExtractOptions
	extracted atomic.Int64
}

// NewExtractor creates a new extractor.
func NewExtractor(opts ExtractOptions) (*Extractor, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = "data"
	}

	if opts.Filter != "" {
		opts.Filter = strings.ToLower(opts.Filter)
		if !doublestar.ValidatePattern(opts.Filter) {
			return nil, fmt.Errorf("invalid filter pattern: %s", opts.Filter)
		}
	}

	return &Extractor{opts: opts}, nil
}

// Extract extracts every archive into its own directory under the output
// directory. Archives are decoded in parallel, so two archives that would
// share an output directory are rejected before anything is written.
func (e *Extractor) Extract(archivePaths ...string) error {
	owners := make(map[string]string, len(archivePaths))
	for _, path := range archivePaths {
		key := strings.ToLower(e.archiveDir(path))
		if prev, ok := owners[key]; ok {
			return fmt.Errorf("%w: %s and %s both extract to %s",
				ErrOutputConflict, prev, path, e.archiveDir(path))
		}
		owners[key] = path
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(archivePaths))

	for _, path := range archivePaths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			if err := e.ExtractFile(path); err != nil {
				if e.opts.KeepGoing {
					slog.Warn("archiveSkipped", "archive", path, "err", err)
					return
				}
				errChan <- fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
		}(path)
	}

	wg.Wait()
	close(errChan)

	// Return first error if any
	for err := range errChan {
		return err
	}

	return nil
}

// Extracted returns the number of entries written so far.
func (e *Extractor) Extracted() int {
	return int(e.extracted.Load())
}

// ExtractFile extracts one archive file.
func (e *Extractor) ExtractFile(archivePath string) error {
	data, err := os.ReadFile(archivePath)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}

	return e.ExtractBytes(data, e.archiveDir(archivePath))
}

// archiveDir returns <output>/<archive name without extension>.
func (e *Extractor) archiveDir(archivePath string) string {
	base := filepath.Base(archivePath)
	return filepath.Join(e.opts.OutputDir, strings.TrimSuffix(base, filepath.Ext(base)))
}

// ExtractBytes extracts an archive already held in memory into outDir.
func (e *Extractor) ExtractBytes(data []byte, outDir string) error {
	index, err := ReadIndex(data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, rec := range index.Records {
		if err := e.extractRecord(data, rec, outDir); err != nil {
			if e.opts.KeepGoing {
				slog.Warn("entrySkipped", "dir", outDir, "entry", rec.Name, "err", err)
				continue
			}
			return err
		}
	}

	return nil
}

func (e *Extractor) extractRecord(data []byte, rec Record, outDir string) error {
	rel, err := EntryPath(rec.Name)
	if err != nil {
		return err
	}

	if e.opts.Filter != "" {
		ok, err := doublestar.Match(e.opts.Filter, strings.ToLower(filepath.ToSlash(rel)))
		if err != nil {
			return fmt.Errorf("failed to match filter: %w", err)
		}
		if !ok {
			return nil
		}
	}

	payload, err := DecodeEntry(data, rec)
	if err != nil {
		return err
	}

	outPath := filepath.Join(outDir, rel)
	if dir := filepath.Dir(outPath); dir != outDir {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if e.opts.Verbose {
		fmt.Printf("\t%s\n", outPath)
	}

	if err := os.WriteFile(outPath, payload, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	e.extracted.Add(1)
	return nil
}

// EntryPath converts an archive entry name (backslash separated) to a
// relative host path. Names that would escape the output directory are
// rejected.
func EntryPath(name string) (string, error) {
	rel := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: unsafe entry path %q", ErrInvalidName, name)
	}
	return rel, nil
}

// EntryName converts a slash-separated relative path to an archive entry name.
func EntryName(rel string) string {
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", `\`)
}
