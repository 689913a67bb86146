package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/c360studio/semrdf/storage"
)

// maxRecordSize bounds a single input line. Large Wikidata items exceed a
// few megabytes of JSON.
const maxRecordSize = 64 << 20

// ResolveInputs expands glob patterns to concrete files. Patterns without
// glob characters are returned as given, "-" included.
func ResolveInputs(patterns []string) ([]string, error) {
	var resolved []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		var paths []string
		if pattern == "-" || !containsGlob(pattern) {
			paths = []string{pattern}
		} else {
			matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("resolve pattern %q: no files match", pattern)
			}
			sort.Strings(matches)
			paths = matches
		}

		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				resolved = append(resolved, p)
			}
		}
	}

	return resolved, nil
}

func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// ReadRecords calls fn for every JSON record in r. Records are one per
// line; the surrounding "[" and "]" lines and trailing commas of a
// Wikidata JSON dump are accepted. line is 1-based.
func ReadRecords(r io.Reader, fn func(line int, data []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		data = bytes.TrimSuffix(data, []byte(","))
		if len(data) == 0 || bytes.Equal(data, []byte("[")) || bytes.Equal(data, []byte("]")) {
			continue
		}
		if err := fn(line, data); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read line %d: %w", line+1, err)
	}
	return nil
}

// ImportStats counts the outcome of an import.
type ImportStats struct {
	Files    int
	Imported int
	Skipped  int
}

// ImportFiles imports every record of the given files into the store.
// Undecodable records are logged and skipped. "-" reads stdin.
func (a *App) ImportFiles(ctx context.Context, files []string, stdin io.Reader) (ImportStats, error) {
	var stats ImportStats
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := a.importFile(ctx, path, stdin, &stats); err != nil {
			return stats, err
		}
		stats.Files++
	}

	a.logger.Info("Import complete",
		"files", stats.Files,
		"imported", stats.Imported,
		"skipped", stats.Skipped)
	return stats, nil
}

func (a *App) importFile(ctx context.Context, path string, stdin io.Reader, stats *ImportStats) error {
	r := stdin
	name := "stdin"
	if path != "-" {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
		name = path
	}

	err := ReadRecords(r, func(line int, data []byte) error {
		_, err := a.store.Import(ctx, data, 0, time.Time{})
		if errors.Is(err, storage.ErrInvalidRecord) {
			a.logger.Warn("Skipping record", "file", name, "line", line, "error", err)
			stats.Skipped++
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		stats.Imported++
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	a.logger.Debug("Imported input file", "file", name)
	return nil
}
