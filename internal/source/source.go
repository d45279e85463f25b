// Package source loads a complete terminal log for a single build.
package source

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/tradelog/journal"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// Read returns the whole content at path and a display name for it. Paths
// ending in .xz or .gz are decompressed. An empty path is journal.ErrNoInput.
func Read(path string, stdin io.Reader) ([]byte, string, error) {
	path = strings.TrimSpace(path)
	switch path {
	case "":
		return nil, "", journal.ErrNoInput
	case Stdin:
		if stdin == nil {
			return nil, "", journal.ErrNoInput
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "stdin", nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	r, err := decompress(path, f)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return data, filepath.Base(path), nil
}

func decompress(path string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xz":
		return xz.NewReader(r)
	case ".gz":
		return gzip.NewReader(r)
	default:
		return r, nil
	}
}

// BaseName strips the directory, a compression suffix and the file
// extension: "logs/20240101.log.xz" becomes "20240101".
func BaseName(name string) string {
	base := filepath.Base(name)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".xz", ".gz":
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// CSVName is the default export file name for a log, journal_<base>.csv.
func CSVName(name string) string {
	return "journal_" + BaseName(name) + ".csv"
}
