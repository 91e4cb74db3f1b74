// Package output handles file naming and writing for rankpipe outputs.
// Single-page runs get a flat name derived from the URL
// (roof_example_com_services.pdf). Site runs mirror the URL path under a
// directory per host (roof.example.com/services/repair.pdf).
package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Writer writes rendered output to disk.
type Writer struct {
	Dir string
}

// New creates a Writer targeting dir, creating it if needed.
// An empty dir means the current working directory.
func New(dir string) (*Writer, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{Dir: dir}, nil
}

// Path returns where output for rawURL would be written.
func (w *Writer) Path(rawURL, ext string, mirror bool) (string, error) {
	if !mirror {
		return filepath.Join(w.Dir, FlatName(rawURL)+ext), nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}
	segments := []string{sanitize(parsed.Host)}
	for _, seg := range strings.Split(strings.Trim(parsed.Path, "/"), "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		segments = append(segments, sanitize(seg))
	}
	if len(segments) == 1 {
		segments = append(segments, "index")
	}
	if parsed.RawQuery != "" {
		segments[len(segments)-1] += "_" + sanitize(parsed.RawQuery)
	}
	return filepath.Join(w.Dir, filepath.Join(segments...)+ext), nil
}

// Write stores data for rawURL and returns the path written.
func (w *Writer) Write(rawURL string, data []byte, ext string, mirror bool) (string, error) {
	path, err := w.Path(rawURL, ext, mirror)
	if err != nil {
		return "", err
	}
	return path, writeFile(path, data)
}

// WriteNamed stores data under an explicit base name.
func (w *Writer) WriteNamed(name string, data []byte, ext string) (string, error) {
	path := filepath.Join(w.Dir, sanitize(name)+ext)
	return path, writeFile(path, data)
}

// writeFile writes through a temp file in the same directory so readers
// never see a partial file.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".rankpipe-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}

// FlatName converts a URL into a single file name.
// Example: https://example.com/docs/intro → example_com_docs_intro
func FlatName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return sanitize(rawURL)
	}
	parts := []string{strings.ReplaceAll(sanitize(parsed.Host), ".", "_")}
	for _, seg := range strings.Split(strings.Trim(parsed.Path, "/"), "/") {
		if seg != "" {
			parts = append(parts, sanitize(seg))
		}
	}
	return strings.Join(parts, "_")
}

// sanitize keeps letters, digits, '-' and '.', replacing everything else
// with '_' and collapsing repeats. Leading dots are dropped.
func sanitize(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, ch := range s {
		switch {
		case unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '-' || ch == '.':
			b.WriteRune(ch)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	out := strings.TrimLeft(strings.Trim(b.String(), "_"), ".")
	if out == "" {
		return "page"
	}
	return out
}
