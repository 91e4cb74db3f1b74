// Package optimize — keyword list parsing.
package optimize

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ParseKeywords reads one keyword per line, or a CSV whose first column
// holds the keyword. A leading "keyword" header, blank lines and lines
// starting with # are skipped. Duplicates (case-insensitive) are dropped,
// keeping the first spelling.
func ParseKeywords(r io.Reader) ([]string, error) {
	var out []string
	seen := make(map[string]bool)

	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		kw, err := firstColumn(line)
		if err != nil {
			return nil, fmt.Errorf("parsing keyword line %q: %w", line, err)
		}
		if first {
			first = false
			if strings.EqualFold(kw, "keyword") || strings.EqualFold(kw, "keywords") {
				continue
			}
		}
		out = appendUnique(out, seen, kw)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading keywords: %w", err)
	}
	return out, nil
}

// SplitKeywords parses a comma-separated flag value.
func SplitKeywords(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, kw := range strings.Split(s, ",") {
		out = appendUnique(out, seen, kw)
	}
	return out
}

// Merge combines keyword lists, keeping first-seen order.
func Merge(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, kw := range list {
			out = appendUnique(out, seen, kw)
		}
	}
	return out
}

func appendUnique(out []string, seen map[string]bool, kw string) []string {
	kw = strings.Join(strings.Fields(kw), " ")
	key := strings.ToLower(kw)
	if kw == "" || seen[key] {
		return out
	}
	seen[key] = true
	return append(out, kw)
}

func firstColumn(line string) (string, error) {
	if !strings.ContainsAny(line, ",\"") {
		return line, nil
	}
	rec, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return "", err
	}
	return rec[0], nil
}
