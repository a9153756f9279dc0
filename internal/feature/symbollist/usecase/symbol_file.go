package usecase

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseSymbols reads a symbol list. Symbols may be separated by newlines
// and/or commas. Blank entries and everything after '#' on a line are ignored.
// Duplicates are dropped, keeping the first occurrence.
func ParseSymbols(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		out = append(out, strings.Split(line, ",")...)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return Dedupe(out), nil
}

// ParseSymbolsFile opens path and parses it with ParseSymbols.
func ParseSymbolsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open symbols file: %w", err)
	}
	defer func() { _ = f.Close() }()

	symbols, err := ParseSymbols(f)
	if err != nil {
		return nil, fmt.Errorf("read symbols file %s: %w", path, err)
	}
	return symbols, nil
}

// ParseSymbolsString parses a comma separated list such as "AAPL,MSFT".
func ParseSymbolsString(s string) []string {
	return Dedupe(strings.Split(s, ","))
}

// Dedupe trims every code, drops blanks and keeps the first occurrence of each.
func Dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
