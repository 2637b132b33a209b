// Package patch rewrites the sentinel line of a fixture source file.
package patch

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrSentinelNotFound reports that no line of the target matched the sentinel.
var ErrSentinelNotFound = errors.New("sentinel line not found")

// Rule is one exact-line substitution.
type Rule struct {
	Sentinel string
	From     string
	To       string
}

// Result describes one rewrite of a target file.
type Result struct {
	Path    string
	Lines   int
	Matches int
}

// FileError wraps a failure to read or write the target file.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Apply rewrites path, replacing rule.From with rule.To on every line whose
// trimmed content equals rule.Sentinel. The file is always fully rewritten;
// when nothing matched the content is unchanged and ErrSentinelNotFound is returned.
func Apply(path string, rule Rule) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, &FileError{Op: "stat", Path: path, Err: err}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Result{}, &FileError{Op: "read", Path: path, Err: err}
	}

	lines := SplitLines(string(content))
	matches := 0

	var b strings.Builder
	b.Grow(len(content))
	for _, line := range lines {
		if Matches(line, rule.Sentinel) {
			b.WriteString(strings.ReplaceAll(line, rule.From, rule.To))
			matches++
			continue
		}
		b.WriteString(line)
	}

	if err := os.WriteFile(path, []byte(b.String()), info.Mode().Perm()); err != nil {
		return Result{}, &FileError{Op: "write", Path: path, Err: err}
	}

	result := Result{Path: path, Lines: len(lines), Matches: matches}
	if matches == 0 {
		return result, fmt.Errorf("%s: %w", path, ErrSentinelNotFound)
	}
	return result, nil
}

// Count reports how many lines of path match sentinel without modifying the file.
func Count(path string, sentinel string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, &FileError{Op: "read", Path: path, Err: err}
	}
	n := 0
	for _, line := range SplitLines(string(content)) {
		if Matches(line, sentinel) {
			n++
		}
	}
	return n, nil
}

// Matches compares a raw line, terminator included, against the sentinel.
func Matches(line, sentinel string) bool {
	return strings.TrimSpace(line) == sentinel
}

// SplitLines splits content after each "\n", keeping terminators attached.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
