package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cuotos/slackstorm/dispatcher"
)

// snippetEditor stands in for the host editor on the command line: the
// "selection" is a range of lines from a file or whatever was piped in.
type snippetEditor struct {
	selection dispatcher.Selection
	cleared   bool
}

func (e *snippetEditor) Selection() (dispatcher.Selection, bool) {
	if e.cleared {
		return dispatcher.Selection{}, false
	}
	return e.selection, e.selection.Text != ""
}

func (e *snippetEditor) ClearSelection() {
	e.cleared = true
}

// newFileEditor selects lineRange from the file at path, or the whole file when
// lineRange is empty.
func newFileEditor(path string, name string, lineRange string) (*snippetEditor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if name == "" {
		name = filepath.Base(path)
	}

	lines := splitLines(string(raw))
	start, end := 1, len(lines)
	if lineRange != "" {
		start, end, err = parseLineRange(lineRange)
		if err != nil {
			return nil, err
		}
	}
	if start > len(lines) || end > len(lines) {
		return nil, fmt.Errorf("line range %d-%d is outside %s (%d lines)", start, end, name, len(lines))
	}

	return &snippetEditor{selection: dispatcher.Selection{
		Text:      strings.Join(lines[start-1:end], "\n"),
		FileName:  name,
		StartLine: start,
		EndLine:   end,
	}}, nil
}

// newReaderEditor takes everything from r as the selection. lineRange only
// labels the snippet, it doesn't cut it.
func newReaderEditor(r io.Reader, name string, lineRange string) (*snippetEditor, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snippet: %w", err)
	}
	if name == "" {
		name = "stdin"
	}

	text := strings.TrimSuffix(string(raw), "\n")
	start, end := 1, len(splitLines(text))
	if lineRange != "" {
		start, end, err = parseLineRange(lineRange)
		if err != nil {
			return nil, err
		}
	}

	return &snippetEditor{selection: dispatcher.Selection{
		Text:      text,
		FileName:  name,
		StartLine: start,
		EndLine:   end,
	}}, nil
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

// parseLineRange accepts "10-12" or a single line "10". Lines are 1-based.
func parseLineRange(s string) (int, int, error) {
	from, to, found := strings.Cut(s, "-")
	if !found {
		to = from
	}

	start, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid line range %q", s)
	}
	end, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid line range %q", s)
	}
	if start < 1 || end < start {
		return 0, 0, fmt.Errorf("invalid line range %q, lines start at 1 and must be ascending", s)
	}
	return start, end, nil
}
