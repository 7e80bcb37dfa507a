package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cuotos/slackstorm/dispatcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainJava = `package demo;

public class Main {
    public static void main(String[] args) {
        int x;
        x=1;
        System.out.println(x);
    }
}
`

func writeSource(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "Main.java")
	require.NoError(t, os.WriteFile(path, []byte(mainJava), 0o600))
	return path
}

func TestFileEditorSelectsLineRange(t *testing.T) {
	ed, err := newFileEditor(writeSource(t), "", "5-6")
	require.NoError(t, err)

	sel, ok := ed.Selection()
	require.True(t, ok)
	assert.Equal(t, dispatcher.Selection{
		Text:      "        int x;\n        x=1;",
		FileName:  "Main.java",
		StartLine: 5,
		EndLine:   6,
	}, sel)
}

func TestFileEditorDefaultsToWholeFile(t *testing.T) {
	ed, err := newFileEditor(writeSource(t), "Renamed.java", "")
	require.NoError(t, err)

	sel, ok := ed.Selection()
	require.True(t, ok)
	assert.Equal(t, "Renamed.java", sel.FileName)
	assert.Equal(t, 1, sel.StartLine)
	assert.Equal(t, 9, sel.EndLine)
	assert.Equal(t, strings.TrimSuffix(mainJava, "\n"), sel.Text)
}

func TestFileEditorRejectsRangeOutsideFile(t *testing.T) {
	_, err := newFileEditor(writeSource(t), "", "8-20")
	assert.Error(t, err)
}

func TestReaderEditorLabelsWithRange(t *testing.T) {
	ed, err := newReaderEditor(strings.NewReader("x=1\n"), "Main.java", "10-12")
	require.NoError(t, err)

	sel, ok := ed.Selection()
	require.True(t, ok)
	assert.Equal(t, dispatcher.Selection{Text: "x=1", FileName: "Main.java", StartLine: 10, EndLine: 12}, sel)
}

func TestReaderEditorEmptyInputHasNoSelection(t *testing.T) {
	ed, err := newReaderEditor(strings.NewReader(""), "", "")
	require.NoError(t, err)

	_, ok := ed.Selection()
	assert.False(t, ok)
}

func TestClearSelection(t *testing.T) {
	ed, err := newReaderEditor(strings.NewReader("x"), "", "")
	require.NoError(t, err)

	ed.ClearSelection()
	_, ok := ed.Selection()
	assert.False(t, ok)
}

func TestParseLineRange(t *testing.T) {
	tcs := []struct {
		Input         string
		ExpectedStart int
		ExpectedEnd   int
		ExpectError   bool
	}{
		{"10-12", 10, 12, false},
		{"7", 7, 7, false},
		{" 3 - 4 ", 3, 4, false},
		{"0-2", 0, 0, true},
		{"5-2", 0, 0, true},
		{"a-b", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tc := range tcs {
		start, end, err := parseLineRange(tc.Input)
		if tc.ExpectError {
			assert.Error(t, err, tc.Input)
			continue
		}
		require.NoError(t, err, tc.Input)
		assert.Equal(t, tc.ExpectedStart, start)
		assert.Equal(t, tc.ExpectedEnd, end)
	}
}
