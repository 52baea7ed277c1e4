package scanner

import (
	"bufio"
	"errors"
	"strings"
	"testing"

	"github.com/pipe01/tagcheck/internal/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tagError asserts that err is a scan-phase *tag.Error at the given position.
func tagError(t *testing.T, err error, line, col int) *tag.Error {
	t.Helper()

	var terr *tag.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, tag.PhaseScan, terr.Phase)
	assert.Equal(t, line, terr.Location.Line, "line")
	if col > 0 {
		assert.Equal(t, col, terr.Location.Column, "column")
	}

	return terr
}

func TestScanWellFormed(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
	}{
		{"nested", []string{"<a>", "<b>", "</b>", "</a>"}},
		{"same line", []string{"<a><b></b></a>"}},
		{"text content", []string{"<p>hello world</p>", "<q>", "  some > text", "</q>"}},
		{"declaration", []string{`<?xml version="1.0"?>`, "<a></a>"}},
		{"empty", nil},
		{"no tags", []string{"just text", "more text"}},
		{"siblings", []string{"<root>", "<a></a>", "<b>x</b>", "</root>"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			stack, err := ScanLines(c.lines, "test.xml", DefaultOptions())
			require.NoError(t, err)
			assert.True(t, stack.IsEmpty())
		})
	}
}

func TestScanMismatchedClosing(t *testing.T) {
	cases := []struct {
		name      string
		lines     []string
		tag       string
		line, col int
	}{
		{"wrong innermost", []string{"<a>", "<b>", "</a>"}, "a", 3, 1},
		{"no open tag", []string{"</a>"}, "a", 1, 1},
		{"after close", []string{"<a></a></a>"}, "a", 1, 8},
		{"attributes kept in name", []string{`<a href="x">`, "</a>"}, "a", 2, 1},
		{"unicode column", []string{"<a>", "éé</b>"}, "b", 2, 3},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ScanLines(c.lines, "test.xml", DefaultOptions())

			terr := tagError(t, err, c.line, c.col)

			var mismatch *tag.MismatchedClosingError
			require.ErrorAs(t, terr, &mismatch)
			assert.Equal(t, c.tag, mismatch.Name)
		})
	}
}

func TestScanUnclosedOpening(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		tag   string
		line  int
	}{
		{"single", []string{"<a>"}, "a", 1},
		{"innermost reported", []string{"<a>", "<b>"}, "b", 2},
		{"outer left open", []string{"<a>", "<b></b>"}, "a", 1},
		{"declaration only on first line", []string{"<a></a>", `<?xml version="1.0"?>`}, `?xml version="1.0"?`, 2},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			stack, err := ScanLines(c.lines, "test.xml", DefaultOptions())

			terr := tagError(t, err, c.line, 0)

			var unclosed *tag.UnclosedOpeningError
			require.ErrorAs(t, terr, &unclosed)
			assert.Equal(t, c.tag, unclosed.Name)
			assert.False(t, stack.IsEmpty())
		})
	}
}

func TestScanMalformed(t *testing.T) {
	cases := []struct {
		name      string
		lines     []string
		line, col int
	}{
		{"no closing bracket", []string{"<foo"}, 1, 1},
		{"later lines ignored", []string{"<foo", "</foo>", ">"}, 1, 1},
		{"inside text", []string{"<a>", "text <foo", "</a>"}, 2, 6},
		{"closing tag", []string{"<a>", "</a"}, 2, 1},
		{"bracket at line end", []string{"<a><"}, 1, 4},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ScanLines(c.lines, "test.xml", DefaultOptions())

			tagError(t, err, c.line, c.col)
			assert.True(t, errors.Is(err, tag.ErrMalformedTag))
		})
	}
}

func TestScanDeclarationDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipDeclaration = false

	_, err := ScanLines([]string{`<?xml version="1.0"?>`, "<a></a>"}, "test.xml", opts)

	var unclosed *tag.UnclosedOpeningError
	require.ErrorAs(t, err, &unclosed)
	assert.Equal(t, `?xml version="1.0"?`, unclosed.Name)
}

func TestScanCRLF(t *testing.T) {
	stack, err := New(strings.NewReader("<a>\r\n<b></b>\r\n</a>\r\n"), "crlf.xml", DefaultOptions()).Scan()
	require.NoError(t, err)
	assert.True(t, stack.IsEmpty())
}

func TestScanOnToken(t *testing.T) {
	var got []string

	opts := DefaultOptions()
	opts.OnToken = func(tk tag.Token) {
		got = append(got, tk.String())
	}

	_, err := ScanLines([]string{"<a><b>", "</b></a>"}, "test.xml", opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"<a>", "<b>", "</b>", "</a>"}, got)
}

func TestScanTokenLocation(t *testing.T) {
	stack, err := ScanLines([]string{"", "  <outer>", "<inner>"}, "loc.xml", DefaultOptions())
	require.Error(t, err)

	items := stack.Items()
	require.Len(t, items, 2)
	assert.Equal(t, tag.Token{
		Name:    "outer",
		Start:   tag.Location{File: "loc.xml", Line: 2, Column: 3},
		Opening: true,
	}, items[0])
	assert.Equal(t, 3, items[1].Line())
}

func TestScanIdempotent(t *testing.T) {
	docs := [][]string{
		{"<a>", "<b>", "</b>", "</a>"},
		{"<a>", "<b>", "</a>"},
		{"<a>"},
		{"<foo"},
	}

	for _, lines := range docs {
		_, err1 := ScanLines(lines, "test.xml", DefaultOptions())
		_, err2 := ScanLines(lines, "test.xml", DefaultOptions())

		if err1 == nil {
			assert.NoError(t, err2)
			continue
		}

		require.Error(t, err2)
		assert.Equal(t, err1.Error(), err2.Error())
	}
}

func TestScanLineTooLong(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxLineLength = 8

	_, err := ScanLines([]string{"<a>0123456789</a>"}, "long.xml", opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, bufio.ErrTooLong))

	var terr *tag.Error
	assert.False(t, errors.As(err, &terr))
}

func TestScanLineLengthBoundary(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxLineLength = 7

	cases := []struct {
		name      string
		input     string
		expectErr bool
	}{
		{"exact at EOF", "<a></a>", false},
		{"exact with newline", "<a></a>\n", false},
		{"exact with CRLF", "<a></a>\r\n", false},
		{"one over at EOF", "<a></a> ", true},
		{"one over with newline", "<a></a> \n", true},
		{"one over on second line", "<a>\n<b></b> \n</a>\n", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(strings.NewReader(c.input), "edge.xml", opts).Scan()
			if !c.expectErr {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, bufio.ErrTooLong)
		})
	}
}

func TestScanUnclosedOpenChain(t *testing.T) {
	_, err := ScanLines([]string{"<a>", "<b></b>", "<c>", "<d>"}, "test.xml", DefaultOptions())

	var unclosed *tag.UnclosedOpeningError
	require.ErrorAs(t, err, &unclosed)
	assert.Equal(t, "d", unclosed.Name)

	var names []string
	for _, tk := range unclosed.Open {
		names = append(names, tk.Name)
	}
	assert.Equal(t, []string{"a", "c", "d"}, names)
	assert.Equal(t, 3, unclosed.Open[1].Line())
}
