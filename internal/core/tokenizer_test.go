package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantHeaders []string
		wantRows    []RawRow
	}{
		{
			name:        "simple",
			input:       "name,age\nAda,36\nLin,\n",
			wantHeaders: []string{"name", "age"},
			wantRows:    []RawRow{{"name": "Ada", "age": "36"}, {"name": "Lin", "age": ""}},
		},
		{
			name:        "no trailing newline",
			input:       "a,b\n1,2",
			wantHeaders: []string{"a", "b"},
			wantRows:    []RawRow{{"a": "1", "b": "2"}},
		},
		{
			name:        "crlf line endings",
			input:       "a,b\r\n1,2\r\n",
			wantHeaders: []string{"a", "b"},
			wantRows:    []RawRow{{"a": "1", "b": "2"}},
		},
		{
			name:        "blank lines skipped",
			input:       "\n\na,b\n\n1,2\n   \n3,4\n",
			wantHeaders: []string{"a", "b"},
			wantRows:    []RawRow{{"a": "1", "b": "2"}, {"a": "3", "b": "4"}},
		},
		{
			name:        "quoted fields with delimiters and newlines",
			input:       "a,b\n\"x,y\",\"line1\nline2\"\n",
			wantHeaders: []string{"a", "b"},
			wantRows:    []RawRow{{"a": "x,y", "b": "line1\nline2"}},
		},
		{
			name:        "escaped quotes",
			input:       "a\n\"say \"\"hi\"\"\"\n",
			wantHeaders: []string{"a"},
			wantRows:    []RawRow{{"a": `say "hi"`}},
		},
		{
			name:        "short rows padded",
			input:       "a,b,c\n1\n",
			wantHeaders: []string{"a", "b", "c"},
			wantRows:    []RawRow{{"a": "1", "b": "", "c": ""}},
		},
		{
			name:        "long rows truncated",
			input:       "a,b\n1,2,3,4\n",
			wantHeaders: []string{"a", "b"},
			wantRows:    []RawRow{{"a": "1", "b": "2"}},
		},
		{
			name:        "duplicate headers keep rightmost",
			input:       "x,x\n1,2\n",
			wantHeaders: []string{"x", "x"},
			wantRows:    []RawRow{{"x": "2"}},
		},
		{
			name:        "header only",
			input:       "a,b\n",
			wantHeaders: []string{"a", "b"},
			wantRows:    nil,
		},
		{
			name:        "bom stripped from first header",
			input:       "\ufeffid,v\n1,2\n",
			wantHeaders: []string{"id", "v"},
			wantRows:    []RawRow{{"id": "1", "v": "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeaders, table.Headers)
			assert.Equal(t, tt.wantRows, table.Rows)
		})
	}
}

func TestParseString_NoHeader(t *testing.T) {
	for _, input := range []string{"", "\n\n", "  \n\t\n"} {
		_, err := ParseString(input)
		assert.ErrorIs(t, err, ErrNoHeader, "input %q", input)
	}
}

func TestParseWithOptions_Delimiter(t *testing.T) {
	table, err := ParseWithOptions(strings.NewReader("a\tb\n1\t2\n"), ParseOptions{Delimiter: '\t'})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, table.Headers)
	assert.Equal(t, []RawRow{{"a": "1", "b": "2"}}, table.Rows)
}

func TestParse_InvalidUTF8Replaced(t *testing.T) {
	table, err := Parse(strings.NewReader("a\nx\x80y\n"))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "x\ufffdy", table.Rows[0]["a"])
}
