package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAll(t *testing.T) {
	data := "\xEF\xBB\xBFsender;receiver;initial;remaining\n" +
		"a; b ;1,000.5;9\n" +
		"\n" +
		"c;d;\"2;5\";7\n"
	rows, err := Reader{Delimiter: ';', SkipHeader: true}.ReadAll(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Number: 1, Line: 2, Fields: []string{"a", "b", "1,000.5", "9"}}, rows[0])
	assert.Equal(t, 2, rows[1].Number)
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "2;5", rows[1].Fields[2])
}

func TestReadAllKeepsRaggedRows(t *testing.T) {
	rows, err := Reader{Delimiter: ','}.ReadAll(strings.NewReader("a,b,c\nd,e\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0].Fields, 3)
	assert.Len(t, rows[1].Fields, 2)
}

func TestReadAllParseError(t *testing.T) {
	_, err := Reader{Delimiter: ','}.ReadAll(strings.NewReader("a,b\nc,d\"e\n"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	assert.Equal(t, 2, pe.Line)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("x\ty\tz\n"), 0o644))
	rows, err := Reader{Delimiter: '\t'}.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, rows[0].Fields)

	_, err = Reader{}.ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
