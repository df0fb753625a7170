package output

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kilianp07/schedulegen/core/proposal"
)

// ErrExists is returned when an output file already exists and overwriting is disabled.
var ErrExists = errors.New("output file already exists")

// FilePrefix starts every proposal file name.
const FilePrefix = "pre-proposal_"

// Prefix derives the output file prefix from the input path:
// "/data/july.csv" gives "pre-proposal_july".
func Prefix(inputPath string) string {
	base := filepath.Base(inputPath)
	return FilePrefix + strings.TrimSuffix(base, filepath.Ext(base))
}

// FileName returns the name of the index-th proposal file.
func FileName(prefix string, index int) string {
	return fmt.Sprintf("%s_%03d.json", prefix, index)
}

// Writer writes one file per proposal into Dir.
type Writer struct {
	Dir       string
	Prefix    string
	Overwrite bool
}

// Path returns the destination of the index-th proposal.
func (w Writer) Path(index int) string {
	return filepath.Join(w.Dir, FileName(w.Prefix, index))
}

// Write encodes p to its file and returns the path written.
func (w Writer) Write(index int, p proposal.Proposal) (string, error) {
	path := w.Path(index)
	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !w.Overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, path)
		}
		return "", err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
