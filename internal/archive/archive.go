// Package archive reads the raw fare-check archive: a single JSON array whose
// elements are heterogeneous raw entries.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/crimson-sun/fareline/internal/model"
)

// ErrRead marks a missing or unparseable archive. It is always fatal.
var ErrRead = errors.New("archive read failed")

// Source loads a complete snapshot of the archive.
type Source interface {
	Load(ctx context.Context) ([]model.RawEntry, error)
	// Location names the source in logs and errors.
	Location() string
}

// FileSource reads the archive from a file on an afero filesystem.
type FileSource struct {
	fs   afero.Fs
	path string
}

// NewFileSource creates a FileSource for path on fs.
func NewFileSource(fs afero.Fs, path string) *FileSource {
	return &FileSource{fs: fs, path: path}
}

// Location returns the file path.
func (s *FileSource) Location() string { return s.path }

// Load reads the whole file before decoding it.
func (s *FileSource) Load(ctx context.Context) ([]model.RawEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(errors.Mark(err, ErrRead), "read archive %s", s.path),
			"check archive.path or pass --archive")
	}
	return Decode(data, s.path)
}

// ReaderSource reads the archive from a stream, such as stdin.
type ReaderSource struct {
	r    io.Reader
	name string
}

// NewReaderSource creates a ReaderSource named name.
func NewReaderSource(r io.Reader, name string) *ReaderSource {
	return &ReaderSource{r: r, name: name}
}

// Location returns the stream name.
func (s *ReaderSource) Location() string { return s.name }

// Load reads the stream to EOF before decoding it.
func (s *ReaderSource) Load(ctx context.Context) ([]model.RawEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(s.r)
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, ErrRead), "read archive %s", s.name)
	}
	return Decode(data, s.name)
}

// Decode splits an archive document into its raw entries, keeping every
// element's bytes verbatim.
func Decode(data []byte, location string) ([]model.RawEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.Wrapf(ErrRead, "archive %s: top-level value is not a JSON array", location)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, errors.Wrapf(errors.Mark(err, ErrRead), "archive %s: decode", location)
	}
	out := make([]model.RawEntry, len(entries))
	for i, e := range entries {
		out[i] = model.RawEntry(e)
	}
	return out, nil
}
