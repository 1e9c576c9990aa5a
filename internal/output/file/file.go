package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/crimson-sun/fareline/internal/output"
)

const defaultPerm = 0o644

// Paths locates the three artifacts.
type Paths struct {
	Canonical  string
	Quarantine string
	Audit      string
}

// Option configures a file Output.
type Option func(*Output)

// WithIndent toggles indented JSON. Default: true.
func WithIndent(indent bool) Option {
	return func(o *Output) { o.indent = indent }
}

// WithPerm sets the permission bits of written files. Default: 0644.
func WithPerm(perm os.FileMode) Option {
	return func(o *Output) { o.perm = perm }
}

// Output writes each artifact as a JSON file. Files are replaced by rename,
// so readers only ever see a complete previous or complete new version.
type Output struct {
	fs     afero.Fs
	paths  Paths
	indent bool
	perm   os.FileMode
}

// New creates a file output on fs.
func New(fs afero.Fs, paths Paths, opts ...Option) *Output {
	o := &Output{fs: fs, paths: paths, indent: true, perm: defaultPerm}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type staged struct {
	tmp, dst string
}

// Commit encodes and stages all three artifacts as temp files next to their
// targets, then renames them into place. Nothing is renamed unless every
// artifact staged cleanly.
func (o *Output) Commit(ctx context.Context, a output.Artifacts) error {
	a = a.Normalized()
	// The audit goes last, so it is only replaced once both data files are.
	docs := []struct {
		path string
		v    any
	}{
		{o.paths.Canonical, a.Canonical},
		{o.paths.Quarantine, a.Quarantine},
		{o.paths.Audit, a.Audit},
	}

	var stages []staged
	cleanup := func() {
		for _, s := range stages {
			_ = o.fs.Remove(s.tmp)
		}
	}

	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			cleanup()
			return err
		}
		data, err := o.encode(d.v)
		if err != nil {
			cleanup()
			return errors.Wrapf(errors.Mark(err, output.ErrWrite), "file output: encode %s", d.path)
		}
		tmp, err := o.stage(d.path, data)
		if err != nil {
			cleanup()
			return errors.Wrapf(errors.Mark(err, output.ErrWrite), "file output: stage %s", d.path)
		}
		stages = append(stages, staged{tmp: tmp, dst: d.path})
	}

	// Renames are atomic one by one, not as a set. A failure here can leave
	// earlier targets replaced and later ones at their previous version; since
	// the audit is renamed last, a stale audit marks an interrupted commit.
	for i, s := range stages {
		if err := o.fs.Rename(s.tmp, s.dst); err != nil {
			stages = stages[i:]
			cleanup()
			return errors.Wrapf(errors.Mark(err, output.ErrWrite), "file output: replace %s", s.dst)
		}
	}
	return nil
}

func (o *Output) encode(v any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if o.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// stage writes data to a temp file in path's directory and returns its name.
func (o *Output) stage(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := o.fs.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := afero.TempFile(o.fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		o.fs.Remove(name)
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		o.fs.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		o.fs.Remove(name)
		return "", err
	}
	if err := o.fs.Chmod(name, o.perm); err != nil {
		o.fs.Remove(name)
		return "", err
	}
	return name, nil
}
