package stdout

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/crimson-sun/fareline/internal/output"
)

// Output writes all artifacts as one JSON document, for dry runs. Nothing on
// disk is touched.
type Output struct {
	w      io.Writer
	pretty bool
}

// New creates a stdout Output with optional pretty-printed JSON.
func New(pretty bool) *Output {
	return NewWriter(os.Stdout, pretty)
}

// NewWriter creates an Output that writes to w instead of stdout.
func NewWriter(w io.Writer, pretty bool) *Output {
	return &Output{w: w, pretty: pretty}
}

type document struct {
	Canonical  any `json:"canonical"`
	Quarantine any `json:"quarantine"`
	Audit      any `json:"audit"`
}

// Commit encodes the artifacts into one buffer before writing, so a failed
// encode writes nothing.
func (o *Output) Commit(ctx context.Context, a output.Artifacts) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a = a.Normalized()
	doc := document{Canonical: a.Canonical, Quarantine: a.Quarantine, Audit: a.Audit}

	var (
		data []byte
		err  error
	)
	if o.pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return errors.Wrap(errors.Mark(err, output.ErrWrite), "stdout output: encode")
	}
	if _, err := o.w.Write(append(data, '\n')); err != nil {
		return errors.Wrap(errors.Mark(err, output.ErrWrite), "stdout output: write")
	}
	return nil
}
