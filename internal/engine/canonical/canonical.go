package canonical

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/crimson-sun/fareline/internal/model"
)

var (
	// ErrMalformedEntry marks an entry whose classified shape could not be
	// mapped, such as a non-object result item.
	ErrMalformedEntry = errors.New("malformed entry")
	// ErrNoMapper marks a tag without a registered mapper, including unknown.
	ErrNoMapper = errors.New("no mapper for variant")
)

// Options controls canonicalization.
type Options struct {
	// LiveSnapshot allows a missing timestamp to default to Now. Historical
	// back-fills must leave it false so no observation time is fabricated.
	LiveSnapshot bool
	// Now overrides the clock for live snapshots. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// entry is the per-call context threaded through a mapper.
type entry struct {
	index int
	tag   model.VariantTag
	opts  Options
}

// Mapper converts one parsed entry of a known variant into records.
type Mapper func(doc gjson.Result, e entry) ([]model.CanonicalRecord, error)

// Canonicalizer dispatches tagged entries to their variant mapper.
type Canonicalizer struct {
	mappers map[model.VariantTag]Mapper
	opts    Options
}

// New creates a Canonicalizer over DefaultMappers.
func New(opts Options) *Canonicalizer {
	return &Canonicalizer{mappers: DefaultMappers(), opts: opts}
}

// Supports reports whether tag has a registered mapper.
func (c *Canonicalizer) Supports(tag model.VariantTag) bool {
	_, ok := c.mappers[tag]
	return ok
}

// Canonicalize maps the entry at index, already classified as tag, into zero
// or more records. It never panics; failures come back as errors so the
// caller can quarantine the entry.
func (c *Canonicalizer) Canonicalize(index int, tag model.VariantTag, raw model.RawEntry) (recs []model.CanonicalRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			recs = nil
			err = errors.Wrapf(ErrMalformedEntry, "entry %d: panic while mapping %s: %v", index, tag, r)
		}
	}()

	m, ok := c.mappers[tag]
	if !ok {
		return nil, errors.Wrapf(ErrNoMapper, "entry %d: %s", index, tag)
	}
	if !gjson.ValidBytes(raw) {
		return nil, errors.Wrapf(ErrMalformedEntry, "entry %d: invalid JSON", index)
	}
	recs, err = m(gjson.ParseBytes(raw), entry{index: index, tag: tag, opts: c.opts})
	if err != nil {
		return nil, errors.Wrapf(err, "entry %d (%s)", index, tag)
	}
	return recs, nil
}

func malformed(format string, args ...any) error {
	return errors.Wrap(ErrMalformedEntry, fmt.Sprintf(format, args...))
}
