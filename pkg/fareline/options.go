package fareline

import "time"

type options struct {
	dedupe       bool
	repair       bool
	workers      int
	liveSnapshot bool
	now          func() time.Time
}

// Option configures a Fareline instance.
type Option func(*options)

// WithDedupe toggles collapsing repeated observations of the same fare,
// keeping the most recent one. Default: true.
func WithDedupe(on bool) Option {
	return func(o *options) {
		o.dedupe = on
	}
}

// WithRepair toggles the best-effort repair pass over quarantined entries.
// Repaired records are marked low confidence. Default: false.
func WithRepair(on bool) Option {
	return func(o *options) {
		o.repair = on
	}
}

// WithWorkers sets how many entries are processed concurrently. Results are
// identical for any value. Default: 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLiveSnapshot stamps records that carry no observation time with the
// processing time. Only meaningful for archives captured live. Default: false.
func WithLiveSnapshot(on bool) Option {
	return func(o *options) {
		o.liveSnapshot = on
	}
}

func defaultOptions() options {
	return options{
		dedupe:  true,
		workers: 1,
		now:     time.Now,
	}
}
