package repository

import "time"

// Option configures a repository.
type Option func(*repoOptions)

type repoOptions struct {
	now func() time.Time
}

// WithClock replaces the time source used for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *repoOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) repoOptions {
	o := repoOptions{now: func() time.Time { return time.Now().UTC() }}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
