// Package retry wraps a single upstream call with a bounded number of
// retries driven by a configured delay table.
package retry

import (
	"context"
	"time"
)

// Retrier retries an operation once per entry in Delays, sleeping the
// corresponding delay after each non-final failure. It is meant for
// individual network calls; whole per-country refreshes have their own
// fallback policy and are never wrapped.
type Retrier struct {
	Delays []time.Duration

	sleep func(context.Context, time.Duration) error
}

// New returns a Retrier attempting an operation up to len(delays)+1 times.
func New(delays ...time.Duration) *Retrier {
	return &Retrier{Delays: delays, sleep: sleepCtx}
}

// Do runs op until it succeeds or the delay table is exhausted, returning
// the last failure. Cancelling ctx during a backoff sleep aborts with the
// context's error.
func (r *Retrier) Do(ctx context.Context, op func(context.Context) error) error {
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var err error
	for attempt := 0; attempt <= len(r.Delays); attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == len(r.Delays) {
			break
		}
		if serr := sleep(ctx, r.Delays[attempt]); serr != nil {
			return serr
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
