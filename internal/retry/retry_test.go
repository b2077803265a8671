package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeSleep records requested delays without waiting.
func fakeSleep(slept *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	var slept []time.Duration
	r := New(time.Second, 5*time.Second)
	r.sleep = fakeSleep(&slept)

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(slept) != 0 {
		t.Errorf("slept %v, want no delays", slept)
	}
}

func TestDoRetriesThroughDelayTable(t *testing.T) {
	var slept []time.Duration
	r := New(time.Second, 5*time.Second, 15*time.Second)
	r.sleep = fakeSleep(&slept)

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	want := []time.Duration{time.Second, 5 * time.Second}
	if len(slept) != len(want) || slept[0] != want[0] || slept[1] != want[1] {
		t.Errorf("slept = %v, want %v", slept, want)
	}
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	var slept []time.Duration
	r := New(time.Millisecond, time.Millisecond)
	r.sleep = fakeSleep(&slept)

	last := errors.New("attempt 3")
	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return last
	})
	if !errors.Is(err, last) {
		t.Errorf("err = %v, want last failure", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want len(delays)+1 = 3", calls)
	}
}

func TestDoNoDelaysMeansSingleAttempt(t *testing.T) {
	r := New()
	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("nope")
	})
	if err == nil {
		t.Fatal("expected failure")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoAbortsOnContextCancel(t *testing.T) {
	r := New(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Do(ctx, func(context.Context) error {
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled from backoff sleep", err)
	}
}
