package listing

import (
	"errors"
	"time"
)

// ErrNoListings is reported when an upstream call succeeded structurally but
// returned no new and no updated entries. The merge policy treats it exactly
// like a transport failure.
var ErrNoListings = errors.New("source returned no listings")

// Merge decides what to keep after a refresh attempt for one (store, country)
// pair.
//
// A fresh, non-empty result wins outright. When the attempt failed, or came
// back empty, the previous value (if any) is carried over: a shallow copy is
// re-stamped with PreservedAt and gains one preserved error entry, and the
// caller writes it back to the cache as if it were fresh so a flaky upstream
// does not trigger a retry cascade. With no previous value to fall back on,
// the result is an empty document with a non-preserved error entry.
func Merge(prev *CountryData, fresh CountryData, fetchErr error, now time.Time) CountryData {
	if fetchErr == nil && !fresh.Empty() {
		fresh.UpdatedAt = now
		fresh.PreservedAt = time.Time{}
		fresh.PreserveStreak = 0
		return fresh
	}

	if fetchErr == nil {
		fetchErr = ErrNoListings
	}

	if prev != nil {
		kept := *prev
		kept.PreservedAt = now
		kept.PreserveStreak = prev.PreserveStreak + 1
		kept.Errors = append(append([]ErrorRecord(nil), prev.Errors...), ErrorRecord{
			Message:   fetchErr.Error(),
			Preserved: true,
		})
		return kept
	}

	return CountryData{
		Country:   fresh.Country,
		Store:     fresh.Store,
		UpdatedAt: now,
		New:       []Listing{},
		Updated:   []Listing{},
		Errors:    []ErrorRecord{{Message: fetchErr.Error()}},
	}
}
