package listing

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleData() CountryData {
	return CountryData{
		Country:   "US",
		Store:     "appstore",
		UpdatedAt: testNow.Add(-time.Hour),
		New:       []Listing{{ID: "1", Title: "Alpha"}},
		Updated:   []Listing{{ID: "2", Title: "Beta"}},
		Errors:    []ErrorRecord{{Message: "earlier partial failure"}},
	}
}

func TestMergeFreshResultWins(t *testing.T) {
	prev := sampleData()
	fresh := CountryData{
		Country: "US",
		Store:   "appstore",
		New:     []Listing{{ID: "3", Title: "Gamma"}},
		Updated: []Listing{},
	}

	got := Merge(&prev, fresh, nil, testNow)

	if !got.UpdatedAt.Equal(testNow) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, testNow)
	}
	if !got.PreservedAt.IsZero() {
		t.Error("fresh result must not carry PreservedAt")
	}
	if got.PreserveStreak != 0 {
		t.Errorf("PreserveStreak = %d, want reset to 0", got.PreserveStreak)
	}
	if len(got.New) != 1 || got.New[0].ID != "3" {
		t.Errorf("New = %v, want the fresh listings", got.New)
	}
}

func TestMergeFailureWithPreviousPreserves(t *testing.T) {
	prev := sampleData()
	fetchErr := errors.New("upstream timeout")

	got := Merge(&prev, CountryData{Country: "US", Store: "appstore"}, fetchErr, testNow)

	if len(got.Errors) != len(prev.Errors)+1 {
		t.Fatalf("errors = %d, want exactly one more than before (%d)", len(got.Errors), len(prev.Errors)+1)
	}
	last := got.Errors[len(got.Errors)-1]
	if !last.Preserved {
		t.Error("appended error must be marked preserved")
	}
	if last.Message != "upstream timeout" {
		t.Errorf("message = %q", last.Message)
	}
	if !got.PreservedAt.Equal(testNow) {
		t.Errorf("PreservedAt = %v, want %v", got.PreservedAt, testNow)
	}
	if got.PreserveStreak != 1 {
		t.Errorf("PreserveStreak = %d, want 1", got.PreserveStreak)
	}
	if len(got.New) != 1 || got.New[0].ID != "1" {
		t.Errorf("New = %v, want previous listings unchanged", got.New)
	}
	if len(got.Updated) != 1 || got.Updated[0].ID != "2" {
		t.Errorf("Updated = %v, want previous listings unchanged", got.Updated)
	}
}

func TestMergeEmptyResultTreatedAsFailure(t *testing.T) {
	prev := sampleData()
	empty := CountryData{Country: "US", Store: "appstore", New: []Listing{}, Updated: []Listing{}}

	got := Merge(&prev, empty, nil, testNow)

	if got.PreservedAt.IsZero() {
		t.Error("empty result must fall back to the previous value")
	}
	last := got.Errors[len(got.Errors)-1]
	if !last.Preserved || last.Message != ErrNoListings.Error() {
		t.Errorf("appended error = %+v, want preserved no-listings entry", last)
	}
}

func TestMergeFailureWithoutPrevious(t *testing.T) {
	fetchErr := errors.New("connection refused")
	fresh := CountryData{Country: "DE", Store: "playstore"}

	got := Merge(nil, fresh, fetchErr, testNow)

	if !got.Empty() {
		t.Error("result should be empty with no previous value")
	}
	if got.New == nil || got.Updated == nil {
		t.Error("lists should be empty, not nil, for a stable serialized shape")
	}
	if len(got.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(got.Errors))
	}
	if got.Errors[0].Preserved {
		t.Error("error must not be marked preserved when nothing was preserved")
	}
	if got.Country != "DE" || got.Store != "playstore" {
		t.Errorf("identity = %s/%s, want DE/playstore", got.Store, got.Country)
	}
}

func TestMergeStreakAccumulates(t *testing.T) {
	prev := sampleData()
	err := errors.New("down")

	got := Merge(&prev, CountryData{}, err, testNow)
	got = Merge(&got, CountryData{}, err, testNow.Add(time.Minute))
	got = Merge(&got, CountryData{}, err, testNow.Add(2*time.Minute))

	if got.PreserveStreak != 3 {
		t.Errorf("PreserveStreak = %d, want 3", got.PreserveStreak)
	}

	// A successful refresh clears the streak.
	fresh := CountryData{New: []Listing{{ID: "9"}}}
	got = Merge(&got, fresh, nil, testNow.Add(3*time.Minute))
	if got.PreserveStreak != 0 {
		t.Errorf("PreserveStreak after success = %d, want 0", got.PreserveStreak)
	}
}

func TestMergeDoesNotMutatePrevious(t *testing.T) {
	prev := sampleData()
	before := len(prev.Errors)

	_ = Merge(&prev, CountryData{}, errors.New("x"), testNow)

	if len(prev.Errors) != before {
		t.Error("Merge must not append to the previous value's error list")
	}
	if prev.PreserveStreak != 0 {
		t.Error("Merge must not touch the previous value's streak")
	}
}
