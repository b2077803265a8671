// Package source defines the contract the refresh orchestrator consumes from
// the upstream store adapters.
package source

import (
	"context"

	"github.com/gamewatch/gamewatch/internal/listing"
)

// Source fetches the current new/updated listings for one country. A non-nil
// error means the fetch failed outright; a nil error with an empty result is
// possible and handled by the caller's fallback policy. The Errors list on a
// returned document may be non-empty even on success, representing partial
// failures (a detail lookup that timed out, an entry that failed to parse).
type Source interface {
	// Name returns the store identifier (see catalog.Stores).
	Name() string

	// Fetch retrieves listings for the given catalog country.
	Fetch(ctx context.Context, country string) (listing.CountryData, error)
}

// PreviousAware is implemented by sources that classify entries against the
// previously persisted result (first-seen vs. seen-before). The orchestrator
// prefers it over Fetch when a previous value is available.
type PreviousAware interface {
	FetchWithPrevious(ctx context.Context, country string, prev *listing.CountryData) (listing.CountryData, error)
}
