// Package catalog defines the fixed set of countries and stores the tracker
// refreshes. The country order is stable across runs; the incremental
// scheduler's cursor indexes into it.
package catalog

import "errors"

var (
	// ErrUnknownCountry is returned when a caller asks for a country that is
	// not part of the catalog.
	ErrUnknownCountry = errors.New("unknown country")

	// ErrUnknownStore is returned when a caller asks for a store the tracker
	// does not follow.
	ErrUnknownStore = errors.New("unknown store")
)

// Store identifiers for the two upstream catalogs.
const (
	StoreAppStore  = "appstore"
	StorePlayStore = "playstore"
)

// countries is the ordered catalog of tracked storefront countries.
// Do not reorder: the incremental cursor persisted between runs is an index
// into this slice.
var countries = []string{
	"US", "GB", "CA", "AU", "DE", "FR", "JP", "KR", "BR", "IN",
	"IT", "ES", "NL", "SE", "NO", "DK", "FI", "PL", "RU", "TR",
	"MX", "AR", "CL", "CO", "ID", "TH", "VN", "PH", "MY", "SG",
	"HK", "TW", "NZ", "IE", "AT", "CH", "BE", "PT", "CZ", "ZA",
}

// Countries returns the full catalog in stable order. The returned slice is
// a copy; callers may hold on to it.
func Countries() []string {
	out := make([]string, len(countries))
	copy(out, countries)
	return out
}

// Stores returns the tracked store identifiers.
func Stores() []string {
	return []string{StoreAppStore, StorePlayStore}
}

// ValidCountry reports whether code is part of the catalog.
func ValidCountry(code string) bool {
	for _, c := range countries {
		if c == code {
			return true
		}
	}
	return false
}

// ValidStore reports whether name is a tracked store.
func ValidStore(name string) bool {
	return name == StoreAppStore || name == StorePlayStore
}
