// Package listing holds the per-country result model shared by the upstream
// adapters, the refresh orchestrator, and the serving layer.
package listing

import "time"

// Listing is a single game entry from one of the store catalogs.
type Listing struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Developer string    `json:"developer,omitempty"`
	URL       string    `json:"url,omitempty"`
	IconURL   string    `json:"icon_url,omitempty"`
	Genre     string    `json:"genre,omitempty"`
	Released  time.Time `json:"released,omitempty"`
}

// ErrorRecord describes a failure that occurred while refreshing a country.
// Preserved marks entries appended when a previous result was kept in place
// of a failed refresh.
type ErrorRecord struct {
	Message   string `json:"message"`
	Preserved bool   `json:"preserved,omitempty"`
}

// CountryData is the refreshed view for one (store, country) pair. It is the
// unit of caching and persistence.
type CountryData struct {
	Country string `json:"country"`
	Store   string `json:"store"`

	// UpdatedAt is when the data was last fetched fresh. PreservedAt is set
	// instead when a previous result was carried over after a failed refresh.
	UpdatedAt   time.Time `json:"updated_at"`
	PreservedAt time.Time `json:"preserved_at,omitempty"`

	// PreserveStreak counts consecutive refreshes that fell back to the
	// previous value. A growing streak means the upstream is broken, not
	// quiet.
	PreserveStreak int `json:"preserve_streak,omitempty"`

	New     []Listing     `json:"new"`
	Updated []Listing     `json:"updated"`
	Errors  []ErrorRecord `json:"errors,omitempty"`
}

// Empty reports whether the result carries no listings at all.
func (d CountryData) Empty() bool {
	return len(d.New) == 0 && len(d.Updated) == 0
}
