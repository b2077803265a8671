package refresh

import "time"

// SummaryEntry is the projection of one (store, country) result used for
// fast bootstrap: counts and a timestamp, nothing heavier.
type SummaryEntry struct {
	UpdatedAt    time.Time `json:"updated_at"`
	NewCount     int       `json:"new_count"`
	UpdatedCount int       `json:"updated_count"`
	ErrorCount   int       `json:"error_count"`
}

// SummaryDocument aggregates the latest view for every catalog country,
// keyed country → store. A pair with no data yet projects as null.
type SummaryDocument struct {
	GeneratedAt time.Time                           `json:"generated_at"`
	Countries   map[string]map[string]*SummaryEntry `json:"countries"`
}

// Summary recomputes the summary from current cache contents. It is a pure
// read over a point-in-time view of each entry: it never blocks a refresh
// and a refresh never blocks it.
func (r *Refresher) Summary() SummaryDocument {
	doc := SummaryDocument{
		GeneratedAt: r.now(),
		Countries:   make(map[string]map[string]*SummaryEntry, len(r.countries)),
	}
	for _, country := range r.countries {
		perStore := make(map[string]*SummaryEntry, len(r.sources))
		for name := range r.sources {
			data, ok := r.cache.Get(name + "/" + country)
			if !ok {
				perStore[name] = nil
				continue
			}
			ts := data.UpdatedAt
			if !data.PreservedAt.IsZero() {
				ts = data.PreservedAt
			}
			perStore[name] = &SummaryEntry{
				UpdatedAt:    ts,
				NewCount:     len(data.New),
				UpdatedCount: len(data.Updated),
				ErrorCount:   len(data.Errors),
			}
		}
		doc.Countries[country] = perStore
	}
	return doc
}
