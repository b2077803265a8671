package refresh

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gamewatch/gamewatch/internal/catalog"
	"github.com/gamewatch/gamewatch/internal/schedule"
	"github.com/gamewatch/gamewatch/internal/store"
)

// RunType selects how a snapshot run picks its countries.
type RunType string

const (
	// RunFull refreshes every catalog country.
	RunFull RunType = "full"
	// RunIncremental refreshes the next cursor batch.
	RunIncremental RunType = "incremental"
)

// SnapshotResult reports what a snapshot run covered.
type SnapshotResult struct {
	RunID      string   `json:"run_id"`
	RunType    string   `json:"run_type"`
	Processed  []string `json:"processed"`
	NextCursor int      `json:"next_cursor"`
}

// RunSnapshot refreshes a set of countries across all sources and persists
// the per-country documents, the summary, and the scheduler state.
//
// With a non-empty explicit list the scheduler is bypassed and the cursor
// left untouched; unknown countries in the list are rejected up front. A
// full run also leaves the cursor where the incremental cycle parked it.
// Per-country failures never abort the run: they surface as preserved or
// empty results inside each document.
func (r *Refresher) RunSnapshot(ctx context.Context, runType RunType, explicit []string) (SnapshotResult, error) {
	if runType != RunFull && runType != RunIncremental {
		return SnapshotResult{}, fmt.Errorf("unknown run type %q", runType)
	}

	cursor := 0
	if r.store != nil {
		if st, ok, err := r.store.GetState(); err != nil {
			return SnapshotResult{}, err
		} else if ok {
			cursor = st.IncrementalCursor
		}
	}

	var keys []string
	next := cursor
	switch {
	case len(explicit) > 0:
		for _, c := range explicit {
			if !r.validCountry(c) {
				return SnapshotResult{}, fmt.Errorf("%w: %s", catalog.ErrUnknownCountry, c)
			}
		}
		keys = explicit
	case runType == RunFull:
		keys = r.countries
	default:
		keys, next = schedule.NextBatch(r.countries, cursor, r.batchSize)
	}

	res := SnapshotResult{
		RunID:      uuid.NewString(),
		RunType:    string(runType),
		Processed:  keys,
		NextCursor: next,
	}

	log := r.log.With().Str("run_id", res.RunID).Str("run_type", res.RunType).Logger()
	log.Info().Int("countries", len(keys)).Int("cursor", cursor).Msg("snapshot run started")

	var wg sync.WaitGroup
	for _, country := range keys {
		wg.Add(1)
		go func(country string) {
			defer wg.Done()
			for name := range r.sources {
				// force: a snapshot run always refetches. The limiter
				// inside GetData caps how many calls are actually in
				// flight at once.
				if _, err := r.GetData(ctx, name, country, true); err != nil {
					log.Error().Err(err).Str("store", name).Str("country", country).Msg("refresh")
				}
			}
		}(country)
	}
	wg.Wait()

	if r.store != nil {
		if err := r.store.PutSummary(r.Summary()); err != nil {
			return res, fmt.Errorf("persist summary: %w", err)
		}
		st := store.State{
			LastRunAt:          r.now(),
			RunType:            res.RunType,
			IncrementalCursor:  next,
			IncrementalSize:    r.batchSize,
			CountriesProcessed: keys,
		}
		if err := r.store.PutState(st); err != nil {
			return res, fmt.Errorf("persist state: %w", err)
		}
	}

	log.Info().Int("next_cursor", next).Msg("snapshot run finished")
	return res, nil
}
