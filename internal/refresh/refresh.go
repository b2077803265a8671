// Package refresh is the orchestration layer: it decides which countries to
// refresh, caps concurrent upstream calls, applies the freshness and
// fallback policies, and persists the per-country results.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gamewatch/gamewatch/internal/catalog"
	"github.com/gamewatch/gamewatch/internal/freshcache"
	"github.com/gamewatch/gamewatch/internal/limiter"
	"github.com/gamewatch/gamewatch/internal/listing"
	"github.com/gamewatch/gamewatch/internal/source"
	"github.com/gamewatch/gamewatch/internal/store"
)

const (
	DefaultTTL           = 5 * time.Minute
	DefaultMaxConcurrent = 5
	DefaultBatchSize     = 10
)

// Options configures a Refresher. Zero fields fall back to defaults; Store
// may stay nil for a purely in-memory instance.
type Options struct {
	Countries []string
	Sources   []source.Source
	Cache     *freshcache.Cache[listing.CountryData]
	Limiter   *limiter.Limiter
	Store     *store.Store
	Log       zerolog.Logger
	BatchSize int
	Clock     func() time.Time
}

// Refresher owns the freshness cache and the in-flight fetch map. All
// refresh traffic, on-demand and batch, funnels through GetData so the
// "one fetch per (store, country)" discipline holds process-wide.
type Refresher struct {
	countries []string
	sources   map[string]source.Source
	cache     *freshcache.Cache[listing.CountryData]
	limiter   *limiter.Limiter
	store     *store.Store
	log       zerolog.Logger
	batchSize int
	now       func() time.Time

	mu       sync.Mutex
	inflight map[string]*flight
}

// flight is the shared handle for one outstanding (store, country) fetch.
// Late callers wait on done instead of issuing a duplicate upstream call.
type flight struct {
	done chan struct{}
	data listing.CountryData
}

func New(opts Options) *Refresher {
	r := &Refresher{
		countries: opts.Countries,
		sources:   make(map[string]source.Source),
		cache:     opts.Cache,
		limiter:   opts.Limiter,
		store:     opts.Store,
		log:       opts.Log,
		batchSize: opts.BatchSize,
		now:       opts.Clock,
		inflight:  make(map[string]*flight),
	}
	if r.countries == nil {
		r.countries = catalog.Countries()
	}
	if r.cache == nil {
		r.cache = freshcache.New[listing.CountryData](DefaultTTL)
	}
	if r.limiter == nil {
		r.limiter = limiter.New(DefaultMaxConcurrent)
	}
	if r.batchSize <= 0 {
		r.batchSize = DefaultBatchSize
	}
	if r.now == nil {
		r.now = time.Now
	}
	for _, s := range opts.Sources {
		r.sources[s.Name()] = s
	}
	return r
}

// GetData returns the current view for (storeName, country). A fresh cached
// value is served as is; otherwise one upstream fetch runs (shared with any
// concurrent caller for the same pair) and the merged result comes back,
// possibly preserved with its errors attached. force skips the freshness
// check but still attaches to an in-flight fetch rather than starting a
// second one. The only hard errors are unknown store or country.
func (r *Refresher) GetData(ctx context.Context, storeName, country string, force bool) (listing.CountryData, error) {
	src, ok := r.sources[storeName]
	if !ok {
		return listing.CountryData{}, fmt.Errorf("%w: %s", catalog.ErrUnknownStore, storeName)
	}
	if !r.validCountry(country) {
		return listing.CountryData{}, fmt.Errorf("%w: %s", catalog.ErrUnknownCountry, country)
	}

	key := storeName + "/" + country
	if !force && r.cache.IsFresh(key) {
		if data, ok := r.cache.Get(key); ok {
			return data, nil
		}
	}

	f, leader := r.join(key)
	if leader {
		r.fetch(ctx, f, key, src, country)
	}
	<-f.done
	return f.data, nil
}

// join returns the flight for key, creating it when none is outstanding.
// The second return tells the caller it is the one that must run the fetch.
func (r *Refresher) join(key string) (*flight, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.inflight[key]; ok {
		return f, false
	}
	f := &flight{done: make(chan struct{})}
	r.inflight[key] = f
	return f, true
}

// fetch performs the single upstream call for key, applies the fallback
// policy, writes the cache and store, and releases the flight.
func (r *Refresher) fetch(ctx context.Context, f *flight, key string, src source.Source, country string) {
	defer func() {
		r.mu.Lock()
		delete(r.inflight, key)
		r.mu.Unlock()
		close(f.done)
	}()

	prev := r.previous(src.Name(), country)

	var fresh listing.CountryData
	var fetchErr error
	_ = r.limiter.Do(func() error {
		if pa, ok := src.(source.PreviousAware); ok {
			fresh, fetchErr = pa.FetchWithPrevious(ctx, country, prev)
		} else {
			fresh, fetchErr = src.Fetch(ctx, country)
		}
		return fetchErr
	})
	if fresh.Country == "" {
		fresh.Country = country
	}
	if fresh.Store == "" {
		fresh.Store = src.Name()
	}

	merged := listing.Merge(prev, fresh, fetchErr, r.now())
	r.cache.Put(key, merged)

	if merged.PreserveStreak > 0 {
		r.log.Warn().
			Str("store", src.Name()).
			Str("country", country).
			Int("preserve_streak", merged.PreserveStreak).
			Err(fetchErr).
			Msg("refresh failed, previous result preserved")
	}

	if r.store != nil {
		if err := r.store.PutCountry(merged); err != nil {
			r.log.Error().Err(err).Str("key", key).Msg("persist country data")
		}
	}

	f.data = merged
}

// previous returns the last known value for (storeName, country): the cache
// entry if one exists, else the persisted record from an earlier process.
func (r *Refresher) previous(storeName, country string) *listing.CountryData {
	if data, ok := r.cache.Get(storeName + "/" + country); ok {
		return &data
	}
	if r.store != nil {
		if data, ok, err := r.store.GetCountry(storeName, country); err == nil && ok {
			return &data
		}
	}
	return nil
}

// Invalidate drops freshness for every source's entry of country, forcing
// the next read to refetch.
func (r *Refresher) Invalidate(country string) {
	for name := range r.sources {
		r.cache.Invalidate(name + "/" + country)
	}
}

func (r *Refresher) validCountry(country string) bool {
	for _, c := range r.countries {
		if c == country {
			return true
		}
	}
	return false
}
