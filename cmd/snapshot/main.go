// cmd/snapshot/main.go
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"

	"github.com/gamewatch/gamewatch/internal/config"
	"github.com/gamewatch/gamewatch/internal/freshcache"
	"github.com/gamewatch/gamewatch/internal/limiter"
	"github.com/gamewatch/gamewatch/internal/listing"
	"github.com/gamewatch/gamewatch/internal/refresh"
	"github.com/gamewatch/gamewatch/internal/retry"
	"github.com/gamewatch/gamewatch/internal/source"
	"github.com/gamewatch/gamewatch/internal/source/appstore"
	"github.com/gamewatch/gamewatch/internal/source/playstore"
	"github.com/gamewatch/gamewatch/internal/store"
)

func main() {
	runType := flag.String("run", "incremental", "run type: full or incremental")
	countries := flag.String("countries", "", "comma-separated explicit country list (bypasses the cursor)")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	ref := newRefresher(cfg, logger, st)

	var explicit []string
	if *countries != "" {
		for _, c := range strings.Split(*countries, ",") {
			if c = strings.TrimSpace(c); c != "" {
				explicit = append(explicit, c)
			}
		}
	}

	res, err := ref.RunSnapshot(context.Background(), refresh.RunType(*runType), explicit)
	if err != nil {
		logger.Fatal().Err(err).Msg("snapshot run failed")
	}

	logger.Info().
		Str("run_id", res.RunID).
		Strs("processed", res.Processed).
		Int("next_cursor", res.NextCursor).
		Msg("snapshot complete")
}

// newRefresher wires the upstream clients behind one caching transport and
// one shared limiter.
func newRefresher(cfg config.Config, logger zerolog.Logger, st *store.Store) *refresh.Refresher {
	transport := httpcache.NewMemoryCacheTransport()
	httpClient := &http.Client{Transport: transport, Timeout: 30 * time.Second}
	retrier := retry.New(cfg.RetryDelays...)

	appOpts := []appstore.Option{
		appstore.WithHTTPClient(httpClient),
		appstore.WithRetrier(retrier),
	}
	if cfg.AppStoreBaseURL != "" {
		appOpts = append(appOpts, appstore.WithBaseURL(cfg.AppStoreBaseURL))
	}

	playOpts := []playstore.Option{
		playstore.WithHTTPClient(httpClient),
		playstore.WithRetrier(retrier),
	}
	if cfg.PlayStoreBaseURL != "" {
		playOpts = append(playOpts, playstore.WithBaseURL(cfg.PlayStoreBaseURL))
	}
	details := freshcache.New[listing.Listing](cfg.DetailTTL)

	return refresh.New(refresh.Options{
		Sources: []source.Source{
			appstore.New(appOpts...),
			playstore.New(details, playOpts...),
		},
		Cache:     freshcache.New[listing.CountryData](cfg.CacheTTL),
		Limiter:   limiter.New(cfg.MaxConcurrent),
		Store:     st,
		Log:       logger,
		BatchSize: cfg.BatchSize,
	})
}
