// cmd/worker/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/gamewatch/gamewatch/internal/catalog"
	"github.com/gamewatch/gamewatch/internal/config"
	"github.com/gamewatch/gamewatch/internal/freshcache"
	"github.com/gamewatch/gamewatch/internal/jobs"
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

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, asynq.Config{
		Concurrency: 4,
		Queues: map[string]int{
			"refresh": 10, // higher priority
			"default": 5,
		},
	})
	mux := asynq.NewServeMux()

	mux.HandleFunc(jobs.TaskRefreshCountry, func(ctx context.Context, t *asynq.Task) error {
		var p jobs.RefreshCountryPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			logger.Error().Err(err).Msg("bad refresh payload")
			return err
		}
		start := time.Now()
		for _, name := range catalog.Stores() {
			if _, err := ref.GetData(ctx, name, p.Country, p.Force); err != nil {
				// Unknown country; retrying cannot help.
				logger.Error().Err(err).Str("country", p.Country).Msg("refresh dropped")
				return nil
			}
		}
		logger.Info().Str("country", p.Country).Dur("took", time.Since(start)).Msg("country refreshed")
		return nil
	})

	mux.HandleFunc(jobs.TaskSnapshotRun, func(ctx context.Context, t *asynq.Task) error {
		var p jobs.SnapshotRunPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			logger.Error().Err(err).Msg("bad snapshot payload")
			return err
		}
		res, err := ref.RunSnapshot(ctx, refresh.RunType(p.RunType), p.Countries)
		if err != nil {
			logger.Error().Err(err).Str("run_type", p.RunType).Msg("snapshot run failed")
			return err
		}
		logger.Info().Str("run_id", res.RunID).Int("countries", len(res.Processed)).Msg("snapshot run done")
		return nil
	})

	logger.Info().Msg("worker running")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped")
	}
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
