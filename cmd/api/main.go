// cmd/api/main.go
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/gamewatch/gamewatch/internal/config"
	"github.com/gamewatch/gamewatch/internal/freshcache"
	"github.com/gamewatch/gamewatch/internal/httpapi"
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

	s := httpapi.New(httpapi.ServerOptions{Refresher: ref, RedisAddr: cfg.RedisAddr, Log: logger})
	h := hlog.NewHandler(logger)(s.Router)

	logger.Info().Str("addr", cfg.ListenAddr).Msg("api listening")
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: h}
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
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
