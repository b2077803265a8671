// Package httpapi exposes the on-demand refresh API.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/gamewatch/gamewatch/internal/catalog"
	"github.com/gamewatch/gamewatch/internal/jobs"
	"github.com/gamewatch/gamewatch/internal/refresh"
)

type Server struct {
	Router    *chi.Mux
	Refresher *refresh.Refresher
	RedisAddr string // for enqueueing background refreshes; empty disables
	Log       zerolog.Logger
}

type ServerOptions struct {
	Refresher *refresh.Refresher
	RedisAddr string
	Log       zerolog.Logger
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	s := &Server{Router: r, Refresher: opts.Refresher, RedisAddr: opts.RedisAddr, Log: opts.Log}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/api/summary", s.handleSummary)
	r.Get("/api/{store}/{country}", s.handleCountry)
	r.Post("/api/refresh/{country}", s.handleTriggerRefresh)

	return s
}

// handleCountry serves the per-country view for one store. The response is
// best effort: a preserved or empty result with its errors list still comes
// back 200. Only an unknown store or country is a hard 404.
func (s *Server) handleCountry(w http.ResponseWriter, req *http.Request) {
	storeName := chi.URLParam(req, "store")
	country := chi.URLParam(req, "country")
	force := req.URL.Query().Get("force") == "1" || req.URL.Query().Get("force") == "true"

	data, err := s.Refresher.GetData(req.Context(), storeName, country, force)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownStore) || errors.Is(err, catalog.ErrUnknownCountry) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.Log.Error().Err(err).Str("store", storeName).Str("country", country).Msg("get data")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, data)
}

func (s *Server) handleSummary(w http.ResponseWriter, req *http.Request) {
	s.writeJSON(w, s.Refresher.Summary())
}

// handleTriggerRefresh enqueues a background refresh for one country instead
// of blocking the caller on the upstream fetch.
func (s *Server) handleTriggerRefresh(w http.ResponseWriter, req *http.Request) {
	country := chi.URLParam(req, "country")
	if !catalog.ValidCountry(country) {
		http.Error(w, catalog.ErrUnknownCountry.Error(), http.StatusNotFound)
		return
	}
	if s.RedisAddr == "" {
		http.Error(w, "background refresh not configured", http.StatusServiceUnavailable)
		return
	}

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: s.RedisAddr})
	defer func() {
		if err := client.Close(); err != nil {
			s.Log.Error().Err(err).Msg("close asynq client")
		}
	}()

	payload, _ := json.Marshal(jobs.RefreshCountryPayload{Country: country, Force: true})
	info, err := client.Enqueue(asynq.NewTask(jobs.TaskRefreshCountry, payload),
		asynq.Queue("refresh"),
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		s.Log.Error().Err(err).Str("country", country).Msg("enqueue refresh")
		http.Error(w, "could not enqueue refresh", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	s.writeJSON(w, map[string]string{"task_id": info.ID, "country": country})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Log.Error().Err(err).Msg("encode response")
	}
}
