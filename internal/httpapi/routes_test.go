package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gamewatch/gamewatch/internal/freshcache"
	"github.com/gamewatch/gamewatch/internal/listing"
	"github.com/gamewatch/gamewatch/internal/refresh"
	"github.com/gamewatch/gamewatch/internal/source"
)

type stubSource struct {
	name  string
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context, country string) (listing.CountryData, error) {
	s.calls++
	return listing.CountryData{
		Country: country,
		Store:   s.name,
		New:     []listing.Listing{{ID: "g1", Title: "Stub Game"}},
		Updated: []listing.Listing{},
	}, nil
}

func newTestServer(srcs ...source.Source) *Server {
	r := refresh.New(refresh.Options{
		Countries: []string{"US", "GB"},
		Sources:   srcs,
		Cache:     freshcache.New[listing.CountryData](time.Minute),
		Log:       zerolog.Nop(),
	})
	return New(ServerOptions{Refresher: r, Log: zerolog.Nop()})
}

func TestHealthz(t *testing.T) {
	s := newTestServer(&stubSource{name: "appstore"})
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestGetCountryData(t *testing.T) {
	src := &stubSource{name: "appstore"}
	s := newTestServer(src)

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/appstore/US", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var data listing.CountryData
	if err := json.Unmarshal(rec.Body.Bytes(), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Country != "US" || len(data.New) != 1 {
		t.Errorf("body = %+v", data)
	}
}

func TestGetCountryDataUnknownStore(t *testing.T) {
	s := newTestServer(&stubSource{name: "appstore"})
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/steam/US", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetCountryDataUnknownCountry(t *testing.T) {
	s := newTestServer(&stubSource{name: "appstore"})
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/appstore/ZZ", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestForceQueryTriggersRefetch(t *testing.T) {
	src := &stubSource{name: "appstore"}
	s := newTestServer(src)

	for _, target := range []string{"/api/appstore/US", "/api/appstore/US", "/api/appstore/US?force=1"} {
		rec := httptest.NewRecorder()
		s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: status %d", target, rec.Code)
		}
	}
	if src.calls != 2 {
		t.Errorf("upstream calls = %d, want 2 (cached second read, forced third)", src.calls)
	}
}

func TestTriggerRefreshUnknownCountry(t *testing.T) {
	s := newTestServer(&stubSource{name: "appstore"})
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh/ZZ", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTriggerRefreshWithoutQueue(t *testing.T) {
	s := newTestServer(&stubSource{name: "appstore"})
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh/US", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when no queue is configured", rec.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	src := &stubSource{name: "appstore"}
	s := newTestServer(src)

	// Populate one pair, then read the summary.
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/appstore/US", nil))

	rec = httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var doc refresh.SummaryDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	us := doc.Countries["US"]
	if us["appstore"] == nil || us["appstore"].NewCount != 1 {
		t.Errorf("summary US/appstore = %+v", us["appstore"])
	}
	if gb := doc.Countries["GB"]; gb["appstore"] != nil {
		t.Errorf("summary GB/appstore = %+v, want null", gb["appstore"])
	}
}
