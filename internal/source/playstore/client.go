// Package playstore fetches new game listings from the Google Play web
// storefront. Play has no public catalog API, so the client scrapes the
// new-games cluster page for package ids and enriches them through a
// long-lived detail cache.
package playstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gamewatch/gamewatch/internal/catalog"
	"github.com/gamewatch/gamewatch/internal/freshcache"
	"github.com/gamewatch/gamewatch/internal/listing"
	"github.com/gamewatch/gamewatch/internal/retry"
)

const DefaultBaseURL = "https://play.google.com"

// maxListings caps how many cluster entries are enriched per country; the
// cluster page carries far more ids than the view needs.
const maxListings = 60

var (
	detailsLinkRe = regexp.MustCompile(`/store/apps/details\?id=([a-zA-Z0-9._]+)`)
	ogTitleRe     = regexp.MustCompile(`<meta property="og:title" content="([^"]*)"`)
	ogImageRe     = regexp.MustCompile(`<meta property="og:image" content="([^"]*)"`)
)

type Client struct {
	http    *http.Client
	baseURL *url.URL
	retrier *retry.Retrier

	// details caches package id → listing lookups across countries; app
	// titles and icons change rarely, so this cache runs on a TTL of days
	// rather than minutes.
	details *freshcache.Cache[listing.Listing]
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

func WithRetrier(r *retry.Retrier) Option {
	return func(c *Client) { c.retrier = r }
}

// New returns a Play storefront client. details must be a cache dedicated to
// package-id lookups; it is read and written by every Fetch.
func New(details *freshcache.Cache[listing.Listing], opts ...Option) *Client {
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:    http.DefaultClient,
		baseURL: u,
		retrier: retry.New(),
		details: details,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Name() string { return catalog.StorePlayStore }

// Fetch retrieves listings for country with no previous snapshot to diff
// against, so every entry classifies as new.
func (c *Client) Fetch(ctx context.Context, country string) (listing.CountryData, error) {
	return c.FetchWithPrevious(ctx, country, nil)
}

// FetchWithPrevious retrieves the current new-games cluster and classifies
// entries against prev: package ids never seen before are new, ids already
// in the previous snapshot are updated.
func (c *Client) FetchWithPrevious(ctx context.Context, country string, prev *listing.CountryData) (listing.CountryData, error) {
	data := listing.CountryData{
		Country: country,
		Store:   c.Name(),
		New:     []listing.Listing{},
		Updated: []listing.Listing{},
	}

	ids, err := c.fetchCluster(ctx, country)
	if err != nil {
		return data, err
	}
	if len(ids) > maxListings {
		ids = ids[:maxListings]
	}

	seen := previousIDs(prev)
	for _, id := range ids {
		l, lerr := c.lookup(ctx, id, country)
		if lerr != nil {
			data.Errors = append(data.Errors, listing.ErrorRecord{Message: lerr.Error()})
			continue
		}
		if _, ok := seen[id]; ok {
			data.Updated = append(data.Updated, l)
		} else {
			data.New = append(data.New, l)
		}
	}
	return data, nil
}

// fetchCluster scrapes the new-games cluster page for package ids in page
// order, deduplicated.
func (c *Client) fetchCluster(ctx context.Context, country string) ([]string, error) {
	u := *c.baseURL
	u.Path = "/store/apps/new"
	u.RawQuery = url.Values{"gl": {country}, "hl": {"en"}, "c": {"games"}}.Encode()

	body, err := c.get(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("playstore cluster %s: %w", country, err)
	}

	var ids []string
	dedupe := make(map[string]struct{})
	for _, m := range detailsLinkRe.FindAllStringSubmatch(body, -1) {
		id := m[1]
		if _, ok := dedupe[id]; ok {
			continue
		}
		dedupe[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// lookup resolves a package id into a listing, going to the detail page only
// when the cached identity has gone stale.
func (c *Client) lookup(ctx context.Context, id, country string) (listing.Listing, error) {
	if c.details.IsFresh(id) {
		if l, ok := c.details.Get(id); ok {
			return l, nil
		}
	}

	u := *c.baseURL
	u.Path = "/store/apps/details"
	u.RawQuery = url.Values{"id": {id}, "gl": {country}, "hl": {"en"}}.Encode()

	body, err := c.get(ctx, u.String())
	if err != nil {
		// A stale identity beats none at all.
		if l, ok := c.details.Get(id); ok {
			return l, nil
		}
		return listing.Listing{}, fmt.Errorf("playstore details %s: %w", id, err)
	}

	l := listing.Listing{
		ID:  id,
		URL: u.String(),
	}
	if m := ogTitleRe.FindStringSubmatch(body); m != nil {
		l.Title = strings.TrimSuffix(m[1], " - Apps on Google Play")
	}
	if m := ogImageRe.FindStringSubmatch(body); m != nil {
		l.IconURL = m[1]
	}
	c.details.Put(id, l)
	return l, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (string, error) {
	var body string
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept-Language", "en")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %s", resp.Status)
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = string(b)
		return nil
	})
	return body, err
}

func previousIDs(prev *listing.CountryData) map[string]struct{} {
	ids := make(map[string]struct{})
	if prev == nil {
		return ids
	}
	for _, l := range prev.New {
		ids[l.ID] = struct{}{}
	}
	for _, l := range prev.Updated {
		ids[l.ID] = struct{}{}
	}
	return ids
}
