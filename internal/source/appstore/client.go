// Package appstore fetches new game listings from the App Store RSS feeds.
package appstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gamewatch/gamewatch/internal/catalog"
	"github.com/gamewatch/gamewatch/internal/listing"
	"github.com/gamewatch/gamewatch/internal/retry"
)

const DefaultBaseURL = "https://itunes.apple.com"

// gamesGenreID is Apple's genre identifier for Games.
const gamesGenreID = "6014"

// newWindow separates "new" from "recently updated": feed entries released
// within the window count as new, the rest as updated.
const newWindow = 30 * 24 * time.Hour

const feedLimit = 200

type Client struct {
	http    *http.Client
	baseURL *url.URL
	retrier *retry.Retrier
	now     func() time.Time
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

func New(opts ...Option) *Client {
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:    http.DefaultClient,
		baseURL: u,
		retrier: retry.New(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Name() string { return catalog.StoreAppStore }

// Fetch pulls the new-games feed for country and splits entries by release
// date into new and recently updated.
func (c *Client) Fetch(ctx context.Context, country string) (listing.CountryData, error) {
	data := listing.CountryData{
		Country: country,
		Store:   c.Name(),
		New:     []listing.Listing{},
		Updated: []listing.Listing{},
	}

	doc, err := c.fetchFeed(ctx, country)
	if err != nil {
		return data, err
	}

	cutoff := c.now().Add(-newWindow)
	for _, e := range doc.Feed.Entry {
		l, perr := e.toListing()
		if perr != nil {
			data.Errors = append(data.Errors, listing.ErrorRecord{Message: perr.Error()})
			continue
		}
		if l.Released.After(cutoff) {
			data.New = append(data.New, l)
		} else {
			data.Updated = append(data.Updated, l)
		}
	}
	return data, nil
}

func (c *Client) fetchFeed(ctx context.Context, country string) (*feedDocument, error) {
	u := *c.baseURL
	u.Path = fmt.Sprintf("/%s/rss/newapplications/limit=%d/genre=%s/json",
		country, feedLimit, gamesGenreID)

	var doc feedDocument
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("fetch appstore feed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("appstore feed %s: %s: %s", country, resp.Status, string(b))
		}
		return json.NewDecoder(resp.Body).Decode(&doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
